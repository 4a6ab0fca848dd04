// Package observability wires tracing and an in-process metrics registry
// exposed in the Prometheus text format.
package observability

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// Metrics holds every series the service exports. A nil *Metrics is valid
// and records nothing, so callers never need to check.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec

	importRuns *CounterVec
	importRows *CounterVec

	answers *CounterVec

	healthScore *GaugeVec
	graphNodes  *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("geo_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("geo_api_request_duration_seconds", "API request latency in seconds by method/route.", []string{"method", "route"}, nil),
		apiInflight: NewGaugeVec("geo_api_inflight_requests", "In-flight API requests.", nil),

		importRuns: NewCounterVec("geo_import_runs_total", "Full imports by outcome.", []string{"outcome"}),
		importRows: NewCounterVec("geo_import_rows_total", "Rows written by import phase.", []string{"phase"}),

		answers: NewCounterVec("geo_answers_total", "Answered questions by category.", []string{"category"}),

		healthScore: NewGaugeVec("geo_health_score", "Latest system health score (0-100).", nil),
		graphNodes:  NewGaugeVec("geo_graph_nodes", "Latest node count by label.", []string{"label"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) InflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) InflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// ImportPhases is the phase order used for geo_import_rows_total.
var ImportPhases = []string{"keywords", "clusters", "cluster_links", "cooccurrences", "gaps", "prompts"}

// ObserveImport records one run. rows is keyed by ImportPhases names.
func (m *Metrics) ObserveImport(rows map[string]int64, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.importRuns.Inc(outcome)
	for _, phase := range ImportPhases {
		if n := rows[phase]; n > 0 {
			m.importRows.Add(float64(n), phase)
		}
	}
}

func (m *Metrics) ObserveAnswer(category string) {
	if m == nil {
		return
	}
	m.answers.Inc(category)
}

func (m *Metrics) SetHealthScore(score float64) {
	if m == nil {
		return
	}
	m.healthScore.Set(score)
}

func (m *Metrics) SetGraphNodes(label string, n int64) {
	if m == nil {
		return
	}
	m.graphNodes.Set(float64(n), label)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, s := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.importRuns, m.importRows,
		m.answers,
		m.healthScore, m.graphNodes,
	} {
		if err := s.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// ServeHTTP exposes the registry; a nil registry answers 503.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}
