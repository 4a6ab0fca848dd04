package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.InflightInc()
	m.ObserveImport(map[string]int64{"keywords": 1}, nil)
	m.SetHealthScore(50)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestObserveAPI(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/v1/gaps", 200, 20*time.Millisecond)
	m.ObserveAPI("GET", "/v1/gaps", 200, 2*time.Second)
	m.ObserveAPI("POST", "", 404, time.Millisecond)

	if got := m.apiRequests.Value("GET", "/v1/gaps", "200"); got != 2 {
		t.Fatalf("requests: want=2 got=%v", got)
	}
	if got := m.apiRequests.Value("POST", "unmatched", "404"); got != 1 {
		t.Fatalf("unmatched route: want=1 got=%v", got)
	}
	if got := m.apiLatency.Count("GET", "/v1/gaps"); got != 2 {
		t.Fatalf("latency count: want=2 got=%d", got)
	}
}

func TestObserveImport(t *testing.T) {
	m := NewMetrics()
	m.ObserveImport(map[string]int64{"keywords": 4, "gaps": 2, "prompts": 0}, nil)
	m.ObserveImport(map[string]int64{"keywords": 1}, errors.New("store down"))

	if got := m.importRows.Value("keywords"); got != 5 {
		t.Fatalf("keywords rows: want=5 got=%v", got)
	}
	if got := m.importRuns.Value("failure"); got != 1 {
		t.Fatalf("failures: want=1 got=%v", got)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/healthz", 200, 30*time.Millisecond)
	m.SetGraphNodes("Keyword", 42)
	m.SetHealthScore(80)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		"# TYPE geo_api_requests_total counter",
		`geo_api_requests_total{method="GET",route="/healthz",status="200"} 1`,
		`geo_api_request_duration_seconds_bucket{method="GET",route="/healthz",le="0.05"} 1`,
		`geo_api_request_duration_seconds_bucket{method="GET",route="/healthz",le="0.025"} 0`,
		`geo_api_request_duration_seconds_count{method="GET",route="/healthz"} 1`,
		`geo_graph_nodes{label="Keyword"} 42`,
		"geo_health_score 80",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y\z`})
	if want := `{a="x\"y\\z",b="unknown"}`; got != want {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestParseHeaders(t *testing.T) {
	h := parseHeaders("api-key=abc, bad , empty=, x=y")
	if len(h) != 2 || h["api-key"] != "abc" || h["x"] != "y" {
		t.Fatalf("headers=%v", h)
	}
}
