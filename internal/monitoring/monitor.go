// Package monitoring reports system health, knowledge graph size and content
// pipeline activity, and renders the weekly report.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/geograph/internal/analytics"
	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/graphdb"
	"github.com/yungbote/geograph/internal/platform/logger"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
	// StatusUnauthenticated means the service answered but rejected the login.
	StatusUnauthenticated = "unauthenticated"
)

const reportWindow = 7 * 24 * time.Hour

// Pinger is satisfied by neo4jdb.Client. Runners without it are probed with
// a trivial read.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoginChecker is satisfied by infranodus.Client.
type LoginChecker interface {
	Login(ctx context.Context) (bool, error)
}

type SystemHealth struct {
	Neo4jStatus        string    `json:"neo4j_status"`
	InfraNodusStatus   string    `json:"infranodus_status"`
	TotalNodes         int64     `json:"total_nodes"`
	TotalRelationships int64     `json:"total_relationships"`
	LastImport         string    `json:"last_import,omitempty"`
	HealthScore        float64   `json:"health_score"`
	CheckedAt          time.Time `json:"checked_at"`
}

type GraphMetrics struct {
	Keywords   int64 `json:"keywords"`
	Topics     int64 `json:"topics"`
	Personas   int64 `json:"personas"`
	PainPoints int64 `json:"pain_points"`
	Features   int64 `json:"features"`
	Products   int64 `json:"products"`
	Claims     int64 `json:"claims"`
	Evidence   int64 `json:"evidence"`
	Gaps       int64 `json:"gaps"`
	Prompts    int64 `json:"prompts"`
	Briefs     int64 `json:"briefs"`
	Assets     int64 `json:"assets"`
}

func (m GraphMetrics) Total() int64 {
	return m.Keywords + m.Topics + m.Personas + m.PainPoints + m.Features + m.Products +
		m.Claims + m.Evidence + m.Gaps + m.Prompts + m.Briefs + m.Assets
}

// ByLabel keys the counts by node label.
func (m GraphMetrics) ByLabel() map[string]int64 {
	return map[string]int64{
		"Keyword": m.Keywords, "TopicCluster": m.Topics, "Persona": m.Personas,
		"PainPoint": m.PainPoints, "Feature": m.Features, "Product": m.Products,
		"Claim": m.Claims, "Evidence": m.Evidence, "Gap": m.Gaps,
		"Prompt": m.Prompts, "Brief": m.Briefs, "Asset": m.Assets,
	}
}

type PipelineMetrics struct {
	TotalPrompts     int64                     `json:"total_prompts"`
	PromptsThisWeek  int64                     `json:"prompts_this_week"`
	BriefsThisWeek   int64                     `json:"briefs_this_week"`
	AssetsThisWeek   int64                     `json:"assets_this_week"`
	AvgCitationScore float64                   `json:"avg_citation_score"`
	TopOpportunities []analytics.StructureHole `json:"top_opportunity_gaps"`
}

type WeeklyReport struct {
	ReportDate      string          `json:"report_date"`
	GeneratedAt     time.Time       `json:"generated_at"`
	SystemHealth    SystemHealth    `json:"system_health"`
	GraphMetrics    GraphMetrics    `json:"graph_metrics"`
	PipelineMetrics PipelineMetrics `json:"pipeline_metrics"`
	Insights        []string        `json:"insights"`
	Recommendations []string        `json:"recommendations"`
}

type Monitor struct {
	db    graphdb.Runner
	lib   *analytics.Library
	infra LoginChecker
	cfg   config.MonitoringConfig
	log   *logger.Logger
	now   func() time.Time
}

type Option func(*Monitor)

// WithInfraNodus enables the InfraNodus login probe in CheckHealth.
func WithInfraNodus(c LoginChecker) Option {
	return func(m *Monitor) { m.infra = c }
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func New(db graphdb.Runner, lib *analytics.Library, cfg config.MonitoringConfig, log *logger.Logger, opts ...Option) (*Monitor, error) {
	if db == nil {
		return nil, fmt.Errorf("monitoring: graph runner required")
	}
	if lib == nil {
		return nil, fmt.Errorf("monitoring: analytics library required")
	}
	if log == nil {
		return nil, fmt.Errorf("monitoring: logger required")
	}
	if cfg.TopGapLimit <= 0 {
		cfg.TopGapLimit = 5
	}
	m := &Monitor{
		db:  db,
		lib: lib,
		cfg: cfg,
		log: log.With("component", "Monitor"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

const totalsQuery = `
CALL { MATCH (n) RETURN count(n) AS total_nodes }
CALL { MATCH ()-[r]->() RETURN count(r) AS total_relationships }
RETURN total_nodes, total_relationships
`

const lastImportQuery = `
MATCH (k:Keyword)
WHERE k.last_updated IS NOT NULL
RETURN k.last_updated AS last_import
ORDER BY k.last_updated DESC
LIMIT 1
`

// CheckHealth never fails because the store is down; that is reported as an
// offline status with a reduced score. Errors mean a query failed after the
// store answered the probe.
func (m *Monitor) CheckHealth(ctx context.Context) (SystemHealth, error) {
	h := SystemHealth{
		Neo4jStatus:      StatusOnline,
		InfraNodusStatus: StatusUnknown,
		CheckedAt:        m.now().UTC(),
	}

	if err := m.ping(ctx); err != nil {
		m.log.Warn("graph store unreachable", "error", err)
		h.Neo4jStatus = StatusOffline
	}

	if m.infra != nil {
		ok, err := m.infra.Login(ctx)
		switch {
		case err != nil:
			h.InfraNodusStatus = StatusOffline
		case ok:
			h.InfraNodusStatus = StatusOnline
		default:
			h.InfraNodusStatus = StatusUnauthenticated
		}
	}

	if h.Neo4jStatus == StatusOnline {
		rows, err := m.db.Read(ctx, totalsQuery, nil)
		if err != nil {
			return SystemHealth{}, fmt.Errorf("count graph totals: %w", err)
		}
		r := graphdb.First(rows)
		h.TotalNodes = r.Int("total_nodes")
		h.TotalRelationships = r.Int("total_relationships")

		rows, err = m.db.Read(ctx, lastImportQuery, nil)
		if err != nil {
			return SystemHealth{}, fmt.Errorf("read last import: %w", err)
		}
		if r := graphdb.First(rows); r != nil {
			if ts, ok := r.Time("last_import"); ok {
				h.LastImport = ts.UTC().Format(time.RFC3339)
			} else {
				h.LastImport = r.String("last_import")
			}
		}
	}

	h.HealthScore = HealthScore(h.Neo4jStatus == StatusOnline, h.TotalNodes, h.LastImport != "")
	m.log.Info("system health checked", "score", h.HealthScore, "neo4j", h.Neo4jStatus, "nodes", h.TotalNodes)
	return h, nil
}

// HealthScore starts at 100 and deducts 50 for an offline store, 30 for a
// graph under ten nodes and 20 when no import was ever recorded.
func HealthScore(online bool, totalNodes int64, imported bool) float64 {
	score := 100.0
	if !online {
		score -= 50
	}
	if totalNodes < 10 {
		score -= 30
	}
	if !imported {
		score -= 20
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (m *Monitor) ping(ctx context.Context) error {
	if p, ok := m.db.(Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := m.db.Read(ctx, `RETURN 1 AS ok`, nil)
	return err
}

// Labels counted by GraphMetrics.
var trackedLabels = []string{
	"Keyword", "TopicCluster", "Persona", "PainPoint", "Feature", "Product",
	"Claim", "Evidence", "Gap", "Prompt", "Brief", "Asset",
}

const labelCountsQuery = `
MATCH (n)
UNWIND labels(n) AS label
WITH label
WHERE label IN $labels
RETURN label, count(*) AS count
`

func (m *Monitor) GraphMetrics(ctx context.Context) (GraphMetrics, error) {
	rows, err := m.db.Read(ctx, labelCountsQuery, map[string]any{"labels": trackedLabels})
	if err != nil {
		return GraphMetrics{}, fmt.Errorf("count labels: %w", err)
	}
	var g GraphMetrics
	for _, r := range rows {
		n := r.Int("count")
		switch r.String("label") {
		case "Keyword":
			g.Keywords = n
		case "TopicCluster":
			g.Topics = n
		case "Persona":
			g.Personas = n
		case "PainPoint":
			g.PainPoints = n
		case "Feature":
			g.Features = n
		case "Product":
			g.Products = n
		case "Claim":
			g.Claims = n
		case "Evidence":
			g.Evidence = n
		case "Gap":
			g.Gaps = n
		case "Prompt":
			g.Prompts = n
		case "Brief":
			g.Briefs = n
		case "Asset":
			g.Assets = n
		}
	}
	m.log.Debug("graph metrics collected", "total", g.Total())
	return g, nil
}

const pipelineQuery = `
CALL { MATCH (p:Prompt) RETURN count(p) AS total_prompts }
CALL { MATCH (p:Prompt) WHERE p.generated_at >= $since RETURN count(p) AS prompts_week }
CALL { MATCH (b:Brief) WHERE b.created_at >= $since RETURN count(b) AS briefs_week }
CALL { MATCH (a:Asset) WHERE a.published_at >= $since RETURN count(a) AS assets_week }
CALL {
  MATCH (a:Asset)
  WHERE a.citation_ready_score IS NOT NULL
  RETURN avg(a.citation_ready_score) AS avg_citation
}
RETURN total_prompts, prompts_week, briefs_week, assets_week, avg_citation
`

// PipelineMetrics counts prompts, briefs and assets stamped within the last
// seven days. Nodes without a timestamp never count toward the week.
func (m *Monitor) PipelineMetrics(ctx context.Context) (PipelineMetrics, error) {
	since := m.now().UTC().Add(-reportWindow)
	rows, err := m.db.Read(ctx, pipelineQuery, map[string]any{"since": since})
	if err != nil {
		return PipelineMetrics{}, fmt.Errorf("collect pipeline counts: %w", err)
	}
	r := graphdb.First(rows)
	p := PipelineMetrics{
		TotalPrompts:     r.Int("total_prompts"),
		PromptsThisWeek:  r.Int("prompts_week"),
		BriefsThisWeek:   r.Int("briefs_week"),
		AssetsThisWeek:   r.Int("assets_week"),
		AvgCitationScore: r.Float("avg_citation"),
	}

	holes, err := m.lib.FindStructureHoles(ctx, m.cfg.TopGapMinScore, m.cfg.TopGapLimit)
	if err != nil {
		return PipelineMetrics{}, fmt.Errorf("top opportunity gaps: %w", err)
	}
	p.TopOpportunities = holes
	m.log.Debug("pipeline metrics collected", "briefs_week", p.BriefsThisWeek, "assets_week", p.AssetsThisWeek)
	return p, nil
}

// WeeklyReport collects the three sections concurrently. The queries are
// read-only so they share nothing but the driver. With the store offline the
// report still renders, with zero counts and the offline health penalty.
func (m *Monitor) WeeklyReport(ctx context.Context) (WeeklyReport, error) {
	var (
		health   SystemHealth
		graph    GraphMetrics
		pipeline PipelineMetrics

		graphErr, pipelineErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = m.CheckHealth(gctx)
		return err
	})
	g.Go(func() error {
		graph, graphErr = m.GraphMetrics(gctx)
		return nil
	})
	g.Go(func() error {
		pipeline, pipelineErr = m.PipelineMetrics(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return WeeklyReport{}, fmt.Errorf("weekly report: %w", err)
	}

	// An unreachable store degrades the report to zero counts; the health
	// section already carries the penalty.
	if health.Neo4jStatus == StatusOffline {
		if graphErr != nil || pipelineErr != nil {
			m.log.Warn("graph store offline, reporting empty metrics", "graph_error", graphErr, "pipeline_error", pipelineErr)
		}
		graph, pipeline = GraphMetrics{}, PipelineMetrics{TopOpportunities: []analytics.StructureHole{}}
	} else if err := errors.Join(graphErr, pipelineErr); err != nil {
		return WeeklyReport{}, fmt.Errorf("weekly report: %w", err)
	}

	now := m.now()
	report := WeeklyReport{
		ReportDate:      now.Format("2006-01-02 15:04:05"),
		GeneratedAt:     now.UTC(),
		SystemHealth:    health,
		GraphMetrics:    graph,
		PipelineMetrics: pipeline,
		Insights:        Insights(health, graph, pipeline),
		Recommendations: Recommendations(health, graph, pipeline),
	}
	m.log.Info("weekly report generated", "insights", len(report.Insights), "recommendations", len(report.Recommendations))
	return report, nil
}
