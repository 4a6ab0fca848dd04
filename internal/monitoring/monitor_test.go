package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/geograph/internal/analytics"
	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/graphdb"
	"github.com/yungbote/geograph/internal/graphdb/graphdbtest"
	"github.com/yungbote/geograph/internal/platform/logger"
)

var fixedNow = time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)

func newTestMonitor(t *testing.T, fake *graphdbtest.Fake, opts ...Option) *Monitor {
	t.Helper()
	lib, err := analytics.New(fake, logger.Nop())
	if err != nil {
		t.Fatalf("analytics.New: %v", err)
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	m, err := New(fake, lib, config.MonitoringConfig{TopGapMinScore: 0.7, TopGapLimit: 5}, logger.Nop(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

type loginStub struct {
	ok  bool
	err error
}

func (s loginStub) Login(context.Context) (bool, error) { return s.ok, s.err }

func TestHealthScore(t *testing.T) {
	cases := []struct {
		online   bool
		nodes    int64
		imported bool
		want     float64
	}{
		{true, 500, true, 100},
		{true, 9, true, 70},
		{true, 500, false, 80},
		{false, 500, true, 50},
		{false, 0, false, 0},
	}
	for _, tc := range cases {
		if got := HealthScore(tc.online, tc.nodes, tc.imported); got != tc.want {
			t.Fatalf("HealthScore(%v,%d,%v): want=%v got=%v", tc.online, tc.nodes, tc.imported, tc.want, got)
		}
	}
}

func TestCheckHealthOnline(t *testing.T) {
	fake := graphdbtest.New().
		On("total_nodes", graphdb.Row{"total_nodes": int64(120), "total_relationships": int64(340)}).
		On("AS last_import", graphdb.Row{"last_import": time.Date(2025, 10, 14, 8, 0, 0, 0, time.UTC)})
	m := newTestMonitor(t, fake, WithInfraNodus(loginStub{ok: true}))

	h, err := m.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if h.Neo4jStatus != StatusOnline || h.InfraNodusStatus != StatusOnline {
		t.Fatalf("statuses: %+v", h)
	}
	if h.TotalNodes != 120 || h.TotalRelationships != 340 {
		t.Fatalf("totals: %+v", h)
	}
	if h.LastImport != "2025-10-14T08:00:00Z" {
		t.Fatalf("last import: want=%q got=%q", "2025-10-14T08:00:00Z", h.LastImport)
	}
	if h.HealthScore != 100 {
		t.Fatalf("score: want=100 got=%v", h.HealthScore)
	}
}

func TestCheckHealthOffline(t *testing.T) {
	fake := graphdbtest.New().Fail("RETURN 1", errors.New("connection refused"))
	m := newTestMonitor(t, fake, WithInfraNodus(loginStub{err: errors.New("dial")}))

	h, err := m.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("offline store must not be an error: %v", err)
	}
	if h.Neo4jStatus != StatusOffline || h.InfraNodusStatus != StatusOffline {
		t.Fatalf("statuses: %+v", h)
	}
	if h.HealthScore != 0 {
		t.Fatalf("score: want=0 got=%v", h.HealthScore)
	}
	if n := len(fake.CallsMatching("total_nodes")); n != 0 {
		t.Fatalf("totals queried while offline: %d", n)
	}
}

func TestCheckHealthNoImportSmallGraph(t *testing.T) {
	fake := graphdbtest.New().On("total_nodes", graphdb.Row{"total_nodes": int64(3), "total_relationships": int64(1)})
	m := newTestMonitor(t, fake, WithInfraNodus(loginStub{ok: false}))

	h, err := m.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if h.HealthScore != 50 {
		t.Fatalf("score: want=50 got=%v", h.HealthScore)
	}
	if h.InfraNodusStatus != StatusUnauthenticated {
		t.Fatalf("infranodus: want=%q got=%q", StatusUnauthenticated, h.InfraNodusStatus)
	}
	if h.LastImport != "" {
		t.Fatalf("last import: %q", h.LastImport)
	}
}

func TestGraphMetrics(t *testing.T) {
	fake := graphdbtest.New().On("UNWIND labels(n)",
		graphdb.Row{"label": "Keyword", "count": int64(40)},
		graphdb.Row{"label": "Claim", "count": int64(10)},
		graphdb.Row{"label": "Evidence", "count": int64(4)},
		graphdb.Row{"label": "Asset", "count": int64(2)},
	)
	m := newTestMonitor(t, fake)

	g, err := m.GraphMetrics(context.Background())
	if err != nil {
		t.Fatalf("GraphMetrics: %v", err)
	}
	if g.Keywords != 40 || g.Claims != 10 || g.Evidence != 4 || g.Assets != 2 || g.Personas != 0 {
		t.Fatalf("metrics: %+v", g)
	}
	if g.Total() != 56 {
		t.Fatalf("total: want=56 got=%d", g.Total())
	}
	calls := fake.CallsMatching("UNWIND labels(n)")
	if labels, _ := calls[0].Params["labels"].([]string); len(labels) != 12 {
		t.Fatalf("labels param: %v", calls[0].Params["labels"])
	}
}

func TestPipelineMetrics(t *testing.T) {
	fake := graphdbtest.New().
		On("prompts_week", graphdb.Row{
			"total_prompts": int64(30), "prompts_week": int64(6), "briefs_week": int64(2),
			"assets_week": int64(1), "avg_citation": 0.64,
		}).
		On("RETURN elementId(tc) AS id",
			graphdb.Row{"id": "1", "name": "X", "modularity": 0.9, "size": int64(10), "keywords": []any{"x1"}},
			graphdb.Row{"id": "2", "name": "Y", "modularity": 0.9, "size": int64(10), "keywords": []any{"y1"}},
			graphdb.Row{"id": "3", "name": "Z", "modularity": 0.1, "size": int64(1), "keywords": nil},
		)
	m := newTestMonitor(t, fake)

	p, err := m.PipelineMetrics(context.Background())
	if err != nil {
		t.Fatalf("PipelineMetrics: %v", err)
	}
	if p.TotalPrompts != 30 || p.PromptsThisWeek != 6 || p.BriefsThisWeek != 2 || p.AssetsThisWeek != 1 {
		t.Fatalf("counts: %+v", p)
	}
	if len(p.TopOpportunities) != 1 || p.TopOpportunities[0].ClusterA != "X" || p.TopOpportunities[0].ClusterB != "Y" {
		t.Fatalf("top gaps: %+v", p.TopOpportunities)
	}
	since, _ := fake.CallsMatching("prompts_week")[0].Params["since"].(time.Time)
	if want := fixedNow.Add(-7 * 24 * time.Hour); !since.Equal(want) {
		t.Fatalf("since: want=%v got=%v", want, since)
	}
}

func TestWeeklyReportPropagatesStoreError(t *testing.T) {
	fake := graphdbtest.New().Fail("UNWIND labels(n)", errors.New("boom"))
	m := newTestMonitor(t, fake)
	if _, err := m.WeeklyReport(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWeeklyReportDegradesWhenStoreOffline(t *testing.T) {
	fake := graphdbtest.New().Fail("", errors.New("connection refused"))
	m := newTestMonitor(t, fake)

	r, err := m.WeeklyReport(context.Background())
	if err != nil {
		t.Fatalf("offline store must not fail the report: %v", err)
	}
	if r.SystemHealth.Neo4jStatus != StatusOffline || r.SystemHealth.HealthScore != 0 {
		t.Fatalf("health: %+v", r.SystemHealth)
	}
	if r.GraphMetrics.Total() != 0 || r.PipelineMetrics.TotalPrompts != 0 || len(r.PipelineMetrics.TopOpportunities) != 0 {
		t.Fatalf("expected zero metrics, got %+v %+v", r.GraphMetrics, r.PipelineMetrics)
	}
	if len(r.Recommendations) == 0 {
		t.Fatalf("expected recommendations for a degraded report")
	}
	if md := RenderMarkdown(r); !strings.Contains(md, "System Health") {
		t.Fatalf("markdown missing health section:\n%s", md)
	}
}

func TestWeeklyReport(t *testing.T) {
	fake := graphdbtest.New().
		On("total_nodes", graphdb.Row{"total_nodes": int64(200), "total_relationships": int64(400)}).
		On("AS last_import", graphdb.Row{"last_import": "2025-10-14T08:00:00Z"}).
		On("UNWIND labels(n)",
			graphdb.Row{"label": "Keyword", "count": int64(120)},
			graphdb.Row{"label": "Persona", "count": int64(4)},
			graphdb.Row{"label": "Claim", "count": int64(10)},
			graphdb.Row{"label": "Evidence", "count": int64(9)},
		).
		On("prompts_week", graphdb.Row{
			"total_prompts": int64(40), "prompts_week": int64(8), "briefs_week": int64(6),
			"assets_week": int64(3), "avg_citation": 0.75,
		})
	m := newTestMonitor(t, fake)

	r, err := m.WeeklyReport(context.Background())
	if err != nil {
		t.Fatalf("WeeklyReport: %v", err)
	}
	if r.ReportDate != "2025-10-15 09:30:00" {
		t.Fatalf("report date: %q", r.ReportDate)
	}
	wantInsights := []string{
		"System operating at optimal health",
		"Knowledge graph contains 143 entities - substantial dataset",
		"Strong evidence coverage (90.0%)",
		"High content production: 6 briefs this week",
		"Excellent citation quality (avg: 0.75)",
	}
	if strings.Join(r.Insights, "|") != strings.Join(wantInsights, "|") {
		t.Fatalf("insights:\nwant=%q\ngot=%q", wantInsights, r.Insights)
	}
	if len(r.Recommendations) != 1 || r.Recommendations[0] != recommendAllClear {
		t.Fatalf("recommendations: %q", r.Recommendations)
	}
}

func TestInsightsLowEnd(t *testing.T) {
	got := Insights(
		SystemHealth{HealthScore: 50},
		GraphMetrics{Keywords: 10, Claims: 10, Evidence: 2},
		PipelineMetrics{AvgCitationScore: 0.3},
	)
	want := []string{
		"System health needs attention",
		"Knowledge graph in early stage (22 entities)",
		"Low evidence coverage (20.0%) - needs improvement",
		"No content produced this week",
		"Citation quality needs improvement (avg: 0.30)",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestInsightsSkipsEvidenceWhenNone(t *testing.T) {
	got := Insights(SystemHealth{HealthScore: 75}, GraphMetrics{Keywords: 60, Claims: 5}, PipelineMetrics{BriefsThisWeek: 2, AvgCitationScore: 0.5})
	if len(got) != 4 {
		t.Fatalf("len=%d %q", len(got), got)
	}
	if got[0] != "System health is good with minor issues" || got[1] != "Knowledge graph growing steadily (65 entities)" {
		t.Fatalf("got=%q", got)
	}
	if got[2] != "Steady content production: 2 briefs this week" || got[3] != "Good citation quality (avg: 0.50)" {
		t.Fatalf("got=%q", got)
	}
}

func TestRecommendationsAllTriggered(t *testing.T) {
	got := Recommendations(
		SystemHealth{HealthScore: 40},
		GraphMetrics{Keywords: 5, Claims: 10, Evidence: 1, Personas: 1, Briefs: 11, Assets: 2},
		PipelineMetrics{PromptsThisWeek: 1, AvgCitationScore: 0.2, TopOpportunities: make([]analytics.StructureHole, 4)},
	)
	if len(got) != 8 {
		t.Fatalf("len=%d %q", len(got), got)
	}
	if got[6] != "4 high-opportunity gaps identified - prioritize for content" {
		t.Fatalf("gap recommendation: %q", got[6])
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := WeeklyReport{
		ReportDate:   "2025-10-15 09:30:00",
		SystemHealth: SystemHealth{Neo4jStatus: "online", InfraNodusStatus: "unknown", TotalNodes: 12345, HealthScore: 80},
		GraphMetrics: GraphMetrics{Keywords: 1500},
		PipelineMetrics: PipelineMetrics{
			AvgCitationScore: 0.5,
			TopOpportunities: []analytics.StructureHole{{ClusterA: "sleep", ClusterB: "cooling", OpportunityScore: 0.9}},
		},
		Insights:        []string{"one"},
		Recommendations: []string{"two"},
	}
	md := RenderMarkdown(r)
	for _, want := range []string{
		"# GEO System Weekly Report",
		"## System Health",
		"**Health Score**: 80% (good)",
		"- Total Nodes: 12,345",
		"- Last Import: N/A",
		"## Knowledge Graph Statistics",
		"| Keywords | 1,500 |",
		"## Content Pipeline Performance",
		"1. **sleep** ↔ **cooling** (Score: 0.90)",
		"## Key Insights\n\n- one",
		"## Recommendations\n\n- two",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestThousands(t *testing.T) {
	for in, want := range map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"} {
		if got := thousands(in); got != want {
			t.Fatalf("thousands(%d): want=%q got=%q", in, want, got)
		}
	}
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := WeeklyReport{ReportDate: "2025-10-15 09:30:00", GeneratedAt: fixedNow, Insights: []string{"x"}, Recommendations: []string{recommendAllClear}}

	mdPath, jsonPath, err := SaveReport(dir, r)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if filepath.Base(mdPath) != "weekly_report_20251015_093000.md" || filepath.Base(jsonPath) != "weekly_report_20251015_093000.json" {
		t.Fatalf("paths: %s %s", mdPath, jsonPath)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	for _, k := range []string{"report_date", "system_health", "graph_metrics", "pipeline_metrics", "insights", "recommendations"} {
		if _, ok := doc[k]; !ok {
			t.Fatalf("json missing %q", k)
		}
	}
	if _, err := os.Stat(mdPath); err != nil {
		t.Fatalf("markdown not written: %v", err)
	}
}
