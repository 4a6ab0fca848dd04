package monitoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RenderMarkdown formats a weekly report for humans.
func RenderMarkdown(r WeeklyReport) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("# GEO System Weekly Report")
	line("")
	line("**Generated**: %s", r.ReportDate)
	line("")
	line("---")
	line("")

	h := r.SystemHealth
	line("## System Health")
	line("")
	line("**Health Score**: %.0f%% (%s)", h.HealthScore, healthBand(h.HealthScore))
	line("")
	line("- Neo4j Status: %s", h.Neo4jStatus)
	line("- InfraNodus Status: %s", h.InfraNodusStatus)
	line("- Total Nodes: %s", thousands(h.TotalNodes))
	line("- Total Relationships: %s", thousands(h.TotalRelationships))
	last := h.LastImport
	if last == "" {
		last = "N/A"
	}
	line("- Last Import: %s", last)
	line("")

	g := r.GraphMetrics
	line("## Knowledge Graph Statistics")
	line("")
	line("| Entity Type | Count |")
	line("|------------|-------|")
	for _, row := range []struct {
		name string
		n    int64
	}{
		{"Keywords", g.Keywords},
		{"Topic Clusters", g.Topics},
		{"Personas", g.Personas},
		{"Pain Points", g.PainPoints},
		{"Features", g.Features},
		{"Products", g.Products},
		{"Claims", g.Claims},
		{"Evidence", g.Evidence},
		{"Structure Holes (Gaps)", g.Gaps},
		{"Prompts", g.Prompts},
		{"Briefs", g.Briefs},
		{"Assets", g.Assets},
	} {
		line("| %s | %s |", row.name, thousands(row.n))
	}
	line("")

	p := r.PipelineMetrics
	line("## Content Pipeline Performance")
	line("")
	line("### This Week")
	line("- Prompts Generated: **%d**", p.PromptsThisWeek)
	line("- Briefs Created: **%d**", p.BriefsThisWeek)
	line("- Assets Published: **%d**", p.AssetsThisWeek)
	line("- Avg Citation Score: **%.2f**", p.AvgCitationScore)
	line("")

	if len(p.TopOpportunities) > 0 {
		line("### Top Opportunity Gaps")
		line("")
		for i, gap := range p.TopOpportunities {
			line("%d. **%s** ↔ **%s** (Score: %.2f)", i+1, orUnknown(gap.ClusterA), orUnknown(gap.ClusterB), gap.OpportunityScore)
		}
		line("")
	}

	line("## Key Insights")
	line("")
	for _, s := range r.Insights {
		line("- %s", s)
	}
	line("")

	line("## Recommendations")
	line("")
	for _, s := range r.Recommendations {
		line("- %s", s)
	}
	line("")

	line("---")
	line("")
	b.WriteString("*Report generated by GEO Monitoring System*")
	return b.String()
}

func healthBand(score float64) string {
	switch {
	case score >= healthOptimalAt:
		return "optimal"
	case score >= healthGoodAt:
		return "good"
	default:
		return "needs attention"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// thousands formats n with comma group separators.
func thousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// SaveReport writes weekly_report_<timestamp>.md and .json into dir and
// returns both paths.
func SaveReport(dir string, r WeeklyReport) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create report dir: %w", err)
	}
	ts := r.GeneratedAt.Format("20060102_150405")
	mdPath := filepath.Join(dir, "weekly_report_"+ts+".md")
	jsonPath := filepath.Join(dir, "weekly_report_"+ts+".json")

	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return "", "", fmt.Errorf("write markdown report: %w", err)
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return "", "", fmt.Errorf("write json report: %w", err)
	}
	return mdPath, jsonPath, nil
}
