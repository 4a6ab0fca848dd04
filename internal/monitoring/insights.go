package monitoring

import "fmt"

const (
	healthOptimalAt = 90
	healthGoodAt    = 70
)

// Insights summarizes the report sections as short status lines, one per
// concern, in a fixed order.
func Insights(h SystemHealth, g GraphMetrics, p PipelineMetrics) []string {
	var out []string

	switch {
	case h.HealthScore >= healthOptimalAt:
		out = append(out, "System operating at optimal health")
	case h.HealthScore >= healthGoodAt:
		out = append(out, "System health is good with minor issues")
	default:
		out = append(out, "System health needs attention")
	}

	total := g.Total()
	switch {
	case total > 100:
		out = append(out, fmt.Sprintf("Knowledge graph contains %d entities - substantial dataset", total))
	case total > 50:
		out = append(out, fmt.Sprintf("Knowledge graph growing steadily (%d entities)", total))
	default:
		out = append(out, fmt.Sprintf("Knowledge graph in early stage (%d entities)", total))
	}

	if g.Evidence > 0 {
		claims := g.Claims
		if claims < 1 {
			claims = 1
		}
		ratio := float64(g.Evidence) / float64(claims)
		switch {
		case ratio >= 0.8:
			out = append(out, fmt.Sprintf("Strong evidence coverage (%.1f%%)", ratio*100))
		case ratio >= 0.5:
			out = append(out, fmt.Sprintf("Moderate evidence coverage (%.1f%%)", ratio*100))
		default:
			out = append(out, fmt.Sprintf("Low evidence coverage (%.1f%%) - needs improvement", ratio*100))
		}
	}

	switch {
	case p.BriefsThisWeek > 5:
		out = append(out, fmt.Sprintf("High content production: %d briefs this week", p.BriefsThisWeek))
	case p.BriefsThisWeek > 0:
		out = append(out, fmt.Sprintf("Steady content production: %d briefs this week", p.BriefsThisWeek))
	default:
		out = append(out, "No content produced this week")
	}

	switch {
	case p.AvgCitationScore >= 0.7:
		out = append(out, fmt.Sprintf("Excellent citation quality (avg: %.2f)", p.AvgCitationScore))
	case p.AvgCitationScore >= 0.5:
		out = append(out, fmt.Sprintf("Good citation quality (avg: %.2f)", p.AvgCitationScore))
	default:
		out = append(out, fmt.Sprintf("Citation quality needs improvement (avg: %.2f)", p.AvgCitationScore))
	}

	return out
}

const recommendAllClear = "System performing well - continue current operations"

// Recommendations lists actions for every threshold the report misses. It is
// never empty.
func Recommendations(h SystemHealth, g GraphMetrics, p PipelineMetrics) []string {
	var out []string

	if h.HealthScore < healthOptimalAt {
		out = append(out, "Review system logs and address any connectivity issues")
	}
	if g.Keywords < 50 {
		out = append(out, "Import more data sources to enrich the knowledge graph")
	}
	if float64(g.Evidence) < float64(g.Claims)*0.5 {
		out = append(out, "Add more evidence sources to strengthen claims")
	}
	if g.Personas < 3 {
		out = append(out, "Define additional user personas for better targeting")
	}
	if p.PromptsThisWeek < 5 {
		out = append(out, "Run structure hole analysis to generate new content prompts")
	}
	if p.AvgCitationScore < 0.6 {
		out = append(out, "Focus on evidence-backed content to improve citation scores")
	}
	if n := len(p.TopOpportunities); n > 3 {
		out = append(out, fmt.Sprintf("%d high-opportunity gaps identified - prioritize for content", n))
	}
	if g.Briefs > 10 && g.Assets < 5 {
		out = append(out, "Convert briefs to published assets to increase output")
	}

	if len(out) == 0 {
		out = append(out, recommendAllClear)
	}
	return out
}
