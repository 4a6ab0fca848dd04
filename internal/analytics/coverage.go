package analytics

import (
	"context"
	"fmt"

	"github.com/yungbote/geograph/internal/graphdb"
	"github.com/yungbote/geograph/internal/scoring"
)

type PromptCoverage struct {
	TotalPrompts      int64   `json:"total_prompts"`
	PromptsWithBriefs int64   `json:"prompts_with_briefs"`
	PromptsWithAssets int64   `json:"prompts_with_assets"`
	UncoveredPrompts  int64   `json:"uncovered_prompts"`
	CoverageRate      float64 `json:"coverage_rate"`
}

type UncoveredPrompt struct {
	PromptText     string   `json:"prompt_text"`
	Type           string   `json:"type"`
	Priority       int64    `json:"priority"`
	GapScore       float64  `json:"gap_score"`
	PainPoints     []string `json:"pain_points"`
	TargetPersonas []string `json:"target_personas"`
	Status         string   `json:"status"`
}

const coverageQuery = `
OPTIONAL MATCH (p:Prompt)
OPTIONAL MATCH (p)<-[:GENERATED_FROM]-(b:Brief)
OPTIONAL MATCH (p)<-[:GENERATED_FROM]-(:Brief)<-[:DERIVES_FROM]-(a:Asset)
WITH p, count(DISTINCT b) AS briefs, count(DISTINCT a) AS assets
RETURN count(p) AS total_prompts,
       sum(CASE WHEN p IS NOT NULL AND briefs > 0 THEN 1 ELSE 0 END) AS prompts_with_briefs,
       sum(CASE WHEN p IS NOT NULL AND assets > 0 THEN 1 ELSE 0 END) AS prompts_with_assets
`

// AnalyzePromptCoverage reports how many prompts have briefs and published
// assets. The rate is 0 when there are no prompts.
func (l *Library) AnalyzePromptCoverage(ctx context.Context) (PromptCoverage, error) {
	rows, err := l.db.Read(ctx, coverageQuery, nil)
	if err != nil {
		return PromptCoverage{}, fmt.Errorf("analyze prompt coverage: %w", err)
	}
	r := graphdb.First(rows)
	out := PromptCoverage{
		TotalPrompts:      r.Int("total_prompts"),
		PromptsWithBriefs: r.Int("prompts_with_briefs"),
		PromptsWithAssets: r.Int("prompts_with_assets"),
	}
	out.UncoveredPrompts = out.TotalPrompts - out.PromptsWithAssets
	out.CoverageRate = scoring.CoverageRate(out.PromptsWithAssets, out.TotalPrompts)
	l.log.Info("analyzed prompt coverage", "total", out.TotalPrompts, "coverage_rate", out.CoverageRate)
	return out, nil
}

const uncoveredPromptsQuery = `
MATCH (p:Prompt)
WHERE p.priority >= $min_priority
OPTIONAL MATCH (p)<-[:GENERATED_FROM]-(:Brief)<-[:DERIVES_FROM]-(asset:Asset)
WITH p, count(asset) AS asset_count
WHERE asset_count = 0
OPTIONAL MATCH (p)-[:ADDRESSES]->(pp:PainPoint)
OPTIONAL MATCH (p)-[:TARGETS]->(persona:Persona)
RETURN p.text AS prompt_text,
       p.type AS type,
       p.priority AS priority,
       p.gap_score AS gap_score,
       collect(DISTINCT pp.name) AS pain_points,
       collect(DISTINCT persona.name) AS target_personas
ORDER BY priority DESC, gap_score DESC
`

const statusNeedsContent = "High priority - needs content"

// FindUncoveredPrompts lists prompts at or above minPriority with no asset.
func (l *Library) FindUncoveredPrompts(ctx context.Context, minPriority int) ([]UncoveredPrompt, error) {
	rows, err := l.db.Read(ctx, uncoveredPromptsQuery, map[string]any{"min_priority": minPriority})
	if err != nil {
		return nil, fmt.Errorf("find uncovered prompts: %w", err)
	}
	out := make([]UncoveredPrompt, 0, len(rows))
	for _, r := range rows {
		out = append(out, UncoveredPrompt{
			PromptText:     r.String("prompt_text"),
			Type:           r.String("type"),
			Priority:       r.Int("priority"),
			GapScore:       r.Float("gap_score"),
			PainPoints:     r.Strings("pain_points"),
			TargetPersonas: r.Strings("target_personas"),
			Status:         statusNeedsContent,
		})
	}
	l.log.Info("found uncovered high-priority prompts", "count", len(out))
	return out, nil
}
