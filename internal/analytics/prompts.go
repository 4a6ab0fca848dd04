package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/yungbote/geograph/internal/scoring"
)

type RankedPrompt struct {
	PromptText string `json:"prompt_text"`
	PromptType string `json:"prompt_type"`
	scoring.PromptBreakdown
}

type GapPrompt struct {
	TopicA           string  `json:"topic_a"`
	TopicB           string  `json:"topic_b"`
	OpportunityScore float64 `json:"opportunity_score"`
	QuestionPrompt   string  `json:"question_prompt"`
	SolutionPrompt   string  `json:"solution_prompt"`
}

const rankPromptsQuery = `
MATCH (p:Prompt)
OPTIONAL MATCH (g:Gap)-[:SUGGESTS]->(p)
WITH p, max(g.opportunity_score) AS gap_score
OPTIONAL MATCH (p)-[:ADDRESSES]->(pp:PainPoint)
WITH p, gap_score, max(pp.severity) AS pain_severity
OPTIONAL MATCH (a:Asset)-[:DERIVES_FROM]->(:Brief)-[:GENERATED_FROM]->(p)
WITH p, gap_score, pain_severity, count(DISTINCT a) AS existing_assets
RETURN p.text AS prompt_text,
       p.type AS prompt_type,
       p.priority AS base_priority,
       gap_score,
       pain_severity,
       existing_assets
`

// RankPrompts orders prompts by the weighted priority score. A prompt linked
// to several gaps or pain points uses the strongest of each.
func (l *Library) RankPrompts(ctx context.Context, limit int) ([]RankedPrompt, error) {
	rows, err := l.db.Read(ctx, rankPromptsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("rank prompts: %w", err)
	}
	out := make([]RankedPrompt, 0, len(rows))
	for _, r := range rows {
		out = append(out, RankedPrompt{
			PromptText: r.String("prompt_text"),
			PromptType: r.String("prompt_type"),
			PromptBreakdown: scoring.PromptPriority(scoring.PromptInputs{
				GapScore:       optFloat(r, "gap_score"),
				PainSeverity:   optFloat(r, "pain_severity"),
				ExistingAssets: r.Int("existing_assets"),
				BasePriority:   r.Float("base_priority"),
			}),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	l.log.Info("ranked prompts", "count", len(out))
	return out, nil
}

const gapsForPromptsQuery = `
MATCH (g:Gap)
WHERE $gap_ids IS NULL OR g.topic_a + ' <-> ' + g.topic_b IN $gap_ids
RETURN g.topic_a AS topic_a,
       g.topic_b AS topic_b,
       g.opportunity_score AS opportunity_score
ORDER BY opportunity_score DESC
`

// GeneratePromptsForGaps drafts a question prompt and a solution prompt per
// gap. gapIDs are "topic_a <-> topic_b" identifiers; empty selects all gaps.
func (l *Library) GeneratePromptsForGaps(ctx context.Context, gapIDs []string) ([]GapPrompt, error) {
	var ids any
	if len(gapIDs) > 0 {
		ids = gapIDs
	}
	rows, err := l.db.Read(ctx, gapsForPromptsQuery, map[string]any{"gap_ids": ids})
	if err != nil {
		return nil, fmt.Errorf("generate prompts for gaps: %w", err)
	}
	out := make([]GapPrompt, 0, len(rows))
	for _, r := range rows {
		a, b := r.String("topic_a"), r.String("topic_b")
		out = append(out, GapPrompt{
			TopicA:           a,
			TopicB:           b,
			OpportunityScore: r.Float("opportunity_score"),
			QuestionPrompt:   "How are " + a + " and " + b + " connected?",
			SolutionPrompt:   "What solutions bridge " + a + " and " + b + "?",
		})
	}
	l.log.Info("generated prompts from gaps", "count", len(out))
	return out, nil
}
