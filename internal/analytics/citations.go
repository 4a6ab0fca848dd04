package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/yungbote/geograph/internal/scoring"
)

type CitationScore struct {
	AssetID       string `json:"asset_id"`
	Type          string `json:"type"`
	URL           string `json:"url"`
	MentionCount  int64  `json:"mention_count"`
	ClaimCount    int64  `json:"claim_count"`
	EvidenceCount int64  `json:"evidence_count"`
	scoring.CitationBreakdown
}

type LowQualityAsset struct {
	AssetID        string  `json:"asset_id"`
	Type           string  `json:"type"`
	URL            string  `json:"url"`
	CurrentScore   float64 `json:"current_score"`
	Mentions       int64   `json:"mentions"`
	Claims         int64   `json:"claims"`
	Recommendation string  `json:"recommendation"`
}

const citationInputsQuery = `
MATCH (asset:Asset)
WHERE $asset_id IS NULL OR asset.id = $asset_id
OPTIONAL MATCH (asset)-[:MENTIONS]->(mentioned)
WITH asset, count(DISTINCT mentioned) AS mention_count
OPTIONAL MATCH (asset)-[:DERIVES_FROM]->(:Brief)-[:GENERATED_FROM]->(:Prompt)
               -[:ADDRESSES]->(:PainPoint)<-[:ABOUT]-(claim:Claim)
               -[:SUPPORTED_BY]->(evidence:Evidence)
WITH asset, mention_count,
     count(DISTINCT claim) AS claim_count,
     count(DISTINCT evidence) AS evidence_count,
     avg(evidence.credibility_score) AS avg_credibility
RETURN elementId(asset) AS node_id,
       asset.id AS asset_id,
       asset.type AS type,
       asset.url AS url,
       mention_count,
       claim_count,
       evidence_count,
       avg_credibility
`

const writeCitationScoresQuery = `
UNWIND $rows AS r
MATCH (asset:Asset)
WHERE elementId(asset) = r.node_id
SET asset.citation_ready_score = r.score,
    asset.citation_scored_at = datetime()
RETURN count(asset) AS updated
`

// ScoreCitationReadiness computes the citation-ready score for one asset (or
// all when assetID is empty) and writes it back onto each Asset node.
func (l *Library) ScoreCitationReadiness(ctx context.Context, assetID string) ([]CitationScore, error) {
	rows, err := l.db.Read(ctx, citationInputsQuery, map[string]any{"asset_id": nullable(assetID)})
	if err != nil {
		return nil, fmt.Errorf("score citation readiness: %w", err)
	}

	out := make([]CitationScore, 0, len(rows))
	updates := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		cs := CitationScore{
			AssetID:       r.String("asset_id"),
			Type:          r.String("type"),
			URL:           r.String("url"),
			MentionCount:  r.Int("mention_count"),
			ClaimCount:    r.Int("claim_count"),
			EvidenceCount: r.Int("evidence_count"),
			CitationBreakdown: scoring.CitationReady(scoring.CitationInputs{
				Mentions:       r.Int("mention_count"),
				Evidence:       r.Int("evidence_count"),
				AvgCredibility: optFloat(r, "avg_credibility"),
			}),
		}
		out = append(out, cs)
		updates = append(updates, map[string]any{
			"node_id": r.String("node_id"),
			"score":   cs.CitationReadyScore,
		})
	}

	if len(updates) > 0 {
		if _, err := l.db.Write(ctx, writeCitationScoresQuery, map[string]any{"rows": updates}); err != nil {
			return nil, fmt.Errorf("score citation readiness: write back: %w", err)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CitationReadyScore > out[j].CitationReadyScore })
	l.log.Info("calculated citation-ready scores", "assets", len(out))
	return out, nil
}

const lowQualityAssetsQuery = `
MATCH (asset:Asset)
WHERE asset.citation_ready_score IS NULL OR asset.citation_ready_score < $max_score
OPTIONAL MATCH (asset)-[:MENTIONS]->(mentioned)
WITH asset, count(mentioned) AS mentions
OPTIONAL MATCH (asset)-[:DERIVES_FROM]->(:Brief)-[:GENERATED_FROM]->(:Prompt)
               -[:ADDRESSES]->(:PainPoint)<-[:ABOUT]-(claim:Claim)
WITH asset, mentions, count(claim) AS claims
RETURN asset.id AS asset_id,
       asset.type AS type,
       asset.url AS url,
       coalesce(asset.citation_ready_score, 0.0) AS current_score,
       mentions,
       claims
ORDER BY current_score ASC
`

// FindLowQualityAssets lists assets under maxScore (or never scored) with the
// first applicable improvement hint.
func (l *Library) FindLowQualityAssets(ctx context.Context, maxScore float64) ([]LowQualityAsset, error) {
	rows, err := l.db.Read(ctx, lowQualityAssetsQuery, map[string]any{"max_score": maxScore})
	if err != nil {
		return nil, fmt.Errorf("find low quality assets: %w", err)
	}
	out := make([]LowQualityAsset, 0, len(rows))
	for _, r := range rows {
		a := LowQualityAsset{
			AssetID:      r.String("asset_id"),
			Type:         r.String("type"),
			URL:          r.String("url"),
			CurrentScore: r.Float("current_score"),
			Mentions:     r.Int("mentions"),
			Claims:       r.Int("claims"),
		}
		a.Recommendation = assetRecommendation(a.Mentions, a.Claims)
		out = append(out, a)
	}
	l.log.Info("found low-quality assets", "count", len(out))
	return out, nil
}

func assetRecommendation(mentions, claims int64) string {
	switch {
	case mentions < 3:
		return "Add more product/feature mentions"
	case claims < 2:
		return "Add more claims with evidence"
	default:
		return "Improve evidence quality"
	}
}
