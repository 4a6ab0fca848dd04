package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/yungbote/geograph/internal/scoring"
)

const (
	representativeKeywords = 5
	displayedKeywords      = 3
)

type StructureHole struct {
	ClusterA         string   `json:"cluster_a"`
	ClusterB         string   `json:"cluster_b"`
	KeywordsA        []string `json:"keywords_a"`
	KeywordsB        []string `json:"keywords_b"`
	OpportunityScore float64  `json:"opportunity_score"`
	Bridged          bool     `json:"bridged"`
}

type KeywordGap struct {
	KeywordA         string  `json:"keyword_a"`
	KeywordB         string  `json:"keyword_b"`
	CommunityA       string  `json:"community_a"`
	CommunityB       string  `json:"community_b"`
	OpportunityScore float64 `json:"opportunity_score"`
}

const clustersQuery = `
MATCH (tc:TopicCluster)
OPTIONAL MATCH (k:Keyword)-[:BELONGS_TO]->(tc)
WITH tc, k
ORDER BY k.betweenness DESC
WITH tc, collect(k.name)[0..$top] AS keywords
RETURN elementId(tc) AS id,
       tc.name AS name,
       tc.modularity AS modularity,
       tc.size AS size,
       keywords
ORDER BY id
`

const bridgesQuery = `
MATCH (a:TopicCluster)-[:BRIDGES]-(b:TopicCluster)
WHERE elementId(a) < elementId(b)
RETURN DISTINCT a.name AS cluster_a, b.name AS cluster_b
`

type clusterRow struct {
	name     string
	metrics  scoring.Cluster
	keywords []string
}

// FindStructureHoles scores every unordered pair of topic clusters. Pairs are
// enumerated once in store-id order, so (A,B) and (B,A) never both appear.
func (l *Library) FindStructureHoles(ctx context.Context, minScore float64, limit int) ([]StructureHole, error) {
	rows, err := l.db.Read(ctx, clustersQuery, map[string]any{"top": representativeKeywords})
	if err != nil {
		return nil, fmt.Errorf("find structure holes: clusters: %w", err)
	}
	bridgeRows, err := l.db.Read(ctx, bridgesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("find structure holes: bridges: %w", err)
	}

	bridged := make(map[[2]string]bool, len(bridgeRows))
	for _, r := range bridgeRows {
		bridged[pairKey(r.String("cluster_a"), r.String("cluster_b"))] = true
	}

	clusters := make([]clusterRow, 0, len(rows))
	for _, r := range rows {
		clusters = append(clusters, clusterRow{
			name:     r.String("name"),
			metrics:  scoring.Cluster{Modularity: r.Float("modularity"), Size: r.Float("size")},
			keywords: r.Strings("keywords"),
		})
	}

	var out []StructureHole
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			a, b := clusters[i], clusters[j]
			isBridged := bridged[pairKey(a.name, b.name)]
			score := scoring.StructureHole(a.metrics, b.metrics, isBridged)
			if score < minScore {
				continue
			}
			out = append(out, StructureHole{
				ClusterA:         a.name,
				ClusterB:         b.name,
				KeywordsA:        truncate(a.keywords, displayedKeywords),
				KeywordsB:        truncate(b.keywords, displayedKeywords),
				OpportunityScore: score,
				Bridged:          isBridged,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpportunityScore > out[j].OpportunityScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	l.log.Info("found structure holes", "count", len(out), "clusters", len(clusters))
	return out, nil
}

const keywordGapsQuery = `
MATCH (k1:Keyword), (k2:Keyword)
WHERE elementId(k1) < elementId(k2)
  AND k1.community <> k2.community
  AND k1.betweenness > $min_betweenness
  AND k2.betweenness > $min_betweenness
OPTIONAL MATCH (k1)-[co:CO_OCCURS_WITH]-(k2)
WITH k1, k2, max(co.weight) AS connection
RETURN k1.name AS keyword_a,
       k2.name AS keyword_b,
       k1.community AS community_a,
       k2.community AS community_b,
       k1.betweenness AS betweenness_a,
       k2.betweenness AS betweenness_b,
       coalesce(connection, 0.0) AS connection_strength
`

// FindKeywordGaps returns central keyword pairs from different communities
// that are weakly or not connected.
func (l *Library) FindKeywordGaps(ctx context.Context, limit int) ([]KeywordGap, error) {
	rows, err := l.db.Read(ctx, keywordGapsQuery, map[string]any{"min_betweenness": scoring.KeywordMinBetweenness})
	if err != nil {
		return nil, fmt.Errorf("find keyword gaps: %w", err)
	}
	var out []KeywordGap
	for _, r := range rows {
		ba, bb := r.Float("betweenness_a"), r.Float("betweenness_b")
		if !scoring.KeywordGapEligible(ba, bb) {
			continue
		}
		score := scoring.KeywordGap(ba, bb, r.Float("connection_strength"))
		if score <= scoring.KeywordGapThreshold {
			continue
		}
		out = append(out, KeywordGap{
			KeywordA:         r.String("keyword_a"),
			KeywordB:         r.String("keyword_b"),
			CommunityA:       r.String("community_a"),
			CommunityB:       r.String("community_b"),
			OpportunityScore: score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpportunityScore > out[j].OpportunityScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	l.log.Info("found keyword gaps", "count", len(out))
	return out, nil
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func truncate(in []string, n int) []string {
	if len(in) <= n {
		if in == nil {
			return []string{}
		}
		return in
	}
	return in[:n]
}
