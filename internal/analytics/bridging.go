package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/yungbote/geograph/internal/scoring"
)

type BridgingKeyword struct {
	BridgingKeyword  string  `json:"bridging_keyword"`
	Community        string  `json:"community"`
	ConnectionsToA   int64   `json:"connections_to_a"`
	ConnectionsToB   int64   `json:"connections_to_b"`
	TotalConnections int64   `json:"total_connections"`
	TotalWeight      float64 `json:"total_weight"`
	Betweenness      float64 `json:"betweenness"`
	BridgeScore      float64 `json:"bridge_score"`
}

const bridgingKeywordsQuery = `
MATCH (:TopicCluster {name: $cluster_a})<-[:BELONGS_TO]-(k1:Keyword)
MATCH (:TopicCluster {name: $cluster_b})<-[:BELONGS_TO]-(k2:Keyword)
MATCH (k1)-[co1:CO_OCCURS_WITH]-(bridge:Keyword)-[co2:CO_OCCURS_WITH]-(k2)
WITH bridge,
     count(DISTINCT k1) AS connections_to_a,
     count(DISTINCT k2) AS connections_to_b,
     sum(co1.weight) + sum(co2.weight) AS total_weight
RETURN bridge.name AS bridging_keyword,
       bridge.community AS community,
       connections_to_a,
       connections_to_b,
       total_weight,
       bridge.betweenness AS betweenness
`

// FindBridgingKeywords ranks keywords that co-occur with members of both
// clusters by (connections to A + connections to B) * betweenness.
func (l *Library) FindBridgingKeywords(ctx context.Context, clusterA, clusterB string, limit int) ([]BridgingKeyword, error) {
	rows, err := l.db.Read(ctx, bridgingKeywordsQuery, map[string]any{
		"cluster_a": clusterA,
		"cluster_b": clusterB,
	})
	if err != nil {
		return nil, fmt.Errorf("find bridging keywords: %w", err)
	}
	out := make([]BridgingKeyword, 0, len(rows))
	for _, r := range rows {
		a, b := r.Int("connections_to_a"), r.Int("connections_to_b")
		bw := r.Float("betweenness")
		out = append(out, BridgingKeyword{
			BridgingKeyword:  r.String("bridging_keyword"),
			Community:        r.String("community"),
			ConnectionsToA:   a,
			ConnectionsToB:   b,
			TotalConnections: a + b,
			TotalWeight:      r.Float("total_weight"),
			Betweenness:      bw,
			BridgeScore:      scoring.BridgeScore(a, b, bw),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BridgeScore > out[j].BridgeScore })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	l.log.Info("found bridging keywords", "cluster_a", clusterA, "cluster_b", clusterB, "count", len(out))
	return out, nil
}
