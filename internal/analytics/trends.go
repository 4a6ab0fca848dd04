package analytics

import (
	"context"
	"fmt"
	"time"
)

type KeywordTrend struct {
	Keyword     string    `json:"keyword"`
	Community   string    `json:"community"`
	Betweenness float64   `json:"betweenness"`
	Degree      int64     `json:"degree"`
	LastUpdated time.Time `json:"last_updated"`
	Status      string    `json:"status"`
}

type EmergingTopic struct {
	Topic            string  `json:"topic"`
	KeywordCount     int64   `json:"keyword_count"`
	AvgImportance    float64 `json:"avg_importance"`
	TotalConnections int64   `json:"total_connections"`
	Modularity       float64 `json:"modularity"`
	Status           string  `json:"status"`
}

const trendingLimit = 20

const keywordTrendsQuery = `
MATCH (k:Keyword)
WHERE k.last_updated >= datetime() - duration({days: $days})
  AND k.betweenness > 0.5
RETURN k.name AS keyword,
       k.community AS community,
       k.betweenness AS betweenness,
       k.degree AS degree,
       k.last_updated AS last_updated
ORDER BY betweenness DESC
LIMIT $limit
`

// TrackKeywordTrends lists high-betweenness keywords refreshed in the last
// days days.
func (l *Library) TrackKeywordTrends(ctx context.Context, days int) ([]KeywordTrend, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := l.db.Read(ctx, keywordTrendsQuery, map[string]any{"days": days, "limit": trendingLimit})
	if err != nil {
		return nil, fmt.Errorf("track keyword trends: %w", err)
	}
	out := make([]KeywordTrend, 0, len(rows))
	for _, r := range rows {
		ts, _ := r.Time("last_updated")
		out = append(out, KeywordTrend{
			Keyword:     r.String("keyword"),
			Community:   r.String("community"),
			Betweenness: r.Float("betweenness"),
			Degree:      r.Int("degree"),
			LastUpdated: ts,
			Status:      "High importance",
		})
	}
	l.log.Info("tracked trending keywords", "count", len(out), "days", days)
	return out, nil
}

const emergingTopicsQuery = `
MATCH (tc:TopicCluster)<-[:BELONGS_TO]-(k:Keyword)
WITH tc,
     count(k) AS keyword_count,
     avg(k.betweenness) AS avg_importance,
     sum(k.degree) AS total_connections
WHERE keyword_count >= 3 AND avg_importance > 0.4
RETURN tc.name AS topic,
       keyword_count,
       avg_importance,
       total_connections,
       tc.modularity AS modularity
ORDER BY avg_importance DESC, keyword_count DESC
`

// DetectEmergingTopics lists clusters with at least three keywords and an
// average betweenness above 0.4.
func (l *Library) DetectEmergingTopics(ctx context.Context) ([]EmergingTopic, error) {
	rows, err := l.db.Read(ctx, emergingTopicsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("detect emerging topics: %w", err)
	}
	out := make([]EmergingTopic, 0, len(rows))
	for _, r := range rows {
		out = append(out, EmergingTopic{
			Topic:            r.String("topic"),
			KeywordCount:     r.Int("keyword_count"),
			AvgImportance:    r.Float("avg_importance"),
			TotalConnections: r.Int("total_connections"),
			Modularity:       r.Float("modularity"),
			Status:           "Emerging topic",
		})
	}
	l.log.Info("detected emerging topics", "count", len(out))
	return out, nil
}
