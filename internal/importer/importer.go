// Package importer loads a content-graph context into the knowledge graph:
// keywords, topic clusters, membership, co-occurrence edges, gaps and the
// exploratory prompts derived from them. Every step is an idempotent upsert.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/domain/knowledge"
	"github.com/yungbote/geograph/internal/graphdb"
	"github.com/yungbote/geograph/internal/platform/logger"
	"github.com/yungbote/geograph/internal/scoring"
)

// ErrAuthentication aborts a full import before any phase runs.
var ErrAuthentication = errors.New("importer: content-graph authentication failed")

// Source is the subset of the content-graph client the importer needs.
type Source interface {
	Login(ctx context.Context) (bool, error)
	Graph(ctx context.Context, graphContext string) (knowledge.GraphData, error)
}

type Importer struct {
	db  graphdb.Runner
	src Source
	cfg config.ImportConfig
	log *logger.Logger
}

func New(db graphdb.Runner, src Source, cfg config.ImportConfig, log *logger.Logger) (*Importer, error) {
	if db == nil {
		return nil, fmt.Errorf("importer: graph runner required")
	}
	if src == nil {
		return nil, fmt.Errorf("importer: source required")
	}
	if log == nil {
		return nil, fmt.Errorf("importer: logger required")
	}
	if cfg.ConceptLimit <= 0 {
		cfg.ConceptLimit = 200
	}
	if cfg.PromptPriority == "" {
		cfg.PromptPriority = config.PromptPriorityPosition
	}
	return &Importer{db: db, src: src, cfg: cfg, log: log.With("component", "GraphImporter")}, nil
}

const importKeywordsQuery = `
UNWIND $rows AS row
MERGE (k:Keyword {name: row.name})
SET k.betweenness = row.betweenness,
    k.degree = row.degree,
    k.community = row.community,
    k.last_updated = datetime()
RETURN count(k) AS imported
`

// ImportKeywords upserts one Keyword per concept. A concept without a
// community is stored under "uncategorized".
func (im *Importer) ImportKeywords(ctx context.Context, concepts []knowledge.Concept) (int64, error) {
	rows := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		comm := c.Community
		if comm == "" {
			comm = knowledge.DefaultCommunity
		}
		rows = append(rows, map[string]any{
			"name":        c.Name,
			"betweenness": c.Betweenness,
			"degree":      c.Degree,
			"community":   comm,
		})
	}
	n, err := im.upsert(ctx, importKeywordsQuery, rows, "imported")
	if err != nil {
		return 0, fmt.Errorf("import keywords: %w", err)
	}
	im.log.Info("Imported keywords", "count", n)
	return n, nil
}

const importClustersQuery = `
UNWIND $rows AS row
MERGE (tc:TopicCluster {name: row.name})
SET tc.size = row.size,
    tc.modularity = row.modularity,
    tc.last_updated = datetime()
RETURN count(tc) AS imported
`

func (im *Importer) ImportTopicClusters(ctx context.Context, communities []knowledge.Community) (int64, error) {
	rows := make([]map[string]any, 0, len(communities))
	for _, c := range communities {
		rows = append(rows, map[string]any{
			"name":       c.Name,
			"size":       len(c.Members),
			"modularity": c.Modularity,
		})
	}
	n, err := im.upsert(ctx, importClustersQuery, rows, "imported")
	if err != nil {
		return 0, fmt.Errorf("import topic clusters: %w", err)
	}
	im.log.Info("Imported topic clusters", "count", n)
	return n, nil
}

const linkClustersQuery = `
UNWIND $rows AS row
MATCH (k:Keyword {name: row.name})
MATCH (tc:TopicCluster {name: row.community})
MERGE (k)-[:BELONGS_TO]->(tc)
RETURN count(*) AS linked
`

// LinkKeywordsToClusters links only concepts that carry a community.
func (im *Importer) LinkKeywordsToClusters(ctx context.Context, concepts []knowledge.Concept) (int64, error) {
	rows := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		if c.Community == "" {
			continue
		}
		rows = append(rows, map[string]any{"name": c.Name, "community": c.Community})
	}
	n, err := im.upsert(ctx, linkClustersQuery, rows, "linked")
	if err != nil {
		return 0, fmt.Errorf("link keywords to clusters: %w", err)
	}
	im.log.Info("Created BELONGS_TO relationships", "count", n)
	return n, nil
}

const importCoOccurrencesQuery = `
UNWIND $rows AS row
MATCH (k1:Keyword {name: row.source})
MATCH (k2:Keyword {name: row.target})
MERGE (k1)-[r:CO_OCCURS_WITH]->(k2)
SET r.weight = row.weight,
    r.last_updated = datetime()
RETURN count(r) AS imported
`

// ImportCoOccurrences upserts edges between keywords that already exist;
// edges touching unknown keywords are not counted.
func (im *Importer) ImportCoOccurrences(ctx context.Context, edges []knowledge.Edge) (int64, error) {
	rows := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, map[string]any{"source": e.Source, "target": e.Target, "weight": e.Weight})
	}
	n, err := im.upsert(ctx, importCoOccurrencesQuery, rows, "imported")
	if err != nil {
		return 0, fmt.Errorf("import co-occurrences: %w", err)
	}
	im.log.Info("Imported co-occurrence relationships", "count", n)
	return n, nil
}

const importGapsQuery = `
UNWIND $rows AS row
MERGE (g:Gap {topic_a: row.topic_a, topic_b: row.topic_b})
SET g.opportunity_score = row.opportunity_score,
    g.bridging_keywords = row.bridging_keywords,
    g.community_a = row.community_a,
    g.community_b = row.community_b,
    g.keywords_a = row.keywords_a,
    g.keywords_b = row.keywords_b,
    g.discovered_at = datetime()
RETURN count(g) AS imported
`

// ImportGaps upserts gaps keyed by their canonical topic pair.
func (im *Importer) ImportGaps(ctx context.Context, gaps []knowledge.Gap) (int64, error) {
	gaps = canonicalGaps(gaps)
	rows := make([]map[string]any, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, map[string]any{
			"topic_a":           g.TopicA,
			"topic_b":           g.TopicB,
			"opportunity_score": g.OpportunityScore,
			"bridging_keywords": nonNil(g.BridgingKeywords),
			"community_a":       nullable(g.CommunityA),
			"community_b":       nullable(g.CommunityB),
			"keywords_a":        nonNil(g.KeywordsA),
			"keywords_b":        nonNil(g.KeywordsB),
		})
	}
	n, err := im.upsert(ctx, importGapsQuery, rows, "imported")
	if err != nil {
		return 0, fmt.Errorf("import gaps: %w", err)
	}
	im.log.Info("Imported structure holes", "count", n)
	return n, nil
}

const generatePromptsQuery = `
UNWIND $rows AS row
MERGE (p:Prompt {text: row.text})
SET p.type = row.type,
    p.priority = row.priority,
    p.gap_score = row.gap_score,
    p.generated_at = datetime()
WITH p, row
MATCH (g:Gap {topic_a: row.topic_a, topic_b: row.topic_b})
MERGE (g)-[:SUGGESTS]->(p)
RETURN count(p) AS generated
`

// PromptText is the exploratory question drafted for a gap.
func PromptText(g knowledge.Gap) string {
	return "How are " + g.TopicA + " and " + g.TopicB + " related?"
}

// GeneratePrompts upserts one exploratory prompt per gap and links it to the
// gap. Priority follows the configured mode: ingestion position or score.
func (im *Importer) GeneratePrompts(ctx context.Context, gaps []knowledge.Gap) (int64, error) {
	gaps = canonicalGaps(gaps)
	rows := make([]map[string]any, 0, len(gaps))
	for i, g := range gaps {
		rows = append(rows, map[string]any{
			"text":      PromptText(g),
			"type":      knowledge.PromptTypeExploratory,
			"priority":  im.priority(i, g.OpportunityScore),
			"gap_score": g.OpportunityScore,
			"topic_a":   g.TopicA,
			"topic_b":   g.TopicB,
		})
	}
	n, err := im.upsert(ctx, generatePromptsQuery, rows, "generated")
	if err != nil {
		return 0, fmt.Errorf("generate prompts: %w", err)
	}
	im.log.Info("Generated prompts from gaps", "count", n)
	return n, nil
}

func (im *Importer) priority(index int, score float64) int {
	if im.cfg.PromptPriority == config.PromptPriorityScore {
		return scoring.ScorePriority(score)
	}
	return scoring.PositionPriority(index)
}

func (im *Importer) upsert(ctx context.Context, cypher string, rows []map[string]any, countKey string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res, err := im.db.Write(ctx, cypher, map[string]any{"rows": rows})
	if err != nil {
		return 0, err
	}
	return graphdb.First(res).Int(countKey), nil
}

// canonicalGaps normalises every pair and keeps the first occurrence of each
// unordered pair, so reversed duplicates collapse into one gap and one prompt.
func canonicalGaps(gaps []knowledge.Gap) []knowledge.Gap {
	seen := make(map[string]bool, len(gaps))
	out := make([]knowledge.Gap, 0, len(gaps))
	for _, g := range gaps {
		g = g.Normalized()
		if seen[g.ID()] {
			continue
		}
		seen[g.ID()] = true
		out = append(out, g)
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
