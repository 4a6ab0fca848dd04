package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/geograph/internal/domain/knowledge"
	"github.com/yungbote/geograph/internal/infranodus"
)

type Stats struct {
	RunID         string    `json:"run_id"`
	Context       string    `json:"context"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	SchemaApplied int       `json:"schema_applied"`
	Keywords      int64     `json:"keywords"`
	Clusters      int64     `json:"clusters"`
	ClusterLinks  int64     `json:"cluster_links"`
	CoOccurrences int64     `json:"cooccurrences"`
	Gaps          int64     `json:"gaps"`
	Prompts       int64     `json:"prompts"`
	// FetchError is set when the upstream graph could not be fetched and the
	// phases ran on empty input.
	FetchError string `json:"fetch_error,omitempty"`
}

// ImportFullDataset logs in, fetches the context once and runs the six
// phases in order. A rejected login returns ErrAuthentication before any
// write. An upstream fetch failure degrades every phase to zero; a store
// failure stops the run and returns the stats gathered so far.
func (im *Importer) ImportFullDataset(ctx context.Context, graphContext string) (Stats, error) {
	if graphContext == "" {
		graphContext = im.cfg.Context
	}
	if graphContext == "" {
		graphContext = infranodus.DefaultContext
	}
	stats := Stats{RunID: uuid.NewString(), Context: graphContext, StartedAt: time.Now().UTC()}
	log := im.log.With("run_id", stats.RunID, "context", graphContext)
	log.Info("Starting full import")

	ok, err := im.src.Login(ctx)
	if err != nil || !ok {
		log.Error("Failed to authenticate with content-graph service", "error", err)
		if err != nil {
			return stats, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return stats, ErrAuthentication
	}

	if im.cfg.EnsureSchema {
		if sa, ok := im.db.(SchemaApplier); ok {
			stats.SchemaApplied = EnsureSchema(ctx, sa)
			log.Info("Schema bootstrap applied", "statements", stats.SchemaApplied)
		}
	}

	graph, err := im.src.Graph(ctx, graphContext)
	if err != nil {
		log.Warn("Graph fetch failed; importing empty dataset", "error", err)
		stats.FetchError = err.Error()
		graph = knowledge.GraphData{}
	}
	concepts := knowledge.ConceptsByBetweenness(graph.Nodes, im.cfg.ConceptLimit)
	communities := knowledge.GroupCommunities(concepts)
	gaps := infranodus.GapsFromGraph(graph, log)

	finish := func(err error) (Stats, error) {
		stats.FinishedAt = time.Now().UTC()
		if err != nil {
			log.Error("Import failed", "error", err)
			return stats, err
		}
		log.Info("Import completed",
			"keywords", stats.Keywords,
			"clusters", stats.Clusters,
			"cluster_links", stats.ClusterLinks,
			"cooccurrences", stats.CoOccurrences,
			"gaps", stats.Gaps,
			"prompts", stats.Prompts,
		)
		return stats, nil
	}

	log.Info("Step 1: importing keywords")
	if stats.Keywords, err = im.ImportKeywords(ctx, concepts); err != nil {
		return finish(err)
	}
	log.Info("Step 2: importing topic clusters")
	if stats.Clusters, err = im.ImportTopicClusters(ctx, communities); err != nil {
		return finish(err)
	}
	log.Info("Step 3: linking keywords to clusters")
	if stats.ClusterLinks, err = im.LinkKeywordsToClusters(ctx, concepts); err != nil {
		return finish(err)
	}
	log.Info("Step 4: importing co-occurrence network")
	if stats.CoOccurrences, err = im.ImportCoOccurrences(ctx, graph.Edges); err != nil {
		return finish(err)
	}
	log.Info("Step 5: importing structure holes")
	if stats.Gaps, err = im.ImportGaps(ctx, gaps); err != nil {
		return finish(err)
	}
	log.Info("Step 6: generating prompts from gaps")
	if stats.Prompts, err = im.GeneratePrompts(ctx, gaps); err != nil {
		return finish(err)
	}
	return finish(nil)
}

// Save writes the stats to dir/ingestion_stats_<run id>.json and returns the
// path.
func (s Stats) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save stats: %w", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("save stats: %w", err)
	}
	path := filepath.Join(dir, "ingestion_stats_"+s.RunID+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("save stats: %w", err)
	}
	return path, nil
}
