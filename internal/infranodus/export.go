package infranodus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yungbote/geograph/internal/domain/knowledge"
)

type Export struct {
	Context     string                `json:"context"`
	Graph       knowledge.GraphData   `json:"graph"`
	Concepts    []knowledge.Concept   `json:"concepts"`
	Statements  []knowledge.Statement `json:"statements"`
	Gaps        []knowledge.Gap       `json:"gaps"`
	Communities []knowledge.Community `json:"communities"`
}

// Export snapshots a context to a JSON file. The graph is fetched once and
// the derived views are computed from it; statements are fetched separately.
func (c *Client) Export(ctx context.Context, graphContext, path string) (Export, error) {
	graphContext = contextOrDefault(graphContext)
	c.log.Info("Exporting context", "context", graphContext, "path", path)

	g, err := c.Graph(ctx, graphContext)
	if err != nil {
		return Export{}, err
	}
	stmts, err := c.Statements(ctx, graphContext)
	if err != nil {
		return Export{}, err
	}
	concepts := knowledge.ConceptsByBetweenness(g.Nodes, DefaultConceptLimit)
	out := Export{
		Context:     graphContext,
		Graph:       g,
		Concepts:    concepts,
		Statements:  stmts,
		Gaps:        GapsFromGraph(g, nil),
		Communities: knowledge.GroupCommunities(concepts),
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return out, fmt.Errorf("export: mkdir: %w", err)
		}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return out, fmt.Errorf("export: encode: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return out, fmt.Errorf("export: write: %w", err)
	}
	c.log.Info("Exported context", "path", path)
	return out, nil
}
