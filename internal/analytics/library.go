// Package analytics is the query library over the knowledge graph: gap
// detection, prompt ranking, persona coverage, evidence validation, citation
// scoring, coverage, competitive comparison, trends, retrieval and bridging.
//
// Queries fetch raw inputs; formulas are applied in Go through the scoring
// package. An error always means the store failed. No data is an empty result.
package analytics

import (
	"fmt"

	"github.com/yungbote/geograph/internal/graphdb"
	"github.com/yungbote/geograph/internal/platform/logger"
)

type Library struct {
	db  graphdb.Runner
	log *logger.Logger
}

func New(db graphdb.Runner, log *logger.Logger) (*Library, error) {
	if db == nil {
		return nil, fmt.Errorf("analytics: graph runner required")
	}
	if log == nil {
		return nil, fmt.Errorf("analytics: logger required")
	}
	return &Library{db: db, log: log.With("component", "AnalyticsLibrary")}, nil
}

// nullable maps "" to nil so optional Cypher filters see NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optFloat(r graphdb.Row, key string) *float64 {
	if f, ok := r.FloatOK(key); ok {
		return &f
	}
	return nil
}
