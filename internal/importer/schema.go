package importer

import "context"

// SchemaApplier runs schema DDL outside managed transactions and reports how
// many statements were applied. neo4jdb.Client implements it.
type SchemaApplier interface {
	RunSchema(ctx context.Context, statements []string) int
}

var schemaStatements = []string{
	`CREATE CONSTRAINT keyword_name IF NOT EXISTS FOR (k:Keyword) REQUIRE k.name IS UNIQUE`,
	`CREATE CONSTRAINT topic_cluster_name IF NOT EXISTS FOR (tc:TopicCluster) REQUIRE tc.name IS UNIQUE`,
	`CREATE CONSTRAINT prompt_text IF NOT EXISTS FOR (p:Prompt) REQUIRE p.text IS UNIQUE`,
	`CREATE CONSTRAINT persona_name IF NOT EXISTS FOR (p:Persona) REQUIRE p.name IS UNIQUE`,
	`CREATE CONSTRAINT scenario_name IF NOT EXISTS FOR (s:Scenario) REQUIRE s.name IS UNIQUE`,
	`CREATE CONSTRAINT pain_point_name IF NOT EXISTS FOR (pp:PainPoint) REQUIRE pp.name IS UNIQUE`,
	`CREATE CONSTRAINT feature_name IF NOT EXISTS FOR (f:Feature) REQUIRE f.name IS UNIQUE`,
	`CREATE CONSTRAINT product_name IF NOT EXISTS FOR (p:Product) REQUIRE p.name IS UNIQUE`,
	`CREATE CONSTRAINT claim_text IF NOT EXISTS FOR (c:Claim) REQUIRE c.text IS UNIQUE`,
	`CREATE CONSTRAINT brief_id IF NOT EXISTS FOR (b:Brief) REQUIRE b.id IS UNIQUE`,
	`CREATE CONSTRAINT asset_id IF NOT EXISTS FOR (a:Asset) REQUIRE a.id IS UNIQUE`,
	`CREATE INDEX gap_topics IF NOT EXISTS FOR (g:Gap) ON (g.topic_a, g.topic_b)`,
	`CREATE INDEX keyword_community IF NOT EXISTS FOR (k:Keyword) ON (k.community)`,
	`CREATE INDEX prompt_priority IF NOT EXISTS FOR (p:Prompt) ON (p.priority)`,
	`CREATE FULLTEXT INDEX feature_search IF NOT EXISTS FOR (f:Feature) ON EACH [f.name, f.description]`,
}

// SchemaStatements returns a copy of the bootstrap DDL.
func SchemaStatements() []string {
	return append([]string(nil), schemaStatements...)
}

// EnsureSchema applies constraints and indexes best-effort; restricted users
// may not create schema and the import still proceeds.
func EnsureSchema(ctx context.Context, s SchemaApplier) int {
	if s == nil {
		return 0
	}
	return s.RunSchema(ctx, schemaStatements)
}
