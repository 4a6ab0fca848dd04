package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEO_CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InfraNodus.Timeout.Duration != 30*time.Second {
		t.Fatalf("infranodus timeout=%s", cfg.InfraNodus.Timeout.Duration)
	}
	if cfg.Firecrawl.Timeout.Duration != 60*time.Second || cfg.Firecrawl.Interval.Duration != time.Second {
		t.Fatalf("firecrawl=%+v", cfg.Firecrawl)
	}
	if cfg.Import.ConceptLimit != 200 || cfg.Import.PromptPriority != PromptPriorityPosition {
		t.Fatalf("import=%+v", cfg.Import)
	}
	if cfg.Monitoring.TopGapMinScore != 0.7 || cfg.Monitoring.TopGapLimit != 5 {
		t.Fatalf("monitoring=%+v", cfg.Monitoring)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "geo.yaml")
	body := `
neo4j:
  uri: bolt://graph:7687
  timeout: 3s
infranodus:
  base_url: http://infranodus:3000/
  timeout: 45
import:
  prompt_priority: SCORE
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GEO_CONFIG_PATH", p)
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("FIRECRAWL_API_KEY", "fc-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Neo4j.URI != "bolt://graph:7687" || cfg.Neo4j.Timeout.Duration != 3*time.Second {
		t.Fatalf("neo4j=%+v", cfg.Neo4j)
	}
	if cfg.Neo4j.Password != "secret" {
		t.Fatalf("password override not applied")
	}
	if cfg.InfraNodus.BaseURL != "http://infranodus:3000" || cfg.InfraNodus.Timeout.Duration != 45*time.Second {
		t.Fatalf("infranodus=%+v", cfg.InfraNodus)
	}
	if cfg.Firecrawl.APIKey != "fc-key" {
		t.Fatalf("firecrawl key=%q", cfg.Firecrawl.APIKey)
	}
	if cfg.Import.PromptPriority != PromptPriorityScore {
		t.Fatalf("prompt priority=%q", cfg.Import.PromptPriority)
	}
	// Untouched sections keep their defaults.
	if cfg.Acquisition.SettleDelay.Duration != 5*time.Second {
		t.Fatalf("settle delay=%s", cfg.Acquisition.SettleDelay.Duration)
	}
}

func TestLoadRejectsUnknownPromptPriority(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "geo.yaml")
	if err := os.WriteFile(p, []byte("import:\n  prompt_priority: random\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("GEO_CONFIG_PATH", p)
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("GEO_CONFIG_PATH", "")
	t.Chdir(t.TempDir())
	t.Setenv("GEO_CORS_ORIGINS", " http://localhost:5173, ,http://dash.local ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[0] != "http://localhost:5173" || cfg.HTTP.CORSOrigins[1] != "http://dash.local" {
		t.Fatalf("origins=%q", cfg.HTTP.CORSOrigins)
	}
}
