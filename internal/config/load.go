package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/geograph/internal/platform/envutil"
)

const (
	PromptPriorityPosition = "position"
	PromptPriorityScore    = "score"
)

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Duration = time.Duration(n) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or an integer number of seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func Default() *Config {
	return &Config{
		Env:         "development",
		ServiceName: "geograph",
		OutputDir:   "./data_output",
		Brand:       "SweetNight",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Neo4j: Neo4jConfig{
			URI:         "neo4j://localhost:7688",
			User:        "neo4j",
			Timeout:     Duration{Duration: 10 * time.Second},
			MaxPoolSize: 50,
		},
		Redis: RedisConfig{
			DialTimeout:  Duration{Duration: 5 * time.Second},
			KeyPrefix:    "geo:monitoring",
			HistoryLimit: 12,
		},
		InfraNodus: InfraNodusConfig{
			BaseURL:  "http://localhost:3000",
			Username: "demo_user",
			Password: "demo",
			Timeout:  Duration{Duration: 30 * time.Second},
		},
		Firecrawl: FirecrawlConfig{
			BaseURL:  "http://localhost:3002",
			APIKey:   "fs-test",
			Timeout:  Duration{Duration: 60 * time.Second},
			Interval: Duration{Duration: time.Second},
		},
		Import: ImportConfig{
			Context:        "@private",
			ConceptLimit:   200,
			PromptPriority: PromptPriorityPosition,
			EnsureSchema:   true,
		},
		Acquisition: AcquisitionConfig{
			Context:     "geo_acquisition",
			SettleDelay: Duration{Duration: 5 * time.Second},
		},
		Monitoring: MonitoringConfig{
			TopGapMinScore: 0.7,
			TopGapLimit:    5,
		},
	}
}

// Load reads GEO_CONFIG_PATH (or ./config/config.yaml when present) over the
// defaults, then applies environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(os.Getenv("GEO_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Env, "LOG_MODE")
	setString(&cfg.OutputDir, "GEO_OUTPUT_DIR")
	setString(&cfg.Brand, "GEO_BRAND")
	setString(&cfg.HTTP.Addr, "GEO_HTTP_ADDR")
	if v := envutil.String("GEO_CORS_ORIGINS", ""); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	setString(&cfg.Neo4j.URI, "NEO4J_URI")
	setString(&cfg.Neo4j.User, "NEO4J_USER")
	setString(&cfg.Neo4j.Password, "NEO4J_PASSWORD")
	setString(&cfg.Neo4j.Database, "NEO4J_DATABASE")
	if v := envutil.Int("NEO4J_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.Neo4j.Timeout = Duration{Duration: time.Duration(v) * time.Second}
	}
	if v := envutil.Int("NEO4J_MAX_POOL_SIZE", 0); v > 0 {
		cfg.Neo4j.MaxPoolSize = v
	}

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.InfraNodus.BaseURL, "INFRANODUS_URL")
	setString(&cfg.InfraNodus.Username, "INFRANODUS_USERNAME")
	setString(&cfg.InfraNodus.Password, "INFRANODUS_PASSWORD")
	setString(&cfg.Import.Context, "INFRANODUS_CONTEXT")

	setString(&cfg.Firecrawl.BaseURL, "FIRECRAWL_URL")
	setString(&cfg.Firecrawl.APIKey, "FIRECRAWL_API_KEY")

	setString(&cfg.Import.PromptPriority, "GEO_PROMPT_PRIORITY")
}

func (cfg *Config) normalize() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		cfg.OutputDir = "./data_output"
	}
	if cfg.Brand = strings.TrimSpace(cfg.Brand); cfg.Brand == "" {
		cfg.Brand = "SweetNight"
	}

	cfg.Neo4j.URI = strings.TrimSpace(cfg.Neo4j.URI)
	if cfg.Neo4j.URI == "" {
		return errors.New("neo4j.uri is required")
	}
	if cfg.Neo4j.User == "" {
		cfg.Neo4j.User = "neo4j"
	}
	if cfg.Neo4j.Timeout.Duration <= 0 {
		cfg.Neo4j.Timeout = Duration{Duration: 10 * time.Second}
	}
	if cfg.Neo4j.MaxPoolSize <= 0 {
		cfg.Neo4j.MaxPoolSize = 50
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "geo:monitoring"
	}
	if cfg.Redis.HistoryLimit <= 0 {
		cfg.Redis.HistoryLimit = 12
	}
	if cfg.Redis.DialTimeout.Duration <= 0 {
		cfg.Redis.DialTimeout = Duration{Duration: 5 * time.Second}
	}

	cfg.InfraNodus.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.InfraNodus.BaseURL), "/")
	if cfg.InfraNodus.BaseURL == "" {
		return errors.New("infranodus.base_url is required")
	}
	if cfg.InfraNodus.Timeout.Duration <= 0 {
		cfg.InfraNodus.Timeout = Duration{Duration: 30 * time.Second}
	}

	cfg.Firecrawl.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Firecrawl.BaseURL), "/")
	if cfg.Firecrawl.BaseURL == "" {
		return errors.New("firecrawl.base_url is required")
	}
	if cfg.Firecrawl.Timeout.Duration <= 0 {
		cfg.Firecrawl.Timeout = Duration{Duration: 60 * time.Second}
	}
	if cfg.Firecrawl.Interval.Duration < 0 {
		return errors.New("firecrawl.interval must not be negative")
	}

	if strings.TrimSpace(cfg.Import.Context) == "" {
		cfg.Import.Context = "@private"
	}
	if cfg.Import.ConceptLimit <= 0 {
		cfg.Import.ConceptLimit = 200
	}
	cfg.Import.PromptPriority = strings.ToLower(strings.TrimSpace(cfg.Import.PromptPriority))
	switch cfg.Import.PromptPriority {
	case "":
		cfg.Import.PromptPriority = PromptPriorityPosition
	case PromptPriorityPosition, PromptPriorityScore:
	default:
		return fmt.Errorf("invalid import.prompt_priority=%q", cfg.Import.PromptPriority)
	}

	if strings.TrimSpace(cfg.Acquisition.Context) == "" {
		cfg.Acquisition.Context = "geo_acquisition"
	}
	if cfg.Acquisition.SettleDelay.Duration < 0 {
		return errors.New("acquisition.settle_delay must not be negative")
	}

	if cfg.Monitoring.TopGapLimit <= 0 {
		cfg.Monitoring.TopGapLimit = 5
	}
	if cfg.Monitoring.TopGapMinScore < 0 {
		return errors.New("monitoring.top_gap_min_score must not be negative")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setString(dst *string, name string) {
	*dst = envutil.String(name, *dst)
}
