package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	// CORSOrigins lists browser origins allowed to call the API (the reporting
	// dashboard). Empty disables CORS handling.
	CORSOrigins []string `yaml:"cors_origins"`
}

type Neo4jConfig struct {
	URI         string   `yaml:"uri"`
	User        string   `yaml:"user"`
	Password    string   `yaml:"password"`
	Database    string   `yaml:"database"`
	Timeout     Duration `yaml:"timeout"`
	MaxPoolSize int      `yaml:"max_pool_size"`
}

// RedisConfig is optional. An empty Addr disables snapshot persistence.
type RedisConfig struct {
	Addr         string   `yaml:"addr"`
	Password     string   `yaml:"password"`
	DB           int      `yaml:"db"`
	DialTimeout  Duration `yaml:"dial_timeout"`
	KeyPrefix    string   `yaml:"key_prefix"`
	HistoryLimit int64    `yaml:"history_limit"`
}

type InfraNodusConfig struct {
	BaseURL  string   `yaml:"base_url"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Timeout  Duration `yaml:"timeout"`
}

type FirecrawlConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"api_key"`
	Timeout Duration `yaml:"timeout"`
	// Interval is the minimum spacing between sequential scrape calls.
	Interval Duration `yaml:"interval"`
}

type ImportConfig struct {
	Context      string `yaml:"context"`
	ConceptLimit int    `yaml:"concept_limit"`

	// PromptPriority selects how generated prompts get their initial priority:
	// "position" (ingestion order, capped at 10) or "score" (gap score scaled to 1..10).
	PromptPriority string `yaml:"prompt_priority"`

	EnsureSchema bool `yaml:"ensure_schema"`
}

type AcquisitionConfig struct {
	Context     string   `yaml:"context"`
	SettleDelay Duration `yaml:"settle_delay"`
}

type MonitoringConfig struct {
	// TopGapMinScore and TopGapLimit feed the structure-hole section of the weekly report.
	TopGapMinScore float64 `yaml:"top_gap_min_score"`
	TopGapLimit    int     `yaml:"top_gap_limit"`
}

type Config struct {
	Env         string            `yaml:"env"`
	ServiceName string            `yaml:"service_name"`
	OutputDir   string            `yaml:"output_dir"`
	// Brand is the default for differentiation analysis.
	Brand       string            `yaml:"brand"`
	HTTP        HTTPConfig        `yaml:"http"`
	Neo4j       Neo4jConfig       `yaml:"neo4j"`
	Redis       RedisConfig       `yaml:"redis"`
	InfraNodus  InfraNodusConfig  `yaml:"infranodus"`
	Firecrawl   FirecrawlConfig   `yaml:"firecrawl"`
	Import      ImportConfig      `yaml:"import"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
}
