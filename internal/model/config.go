package model

import "time"

// Config is the complete estudio configuration. It is populated from
// defaults, the config file, ESTUDIO_* environment variables and flags.
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Source       SourceConfig      `yaml:"source" mapstructure:"source"`
	Listing      ListingConfig     `yaml:"listing" mapstructure:"listing"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Metrics      MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// HTTPConfig configures the dossier fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`

	// Breaker trips after BreakerFailures consecutive failures per host
	BreakerFailures uint32        `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" mapstructure:"breaker_timeout"`
}

// CacheConfig selects and tunes the analysis cache
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend    string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, sqlite, redis
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir        string        `yaml:"dir" mapstructure:"dir"`
	SQLitePath string        `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	RedisAddr  string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB    int           `yaml:"redis_db" mapstructure:"redis_db"`
}

// RateLimitConfig limits requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// SourceConfig says where match dossiers come from. BaseURL wins over Dir
// when both are set.
type SourceConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ListingConfig locates the match listings document
type ListingConfig struct {
	DataFile     string `yaml:"data_file" mapstructure:"data_file"`
	DefaultLimit int    `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit     int    `yaml:"max_limit" mapstructure:"max_limit"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama or empty
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	Strict    bool   `yaml:"strict" mapstructure:"strict"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	Verbose       bool   `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`
	Spreadsheet   bool   `yaml:"spreadsheet" mapstructure:"spreadsheet"`
}

// MetricsConfig enables the Prometheus textfile export
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LoggingConfig configures logrus
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			UserAgent:       "estudio/0.1 (+https://github.com/ppiankov/estudio)",
			MaxBodyBytes:    4 << 20,
			RespectRobots:   true,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    "layered",
			TTL:        6 * time.Hour,
			Dir:        "~/.estudio/cache",
			SQLitePath: "~/.estudio/cache.db",
			RedisAddr:  "localhost:6379",
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Source: SourceConfig{
			Dir: "data/dossiers",
		},
		Listing: ListingConfig{
			DataFile:     "data.json",
			DefaultLimit: 5,
			MaxLimit:     50,
		},
		LLM: LLMConfig{
			Timeout:   30,
			Strict:    true,
			MaxTokens: 600,
		},
		Output: OutputConfig{
			Dir:           "./estudio-reports",
			IncludeFooter: true,
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
