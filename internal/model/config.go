package model

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultBackendURL is the local development backend
const DefaultBackendURL = "http://127.0.0.1:8000/api"

// Config holds all umactually settings
type Config struct {
	Backend      BackendConfig      `yaml:"backend" mapstructure:"backend"`
	History      HistoryConfig      `yaml:"history" mapstructure:"history"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Playback     PlaybackConfig     `yaml:"playback" mapstructure:"playback"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
}

// BackendConfig configures the analysis backend client
type BackendConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"` // Empty falls back to the environment, then DefaultBackendURL
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RetryAttempts int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// HistoryConfig configures the local history store
type HistoryConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
}

// CacheConfig configures the transcript cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"` // Shared cache instead of disk when set
}

// PlaybackConfig configures transcript tracking during replay
type PlaybackConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	ScrollResume time.Duration `yaml:"scroll_resume" mapstructure:"scroll_resume"`
	WindowSize   int           `yaml:"window_size" mapstructure:"window_size"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits requests sent to the backend
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig configures terminal output
type OutputConfig struct {
	Color   string `yaml:"color" mapstructure:"color"` // auto, always, never
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// AuthorityConfig maps source domains to authority tiers for display
type AuthorityConfig struct {
	PrimaryDomains   []string `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	Overrides        []string `yaml:"overrides" mapstructure:"overrides"` // host=primary|secondary|tertiary
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	base := defaultDataDir()
	return &Config{
		Backend: BackendConfig{
			Timeout:       2 * time.Minute,
			UserAgent:     "umactually/0.1",
			MaxBodyBytes:  8_000_000,
			RetryAttempts: 3,
		},
		History: HistoryConfig{
			Path:       filepath.Join(base, "history.json"),
			MaxEntries: 50,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Playback: PlaybackConfig{
			PollInterval: 100 * time.Millisecond,
			ScrollResume: 3 * time.Second,
			WindowSize:   5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"doi.org",
				"pubmed.ncbi.nlm.nih.gov",
				"who.int",
				"europa.eu",
				"legislation.gov.uk",
				"arxiv.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org",
				"britannica.com",
				"reuters.com",
				"apnews.com",
				"bbc.co.uk",
				"nature.com",
				"snopes.com",
				"factcheck.org",
			},
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".umactually"
	}
	return filepath.Join(home, ".umactually")
}
