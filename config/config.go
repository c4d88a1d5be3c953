// Package config loads the dash configuration: a YAML file for settings and a
// .env file for secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables holding secrets. They are read from the process
// environment first, then from the .env file.
const (
	EnvSpotAPIKey   = "DASH_SPOT_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvEODAPIKey    = "EODHD_API_KEY"
)

// Config is the complete dash configuration.
type Config struct {
	Ledger        string            `yaml:"ledger"`
	Currency      string            `yaml:"currency"`
	Market        MarketConfig      `yaml:"market"`
	Spot          SpotConfig        `yaml:"spot"`
	EOD           EODConfig         `yaml:"eod"`
	FullHistory   []string          `yaml:"full_history,omitempty"`
	Aliases       map[string]string `yaml:"aliases,omitempty"`
	Sectors       map[string]string `yaml:"sectors,omitempty"`
	Benchmark     string            `yaml:"benchmark"`
	FallbackPrice float64           `yaml:"fallback_price"`
	Period        string            `yaml:"period"`
	Journal       string            `yaml:"journal,omitempty"`
	Server        ServerConfig      `yaml:"server"`
	Explain       ExplainConfig     `yaml:"explain"`
}

// MarketConfig locates the daily closes. SQLite wins when both are set.
type MarketConfig struct {
	Folder string `yaml:"folder,omitempty"`
	SQLite string `yaml:"sqlite,omitempty"`
}

// SpotConfig configures present-day quotes.
type SpotConfig struct {
	URL         string             `yaml:"url,omitempty"` // with a {ticker} placeholder
	PricePath   string             `yaml:"price_path,omitempty"`
	TimePath    string             `yaml:"time_path,omitempty"`
	Timeout     time.Duration      `yaml:"timeout"`
	Retries     int                `yaml:"retries"`
	Parallelism int                `yaml:"parallelism"`
	Staleness   time.Duration      `yaml:"staleness"`
	CacheDir    string             `yaml:"cache_dir,omitempty"`
	Static      map[string]float64 `yaml:"static,omitempty"`
	APIKey      string             `yaml:"-"`
}

// EODConfig configures the download of daily closes.
type EODConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"` // suffix of tickers without one
	APIKey   string `yaml:"-"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ExplainConfig configures the generated commentary.
type ExplainConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"-"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Ledger:        "transactions.jsonl",
		Currency:      "USD",
		Market:        MarketConfig{Folder: "market"},
		Benchmark:     "SPY",
		FallbackPrice: 100,
		Period:        "monthly",
		Spot: SpotConfig{
			PricePath:   "$.price",
			Timeout:     5 * time.Second,
			Retries:     3,
			Parallelism: 8,
			Staleness:   24 * time.Hour,
		},
		EOD:     EODConfig{URL: "https://eodhd.com/api", Exchange: "US"},
		Server:  ServerConfig{Addr: "localhost:8080"},
		Explain: ExplainConfig{Model: "gemini-2.5-flash"},
	}
}

// Load reads the YAML file at path over the defaults, then the secrets.
// A missing file at path keeps the defaults, an empty path too. A missing
// envFile is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", path, err)
			}
		}
	}

	env := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		if m != nil {
			env = m
		}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return env[key]
	}
	cfg.Spot.APIKey = lookup(EnvSpotAPIKey)
	cfg.Explain.APIKey = lookup(EnvGeminiAPIKey)
	cfg.EOD.APIKey = lookup(EnvEODAPIKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Ledger == "" {
		return fmt.Errorf("ledger is required")
	}
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if c.FallbackPrice <= 0 {
		return fmt.Errorf("fallback_price must be positive")
	}
	if c.Spot.Timeout <= 0 {
		return fmt.Errorf("spot.timeout must be positive")
	}
	if c.Spot.Retries < 0 {
		return fmt.Errorf("spot.retries cannot be negative")
	}
	if c.Spot.Parallelism <= 0 {
		return fmt.Errorf("spot.parallelism must be positive")
	}
	if c.Spot.URL != "" && c.Spot.PricePath == "" {
		return fmt.Errorf("spot.price_path is required with spot.url")
	}
	for t, p := range c.Spot.Static {
		if p <= 0 {
			return fmt.Errorf("spot.static price of %s must be positive", t)
		}
	}
	return nil
}

// Save writes the configuration as YAML. Secrets are not written.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
