// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	CacheDir        string        `env:"CACHE_DIR" envDefault:"./output"`
	Timezone        string        `env:"TIMEZONE" envDefault:"Europe/Istanbul"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Source SourceConfig
	Log    LogConfig
}

// SourceConfig describes the upstream duty pharmacy site
type SourceConfig struct {
	BaseURL   string `env:"SOURCE_BASE_URL" envDefault:"https://www.eczaneler.gen.tr"`
	UserAgent string `env:"USER_AGENT"`
	// HTTPCache keeps fetched pages in memory and revalidates them with
	// conditional requests.
	HTTPCache bool `env:"HTTP_CACHE" envDefault:"false"`
	// RateLimit caps outgoing requests per second; 0 disables the limit.
	RateLimit float64 `env:"SOURCE_RATE_LIMIT" envDefault:"0"`
	RateBurst int     `env:"SOURCE_RATE_BURST" envDefault:"1"`
}

// LogConfig controls the zerolog output
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"` // optional, rotated
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("CACHE_DIR must not be empty")
	}
	if c.Source.RateLimit < 0 {
		return fmt.Errorf("SOURCE_RATE_LIMIT must not be negative")
	}
	if c.Source.RateLimit > 0 && c.Source.RateBurst < 1 {
		return fmt.Errorf("SOURCE_RATE_BURST must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the time zone used for request dates and duty windows
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
