// Package config loads appcache settings.
//
// Precedence, lowest first: built-in defaults, an optional YAML file, a .env
// file in the working directory, process environment variables. Command-line
// flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all appcache configuration.
type Config struct {
	// Database configuration
	DBPath string `yaml:"db" env:"APPCACHE_DB"`
	Driver string `yaml:"driver" env:"APPCACHE_DRIVER"` // sqlite3 (cgo) or sqlite (pure Go)

	// FreshDays is the default freshness window for upserts.
	FreshDays int `yaml:"fresh_days" env:"APPCACHE_FRESH_DAYS"`

	LogLevel string `yaml:"log_level" env:"APPCACHE_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:    "appcache.db",
		Driver:    "sqlite3",
		FreshDays: 0,
		LogLevel:  "info",
	}
}

// Load builds the configuration. path names an optional YAML file; pass ""
// to skip it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("APPCACHE_DB is required")
	}
	if c.Driver != "sqlite3" && c.Driver != "sqlite" {
		return fmt.Errorf("APPCACHE_DRIVER must be sqlite3 or sqlite, got %q", c.Driver)
	}
	if c.FreshDays < 0 {
		return fmt.Errorf("APPCACHE_FRESH_DAYS must be >= 0, got %d", c.FreshDays)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("APPCACHE_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
