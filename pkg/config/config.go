// Package config loads the catalogsync CLI configuration with layered
// sources: built-in defaults, an optional YAML file, then CATALOG_-prefixed
// environment variables, in rising precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the environment overrides, e.g.
// CATALOG_SYNC_URL -> sync.url, CATALOG_DATA_DIR -> data_dir.
const envPrefix = "CATALOG_"

// SyncConfig configures the synchronization pipeline.
type SyncConfig struct {
	URL               string        `koanf:"url"`
	FallbackToBundled bool          `koanf:"fallback_to_bundled"`
	ValidateSchema    bool          `koanf:"validate_schema"`
	EnforceHTTPS      bool          `koanf:"enforce_https"`
	BundledPath       string        `koanf:"bundled_path"`
	AttemptTimeout    time.Duration `koanf:"attempt_timeout"`
	MaxAttempts       int           `koanf:"max_attempts"`
	RetryDelay        time.Duration `koanf:"retry_delay"`
}

// Config is the full CLI configuration.
type Config struct {
	LogLevel string     `koanf:"log_level"`
	DataDir  string     `koanf:"data_dir"`
	Sync     SyncConfig `koanf:"sync"`
}

// defaultConfig returns the built-in defaults, applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		DataDir:  "./data",
		Sync: SyncConfig{
			URL:               "",
			FallbackToBundled: true,
			ValidateSchema:    true,
			EnforceHTTPS:      true,
			BundledPath:       "",
			AttemptTimeout:    5 * time.Second,
			MaxAttempts:       3,
			RetryDelay:        time.Second,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply; a non-empty path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// CATALOG_SYNC_MAX_ATTEMPTS -> sync.max_attempts; key names keep their
	// underscores, only the section prefix becomes a path separator.
	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if rest, ok := strings.CutPrefix(key, "sync_"); ok {
			return "sync." + rest
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that koanf cannot express.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be at least 1, got %d", c.Sync.MaxAttempts)
	}
	if c.Sync.AttemptTimeout <= 0 {
		return fmt.Errorf("sync.attempt_timeout must be positive")
	}
	if c.Sync.URL == "" && c.Sync.BundledPath == "" {
		return fmt.Errorf("at least one of sync.url and sync.bundled_path must be set")
	}
	return nil
}
