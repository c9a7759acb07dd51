// Package config loads the facade's tuning knobs — tier limits and the
// interval a collaborator should use when calling Prune on a schedule —
// from environment variables, a YAML file, or functional-option
// defaults, mirroring the LoadFromEnv/Validate pairing and section-
// struct layout used elsewhere in this codebase.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable parameters of a graphstore.Store.
type Config struct {
	// RuntimeLimit is the maximum number of entities Prune leaves
	// resident in the runtime tier. A negative value disables pruning of
	// runtime entirely.
	RuntimeLimit int `yaml:"runtime_limit"`

	// WarmLimit is the maximum number of entities Prune leaves resident
	// in the warm tier. A negative value disables pruning of warm
	// entirely.
	WarmLimit int `yaml:"warm_limit"`

	// AutoPruneInterval is the interval a collaborator running a
	// background scheduler should wait between Prune calls. The facade
	// itself never starts a goroutine on this; enforcing it is left to
	// the caller, matching the no-internal-parallelism design of the
	// core.
	AutoPruneInterval time.Duration `yaml:"auto_prune_interval"`
}

// DefaultConfig returns the Config new stores use when no options
// override it: a generous runtime tier, a modest warm tier, and an
// hourly auto-prune suggestion.
func DefaultConfig() *Config {
	return &Config{
		RuntimeLimit:      10_000,
		WarmLimit:         100_000,
		AutoPruneInterval: time.Hour,
	}
}

// LoadFromEnv builds a Config from environment variables, falling back
// to DefaultConfig's values for anything unset:
//
//	GRAPHSTORE_RUNTIME_LIMIT
//	GRAPHSTORE_WARM_LIMIT
//	GRAPHSTORE_AUTO_PRUNE_INTERVAL (Go duration string, e.g. "1h")
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.RuntimeLimit = getEnvInt("GRAPHSTORE_RUNTIME_LIMIT", cfg.RuntimeLimit)
	cfg.WarmLimit = getEnvInt("GRAPHSTORE_WARM_LIMIT", cfg.WarmLimit)
	cfg.AutoPruneInterval = getEnvDuration("GRAPHSTORE_AUTO_PRUNE_INTERVAL", cfg.AutoPruneInterval)
	return cfg
}

// LoadFromFile reads a YAML config file at path into a Config seeded
// with DefaultConfig's values, so a file only needs to specify the
// fields it overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports an error if cfg has an internally inconsistent
// setting: a non-negative warm limit smaller than a non-negative
// runtime limit would make pruning demote entities into a tier that
// immediately overflows.
func (c *Config) Validate() error {
	if c.RuntimeLimit >= 0 && c.WarmLimit >= 0 && c.WarmLimit < c.RuntimeLimit {
		return fmt.Errorf("config: warm_limit (%d) must be >= runtime_limit (%d)", c.WarmLimit, c.RuntimeLimit)
	}
	if c.AutoPruneInterval < 0 {
		return fmt.Errorf("config: auto_prune_interval must not be negative")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
