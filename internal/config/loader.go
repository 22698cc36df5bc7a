package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Default returns the configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Generation.Size == 0 {
		cfg.Generation.Size = 10
	}
	if cfg.Generation.MaxAttempts == 0 {
		cfg.Generation.MaxAttempts = 1500
	}
	if cfg.Generation.Count == 0 {
		cfg.Generation.Count = 1
	}
	if cfg.Generation.NamePrefix == "" {
		cfg.Generation.NamePrefix = "nonogram"
	}
	// NOTE: In TOML, we can't distinguish 0 from unset, so:
	// - Unset (0) → default rate of 20 events per second per worker
	// - Explicitly set to -1 → unthrottled
	if cfg.Generation.ProgressPerSecond == 0 {
		cfg.Generation.ProgressPerSecond = 20
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "puzzles"
	}
}
