package config

import (
	"fmt"

	"github.com/nonoforge/nonoforge/internal/generator"
	"github.com/nonoforge/nonoforge/internal/solver"
)

// Config represents the complete application configuration
type Config struct {
	Generation GenerationConfig  `toml:"generation"`
	Output     OutputConfig      `toml:"output"`
	Metrics    MetricsConfig     `toml:"metrics"`
	Densities  []DensityOverride `toml:"densities"` // Optional per-size density band overrides
}

// GenerationConfig holds puzzle generation settings
type GenerationConfig struct {
	Size              int     `toml:"size"`                // Grid side length (default: 10)
	Workers           int     `toml:"workers"`             // Worker count (0 = one per CPU)
	MaxAttempts       int     `toml:"max_attempts"`        // Candidate budget per worker (default: 1500)
	RequireUnique     bool    `toml:"require_unique"`      // Accept only puzzles with exactly one solution
	Count             int     `toml:"count"`               // Number of puzzles to generate (default: 1)
	NamePrefix        string  `toml:"name_prefix"`         // Puzzle name prefix (default: "nonogram")
	ProgressPerSecond float64 `toml:"progress_per_second"` // Progress event cap per worker (default: 20, -1 = unthrottled)
}

// OutputConfig holds puzzle output settings
type OutputConfig struct {
	Dir          string `toml:"dir"`           // Directory for puzzle files (default: "puzzles")
	WritePuzzles bool   `toml:"write_puzzles"` // Write generated puzzles to a JSONL file
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	ListenAddr string `toml:"listen_addr"` // Address for the /metrics endpoint (empty = disabled)
}

// DensityOverride replaces the built-in density band for grids up to MaxSize
type DensityOverride struct {
	MaxSize int     `toml:"max_size"`
	Min     float64 `toml:"min"`
	Max     float64 `toml:"max"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Generation.Size < 1 || c.Generation.Size > solver.MaxLineLength {
		return fmt.Errorf("generation.size must be between 1 and %d (got %d)", solver.MaxLineLength, c.Generation.Size)
	}
	if c.Generation.Workers < 0 {
		return fmt.Errorf("generation.workers must not be negative (got %d)", c.Generation.Workers)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1 (got %d)", c.Generation.MaxAttempts)
	}
	if c.Generation.Count < 1 {
		return fmt.Errorf("generation.count must be at least 1 (got %d)", c.Generation.Count)
	}

	for i, d := range c.Densities {
		if d.MaxSize < 1 {
			return fmt.Errorf("densities[%d].max_size must be at least 1 (got %d)", i, d.MaxSize)
		}
		if d.Min < 0 || d.Max > 1 || d.Min > d.Max {
			return fmt.Errorf("densities[%d] must satisfy 0 <= min <= max <= 1 (got min=%g max=%g)", i, d.Min, d.Max)
		}
	}

	return nil
}

// BandFor returns the configured density band override for the given grid
// size, or nil when the built-in band applies. The override with the smallest
// covering max_size wins.
func (c *Config) BandFor(size int) *generator.Band {
	var best *DensityOverride
	for i := range c.Densities {
		d := &c.Densities[i]
		if size > d.MaxSize {
			continue
		}
		if best == nil || d.MaxSize < best.MaxSize {
			best = d
		}
	}
	if best == nil {
		return nil
	}
	return &generator.Band{Min: best.Min, Max: best.Max}
}
