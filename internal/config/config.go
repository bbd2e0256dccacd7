// Package config loads the top-level assessment configuration. A config
// file is one immutable layer in the precedence chain: built-in rule
// defaults lose to template configuration, which loses to this.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/rules"
)

// ErrInvalidConfig marks configuration rejected at load time.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the recognized top-level configuration surface.
type Config struct {
	DimensionWeights map[string]float64        `yaml:"dimension_weights"`
	Rules            map[string]rules.Override `yaml:"rules"`
	MetadataDir      string                    `yaml:"metadata_dir"`
	OutputDir        string                    `yaml:"output_dir"`
	Format           string                    `yaml:"format"`
	SampleSize       int                       `yaml:"sample_size"`
}

// Default returns the built-in configuration. OutputDir is empty: reports
// go to stdout only until a directory is configured or passed as a flag.
func Default() *Config {
	return &Config{
		SampleSize:  datasource.DefaultSampleSize,
		MetadataDir: ".",
		Format:      "json",
	}
}

// Load reads a yaml config file, fills defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configuration the engine would otherwise fail on mid-run.
func (c *Config) Validate() error {
	if c.SampleSize < 1 {
		return fmt.Errorf("%w: sample_size %d must be at least 1", ErrInvalidConfig, c.SampleSize)
	}

	for dimension, weight := range c.DimensionWeights {
		if !models.IsValidDimension(dimension) {
			return fmt.Errorf("%w: dimension_weights names unknown dimension %q", ErrInvalidConfig, dimension)
		}
		if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("%w: weight for %q must be finite and non-negative, got %v", ErrInvalidConfig, dimension, weight)
		}
	}

	for id, override := range c.Rules {
		dimension, _, ok := strings.Cut(id, ".")
		if !ok || !models.IsValidDimension(dimension) {
			return fmt.Errorf("%w: rule key %q is not \"<dimension>.<type>\"", ErrInvalidConfig, id)
		}
		if override.Weight != nil {
			w := *override.Weight
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: weight for rule %q must be finite and non-negative, got %v", ErrInvalidConfig, id, w)
			}
		}
	}

	return nil
}
