package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the scoring and session pacing knobs
const (
	DefaultPassThreshold     = 0.75
	DefaultTargetWeight      = 1.0
	DefaultBreakInterval     = 5  // remind to take a break every N rated conversations
	DefaultMaxSessionMinutes = 30 // recommend a longer break after this much rating
)

// Config carries the scoring weights and session pacing settings
type Config struct {
	DimensionWeights  map[string]float64 `yaml:"dimension_weights"`
	TargetWeight      float64            `yaml:"target_completion_weight"`
	PassThreshold     float64            `yaml:"pass_threshold"`
	BreakInterval     int                `yaml:"break_interval"`
	MaxSessionMinutes int                `yaml:"max_session_minutes"`
}

// DefaultConfig returns a config with every knob at its default
func DefaultConfig() *Config {
	weights := make(map[string]float64, len(Dimensions))
	for _, d := range Dimensions {
		weights[string(d.Key)] = 1.0
	}
	return &Config{
		DimensionWeights:  weights,
		TargetWeight:      DefaultTargetWeight,
		PassThreshold:     DefaultPassThreshold,
		BreakInterval:     DefaultBreakInterval,
		MaxSessionMinutes: DefaultMaxSessionMinutes,
	}
}

// LoadConfig reads a YAML config file, filling every unset field from the
// defaults. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Pointer fields keep an explicit zero (a deliberate setting, e.g.
	// break_interval: 0 to disable reminders) distinguishable from an
	// absent key.
	var loaded struct {
		DimensionWeights  map[string]float64 `yaml:"dimension_weights"`
		TargetWeight      *float64           `yaml:"target_completion_weight"`
		PassThreshold     *float64           `yaml:"pass_threshold"`
		BreakInterval     *int               `yaml:"break_interval"`
		MaxSessionMinutes *int               `yaml:"max_session_minutes"`
	}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	for key, w := range loaded.DimensionWeights {
		if _, ok := LookupDimension(key); !ok {
			return nil, fmt.Errorf("config %s: unknown dimension %q", path, key)
		}
		cfg.DimensionWeights[key] = w
	}
	if loaded.TargetWeight != nil {
		cfg.TargetWeight = *loaded.TargetWeight
	}
	if loaded.PassThreshold != nil {
		cfg.PassThreshold = *loaded.PassThreshold
	}
	if loaded.BreakInterval != nil {
		cfg.BreakInterval = *loaded.BreakInterval
	}
	if loaded.MaxSessionMinutes != nil {
		cfg.MaxSessionMinutes = *loaded.MaxSessionMinutes
	}
	return cfg, nil
}

// DimensionWeight returns the weight for a dimension, defaulting to 1.0
func (c *Config) DimensionWeight(dim Dimension) float64 {
	if w, ok := c.DimensionWeights[string(dim)]; ok {
		return w
	}
	return 1.0
}
