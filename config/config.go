// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Loop      LoopConfig      `yaml:"loop"`
	World     WorldConfig     `yaml:"world"`
	Behaviors BehaviorsConfig `yaml:"behaviors"`
	Generator GeneratorConfig `yaml:"generator"`
	Paths     PathsConfig     `yaml:"paths"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the graphical client.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// LoopConfig holds scheduler cadence parameters.
type LoopConfig struct {
	TargetTPS int     `yaml:"target_tps"` // logic advances per second
	TargetFPS int     `yaml:"target_fps"` // presentation advances per second
	Speed     float64 `yaml:"speed"`      // initial speed multiplier
}

// WorldConfig holds simulation world dimensions in world units.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BehaviorsConfig points at the two behavior-registry documents.
// Empty paths mean the registry starts with zero behaviors loaded.
type BehaviorsConfig struct {
	MovementPath string `yaml:"movement_path"`
	DecisionPath string `yaml:"decision_path"`
}

// GeneratorConfig holds map generation parameters.
type GeneratorConfig struct {
	Template string `yaml:"template"` // template name ("basic" is built in)
	Seed     int64  `yaml:"seed"`     // 0 = time-based
}

// PathsConfig holds data directories for persistence.
type PathsConfig struct {
	MapsDir        string `yaml:"maps_dir"`
	TemplatesDir   string `yaml:"templates_dir"`
	ComponentsPath string `yaml:"components_path"` // extra component definitions (JSON), optional
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowSec      float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickInterval  float64 // seconds per logic advance (1 / TargetTPS)
	FrameInterval float64 // seconds per presentation advance (1 / presentation TargetFPS)
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	tps := c.Loop.TargetTPS
	if tps < 1 {
		tps = 20
		c.Loop.TargetTPS = tps
	}
	fps := c.Loop.TargetFPS
	if fps < 1 {
		fps = 60
		c.Loop.TargetFPS = fps
	}
	c.Derived.TickInterval = 1.0 / float64(tps)
	c.Derived.FrameInterval = 1.0 / float64(fps)

	if c.Loop.Speed == 0 {
		c.Loop.Speed = 1.0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
