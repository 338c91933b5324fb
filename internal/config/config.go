// Package config handles geosphere configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings for the sphere, the navigator and the simulation host.
type Config struct {
	Sphere     SphereConfig     `yaml:"sphere"`
	Navigator  NavigatorConfig  `yaml:"navigator"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SphereConfig holds mesh and adjacency settings.
type SphereConfig struct {
	Level     int     `yaml:"level"`
	MaxLevel  int     `yaml:"max_level"`
	Adjacency string  `yaml:"adjacency"` // "vertex-hash" or "pairwise"
	Epsilon   float64 `yaml:"epsilon"`
}

// NavigatorConfig holds agent settings.
type NavigatorConfig struct {
	Speed    float64    `yaml:"speed"`     // surface units per second
	TurnRate float64    `yaml:"turn_rate"` // heading blend per second
	Locator  string     `yaml:"locator"`   // "grid", "linear" or "kdtree"
	Center   [3]float64 `yaml:"center"`
	Forward  [3]float64 `yaml:"forward"`
}

// SimulationConfig holds headless host loop settings.
type SimulationConfig struct {
	Ticks    int           `yaml:"ticks"`
	Step     time.Duration `yaml:"step"`
	SpinAxis [3]float64    `yaml:"spin_axis"`
	SpinRate float64       `yaml:"spin_rate"` // radians per second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Sphere: SphereConfig{
			Level:     2,
			MaxLevel:  8,
			Adjacency: "vertex-hash",
			Epsilon:   1e-9,
		},
		Navigator: NavigatorConfig{
			Speed:    1.0,
			TurnRate: 0,
			Locator:  "grid",
			Center:   [3]float64{0, 0, 1},
			Forward:  [3]float64{0, 1, 0},
		},
		Simulation: SimulationConfig{
			Ticks:    600,
			Step:     16 * time.Millisecond,
			SpinAxis: [3]float64{0, 1, 0},
			SpinRate: 0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that the core would reject.
func (c *Config) Validate() error {
	switch {
	case c.Sphere.MaxLevel < 1:
		return fmt.Errorf("%w: sphere.max_level %d must be at least 1", ErrInvalidConfig, c.Sphere.MaxLevel)
	case c.Sphere.Level < 0 || c.Sphere.Level > c.Sphere.MaxLevel:
		return fmt.Errorf("%w: sphere.level %d outside [0, %d]", ErrInvalidConfig, c.Sphere.Level, c.Sphere.MaxLevel)
	case c.Sphere.Adjacency != "vertex-hash" && c.Sphere.Adjacency != "pairwise":
		return fmt.Errorf("%w: sphere.adjacency %q", ErrInvalidConfig, c.Sphere.Adjacency)
	case c.Sphere.Epsilon <= 0:
		return fmt.Errorf("%w: sphere.epsilon must be positive", ErrInvalidConfig)
	case c.Navigator.Locator != "grid" && c.Navigator.Locator != "linear" && c.Navigator.Locator != "kdtree":
		return fmt.Errorf("%w: navigator.locator %q", ErrInvalidConfig, c.Navigator.Locator)
	case c.Navigator.Center == [3]float64{}:
		return fmt.Errorf("%w: navigator.center is the zero vector", ErrInvalidConfig)
	case c.Simulation.Step <= 0:
		return fmt.Errorf("%w: simulation.step must be positive", ErrInvalidConfig)
	case c.Simulation.Ticks < 0:
		return fmt.Errorf("%w: simulation.ticks is negative", ErrInvalidConfig)
	}
	return nil
}
