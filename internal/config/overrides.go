package config

// Overrides carries command-line values. Zero values leave the config untouched;
// pointer fields distinguish "not given" from an explicit zero.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Level      *int
	MaxLevel   *int
	Adjacency  string
	Locator    string
	Speed      *float64
	TurnRate   *float64
	Ticks      *int
	SpinRate   *float64
	LogFile    string
	LogFormat  string
}

// applyOverrides applies CLI overrides to the config.
func applyOverrides(cfg *Config, ov Overrides) {
	if ov.Debug {
		cfg.Logging.Level = "debug"
	}
	if ov.Level != nil {
		cfg.Sphere.Level = *ov.Level
	}
	if ov.MaxLevel != nil {
		cfg.Sphere.MaxLevel = *ov.MaxLevel
	}
	if ov.Adjacency != "" {
		cfg.Sphere.Adjacency = ov.Adjacency
	}
	if ov.Locator != "" {
		cfg.Navigator.Locator = ov.Locator
	}
	if ov.Speed != nil {
		cfg.Navigator.Speed = *ov.Speed
	}
	if ov.TurnRate != nil {
		cfg.Navigator.TurnRate = *ov.TurnRate
	}
	if ov.Ticks != nil {
		cfg.Simulation.Ticks = *ov.Ticks
	}
	if ov.SpinRate != nil {
		cfg.Simulation.SpinRate = *ov.SpinRate
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
	if ov.LogFormat != "" {
		cfg.Logging.Format = ov.LogFormat
	}
}
