package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no config
// path is given on the command line.
const EnvConfigPath = "GEOSPHERE_CONFIG"

// fileName is the config file name searched in the working and config directories.
const fileName = "geosphere.yaml"

// Load builds the effective config: defaults, then the config file, then
// overrides. The result is validated.
func Load(ov Overrides) (*Config, error) {
	cfg := Default()

	if path := resolvePath(ov.ConfigPath); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyOverrides(cfg, ov)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath picks the explicit path, then $GEOSPHERE_CONFIG, then the
// first existing file in the search locations.
func resolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return findConfigFile()
}

func findConfigFile() string {
	for _, path := range []string{
		filepath.Join(".", fileName),
		filepath.Join(ConfigDir(), fileName),
	} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory for this OS.
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "Geosphere")
	}
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Geosphere")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		home = xdg
	} else {
		home = filepath.Join(home, ".config")
	}
	return filepath.Join(home, "geosphere")
}

// loadFromFile merges the YAML file at path over cfg. Unknown keys are
// rejected so a misspelt setting does not silently keep its default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
