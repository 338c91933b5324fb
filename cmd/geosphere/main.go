// Package main is the entry point for the geosphere command-line host.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/config"
	"github.com/Faultbox/geosphere/internal/logger"
)

var (
	configPath        string
	debug             bool
	level             int
	maxLevel          int
	adjacencyStrategy string
	locatorKind       string
	logFile           string
	logFormat         string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geosphere",
	Short: "Geodesic sphere builder and surface navigator",
	Long: `geosphere builds subdivided icosahedral spheres, answers face adjacency
and graph distance queries, and runs a headless agent across the surface.

Settings come from defaults, then geosphere.yaml (working directory or the
user config directory), then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(overridesFrom(cmd))
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.LogFile); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger.Log.Debug("config loaded", zap.Any("config", cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	pf.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	pf.IntVarP(&level, "level", "l", 0, "Subdivision level (default from config)")
	pf.IntVar(&maxLevel, "max-level", 0, "Highest level the builder accepts")
	pf.StringVar(&adjacencyStrategy, "adjacency", "", "Adjacency strategy: vertex-hash or pairwise")
	pf.StringVar(&locatorKind, "locator", "", "Face locator: grid, linear or kdtree")
	pf.StringVar(&logFile, "log-file", "", "Also write logs to this file")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(meshCmd)
	rootCmd.AddCommand(adjacencyCmd)
	rootCmd.AddCommand(distanceCmd)
	rootCmd.AddCommand(simulateCmd)
}

// overridesFrom collects the flags the user actually set.
func overridesFrom(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{
		ConfigPath: configPath,
		Debug:      debug,
		Adjacency:  adjacencyStrategy,
		Locator:    locatorKind,
		LogFile:    logFile,
		LogFormat:  logFormat,
	}
	flags := cmd.Flags()
	if flags.Changed("level") {
		ov.Level = &level
	}
	if flags.Changed("max-level") {
		ov.MaxLevel = &maxLevel
	}
	if flags.Changed("speed") {
		ov.Speed = &speed
	}
	if flags.Changed("turn-rate") {
		ov.TurnRate = &turnRate
	}
	if flags.Changed("ticks") {
		ov.Ticks = &ticks
	}
	if flags.Changed("spin-rate") {
		ov.SpinRate = &spinRate
	}
	return ov
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
