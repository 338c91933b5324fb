package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/distance"
	"github.com/Faultbox/geosphere/internal/geodesic"
	"github.com/Faultbox/geosphere/internal/logger"
	"github.com/Faultbox/geosphere/internal/navigator"
	"github.com/Faultbox/geosphere/internal/sim"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

var (
	speed        float64
	turnRate     float64
	ticks        int
	spinRate     float64
	rebuildAt    int
	rebuildLevel int
	writeConfig  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the agent headless across the sphere",
	Long: `Runs the navigator for the configured number of fixed-step ticks while the
sphere optionally spins, and logs every face transition.

With --rebuild-at the sphere is rebuilt at --rebuild-level in the background
during the run; the agent switches to the new mesh once it is published.

Example:
  geosphere simulate --level 3 --ticks 1000 --turn-rate 0.4 --spin-rate 0.2`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&speed, "speed", 0, "Agent speed in surface units per second")
	f.Float64Var(&turnRate, "turn-rate", 0, "Heading change per second")
	f.IntVar(&ticks, "ticks", 0, "Number of ticks to run")
	f.Float64Var(&spinRate, "spin-rate", 0, "Sphere spin in radians per second")
	f.IntVar(&rebuildAt, "rebuild-at", -1, "Tick at which to start a background rebuild")
	f.IntVar(&rebuildLevel, "rebuild-level", 0, "Level for the background rebuild")
	f.StringVar(&writeConfig, "write-config", "", "Save the effective config to this path before running")
}

// runStats summarizes a simulation run.
type runStats struct {
	transitions int
	maxHop      int
	bands       [3]int
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if writeConfig != "" {
		if err := cfg.SaveTo(writeConfig); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	adjOpts, err := adjacencyOptions(cfg)
	if err != nil {
		return err
	}
	navOpts, err := navigatorOptions(cfg)
	if err != nil {
		return err
	}

	log := logger.Named("sim")
	agent := navigator.NewAgentState(vec(cfg.Navigator.Center), vec(cfg.Navigator.Forward))
	sc := sim.New(agent, sim.Options{
		MaxLevel:  cfg.Sphere.MaxLevel,
		Adjacency: adjOpts,
		Navigator: navOpts,
		Logger:    log,
	})

	if _, err := sc.Rebuild(cfg.Sphere.Level); err != nil {
		return err
	}

	dt := cfg.Simulation.Step.Seconds()
	spin := gmath.QuatFromAxisAngle(vec(cfg.Simulation.SpinAxis), cfg.Simulation.SpinRate*dt)
	intent := sim.Intent{Speed: cfg.Navigator.Speed, TurnRate: cfg.Navigator.TurnRate}

	var (
		stats   runStats
		last    geodesic.FaceRef
		pending <-chan error
		frame   sim.Frame
	)
	for tick := 0; tick < cfg.Simulation.Ticks; tick++ {
		if tick == rebuildAt {
			pending = sc.RebuildAsync(cmd.Context(), rebuildLevel)
		}
		if cfg.Simulation.SpinRate != 0 {
			sc.Rotate(spin)
		}

		frame, err = sc.Step(intent, dt)
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}

		face := frame.Agent.Face
		if face != last {
			if last.Valid() {
				hop, err := sc.Distance(last, face)
				switch {
				case err == nil:
					stats.maxHop = max(stats.maxHop, hop)
				case errors.Is(err, geodesic.ErrStaleFace):
					// The agent crossed onto a rebuilt mesh.
				default:
					return fmt.Errorf("tick %d: %w", tick, err)
				}
			}
			log.Info("face transition",
				zap.Int("tick", tick),
				zap.Stringer("from", last),
				zap.Stringer("to", face))
			stats.transitions++
			last = face
		}
	}

	if pending != nil {
		if err := <-pending; err != nil {
			return fmt.Errorf("background rebuild: %w", err)
		}
	}

	if len(frame.Bands) > 0 {
		for _, b := range frame.Bands[1:] {
			stats.bands[b]++
		}
	}
	printSummary(cmd, sc, agent.Center, frame, stats)
	return nil
}

func printSummary(cmd *cobra.Command, sc *sim.Context, start gmath.Vec3, frame sim.Frame, stats runStats) {
	out := cmd.OutOrStdout()
	agent := sc.Agent()
	fmt.Fprintf(out, "ticks: %d, face transitions: %d, largest hop: %d\n",
		cfg.Simulation.Ticks, stats.transitions, stats.maxHop)
	fmt.Fprintf(out, "final face: %s, center (%.4f, %.4f, %.4f), %.4f rad from start\n",
		frame.Agent.Face, agent.Center.X, agent.Center.Y, agent.Center.Z, agent.Center.Angle(start))
	if err := navigator.Validate(agent, 1e-9); err != nil {
		fmt.Fprintf(out, "frame check: %v\n", err)
	}
	if w := sc.World(); w != nil {
		fmt.Fprintf(out, "world: level %d, generation %d\n", w.Mesh.Level, w.Generation())
	}

	palette := distance.DefaultPalette()
	for _, b := range []distance.Band{distance.BandSame, distance.BandAdjacent, distance.BandFar} {
		c := palette.Color(b)
		fmt.Fprintf(out, "  %-8s #%02x%02x%02x %d\n", b, c.R, c.G, c.B, stats.bands[b])
	}
}
