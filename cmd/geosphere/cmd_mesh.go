package main

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/geosphere/internal/adjacency"
	"github.com/Faultbox/geosphere/internal/geodesic"
)

var (
	meshLevels []int
	meshYAML   bool
)

var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Build sphere meshes and print their statistics",
	Long: `Builds the geodesic sphere at the configured level, or at every level
given with --levels (built in parallel), and reports face count, vertex norm
error and adjacency degrees.

Example:
  geosphere mesh --levels 0,1,2,3
  geosphere mesh --level 1 --yaml > level1.yaml`,
	RunE: runMesh,
}

func init() {
	meshCmd.Flags().IntSliceVar(&meshLevels, "levels", nil, "Build several levels in parallel")
	meshCmd.Flags().BoolVar(&meshYAML, "yaml", false, "Dump the faces as YAML instead of statistics")
}

// meshReport is the outcome of one level's build.
type meshReport struct {
	mesh      *geodesic.Mesh
	stats     adjacency.Stats
	normError float64
	took      time.Duration
}

type meshDump struct {
	Level      int             `yaml:"level"`
	Generation uint64          `yaml:"generation"`
	Faces      []geodesic.Face `yaml:"faces"`
}

func runMesh(cmd *cobra.Command, args []string) error {
	levels := meshLevels
	if len(levels) == 0 {
		levels = []int{cfg.Sphere.Level}
	}

	b := newBuilder(cfg)
	reports := make([]meshReport, len(levels))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, lvl := range levels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			mesh, idx, err := buildIndexed(b, cfg, lvl)
			if err != nil {
				return err
			}
			reports[i] = meshReport{
				mesh:      mesh,
				stats:     idx.Stats(),
				normError: maxNormError(mesh),
				took:      time.Since(start),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if meshYAML {
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		for _, r := range reports {
			if err := enc.Encode(meshDump{Level: r.mesh.Level, Generation: r.mesh.Generation, Faces: r.mesh.Faces}); err != nil {
				return fmt.Errorf("encoding level %d: %w", r.mesh.Level, err)
			}
		}
		return nil
	}

	for _, r := range reports {
		fmt.Fprintf(out, "level %d: %d faces, %d links, degree %d..%d, norm error %.2e (%s)\n",
			r.mesh.Level, r.stats.Faces, r.stats.Links, r.stats.MinDegree, r.stats.MaxDegree,
			r.normError, r.took.Round(time.Microsecond))
	}
	return nil
}

// maxNormError is the largest deviation of any vertex from unit length.
func maxNormError(mesh *geodesic.Mesh) float64 {
	var worst float64
	for _, f := range mesh.Faces {
		for _, v := range f.Vertices {
			worst = math.Max(worst, math.Abs(v.Length()-1))
		}
	}
	return worst
}
