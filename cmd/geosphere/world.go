package main

import (
	"fmt"

	"github.com/Faultbox/geosphere/internal/adjacency"
	"github.com/Faultbox/geosphere/internal/config"
	"github.com/Faultbox/geosphere/internal/geodesic"
	"github.com/Faultbox/geosphere/internal/logger"
	"github.com/Faultbox/geosphere/internal/navigator"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

func adjacencyOptions(c *config.Config) ([]adjacency.Option, error) {
	strategy, err := adjacency.ParseStrategy(c.Sphere.Adjacency)
	if err != nil {
		return nil, err
	}
	return []adjacency.Option{
		adjacency.WithStrategy(strategy),
		adjacency.WithEpsilon(c.Sphere.Epsilon),
	}, nil
}

func navigatorOptions(c *config.Config) ([]navigator.Option, error) {
	kind, err := navigator.ParseLocator(c.Navigator.Locator)
	if err != nil {
		return nil, err
	}
	return []navigator.Option{navigator.WithLocator(kind)}, nil
}

func newBuilder(c *config.Config) *geodesic.Builder {
	return geodesic.NewBuilder(c.Sphere.MaxLevel, geodesic.WithLogger(logger.Named("geodesic")))
}

// buildIndexed builds the mesh at lvl and its adjacency index.
func buildIndexed(b *geodesic.Builder, c *config.Config, lvl int) (*geodesic.Mesh, *adjacency.Index, error) {
	opts, err := adjacencyOptions(c)
	if err != nil {
		return nil, nil, err
	}
	mesh, err := b.Build(lvl)
	if err != nil {
		return nil, nil, err
	}
	idx, err := adjacency.Build(mesh, append(opts, adjacency.WithLogger(logger.Named("adjacency")))...)
	if err != nil {
		return nil, nil, fmt.Errorf("level %d: %w", lvl, err)
	}
	return mesh, idx, nil
}

func vec(a [3]float64) gmath.Vec3 {
	return gmath.V3(a[0], a[1], a[2])
}

// checkFace rejects ids that are not in mesh.
func checkFace(mesh *geodesic.Mesh, id int) error {
	if _, ok := mesh.Face(id); !ok {
		return fmt.Errorf("face %d at level %d: %w", id, mesh.Level, geodesic.ErrUnknownFace)
	}
	return nil
}
