// Package sim ties the mesh, its adjacency index, the distance oracle and the
// navigator into one explicit context owned by the host's update loop.
package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/adjacency"
	"github.com/Faultbox/geosphere/internal/distance"
	"github.com/Faultbox/geosphere/internal/geodesic"
)

// World is one generation of the sphere: the mesh and everything derived
// from it. A World is never modified after it is published.
type World struct {
	Mesh  *geodesic.Mesh
	Index *adjacency.Index
	// Oracle caches searches; only the ticking goroutine may use it.
	Oracle *distance.Oracle

	request uint64 // ticket of the rebuild request that produced it
}

// Generation returns the mesh generation of the world.
func (w *World) Generation() uint64 {
	return w.Mesh.Generation
}

// supersedes reports whether w should stay installed in place of other.
func (w *World) supersedes(other *World) bool {
	if w.request != other.request {
		return w.request > other.request
	}
	return w.Generation() > other.Generation()
}

// buildWorld builds a mesh at level together with its index and oracle.
func buildWorld(b *geodesic.Builder, level int, adjOpts []adjacency.Option, log *zap.Logger) (*World, error) {
	start := time.Now()

	mesh, err := b.Build(level)
	if err != nil {
		return nil, err
	}
	idx, err := adjacency.Build(mesh, adjOpts...)
	if err != nil {
		return nil, fmt.Errorf("building adjacency for level %d: %w", level, err)
	}

	w := &World{
		Mesh:   mesh,
		Index:  idx,
		Oracle: distance.NewOracle(idx, distance.WithLogger(log)),
	}

	log.Info("world built",
		zap.Int("level", level),
		zap.Uint64("generation", mesh.Generation),
		zap.Int("faces", mesh.Len()),
		zap.Duration("took", time.Since(start)))

	return w, nil
}
