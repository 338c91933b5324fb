// Package adjacency derives the face graph of a geodesic mesh. Two faces are
// adjacent when they share at least one vertex position, so faces touching
// only at a corner are neighbors just like faces sharing an edge.
package adjacency

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/geodesic"
)

// ErrNilMesh is returned when Build is given no mesh.
var ErrNilMesh = errors.New("adjacency: nil mesh")

// DefaultEpsilon is the per-component tolerance for "same vertex position".
const DefaultEpsilon = 1e-9

// Strategy selects how shared vertices are found.
type Strategy int

const (
	// StrategyVertexHash welds vertices through a spatial hash and links the
	// faces listed under each welded vertex. Near-linear in face count.
	StrategyVertexHash Strategy = iota
	// StrategyPairwise compares every pair of faces. Quadratic.
	StrategyPairwise
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyVertexHash:
		return "vertex-hash"
	case StrategyPairwise:
		return "pairwise"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "vertex-hash", "":
		return StrategyVertexHash, nil
	case "pairwise":
		return StrategyPairwise, nil
	default:
		return 0, fmt.Errorf("adjacency: unknown strategy %q", name)
	}
}

type options struct {
	strategy Strategy
	epsilon  float64
	log      *zap.Logger
}

// Option configures Build.
type Option func(*options)

// WithStrategy selects the construction strategy.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithEpsilon sets the vertex position tolerance. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps > 0 {
			o.epsilon = eps
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Index maps each face id to its ascending list of neighbor ids.
// It is immutable once built and belongs to exactly one mesh generation.
type Index struct {
	generation uint64
	neighbors  [][]int // indexed by face id; slot 0 unused
	skipped    []int
}

// Build derives the adjacency index of mesh.
func Build(mesh *geodesic.Mesh, opts ...Option) (*Index, error) {
	if mesh == nil {
		return nil, ErrNilMesh
	}

	o := options{strategy: StrategyVertexHash, epsilon: DefaultEpsilon, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		generation: mesh.Generation,
		neighbors:  make([][]int, len(mesh.Faces)+1),
	}

	// Degenerate faces take no part in the graph.
	live := make([]geodesic.Face, 0, len(mesh.Faces))
	for _, f := range mesh.Faces {
		if _, err := f.Normal(); err != nil {
			idx.skipped = append(idx.skipped, f.ID)
			o.log.Warn("skipping face for adjacency", zap.Int("face", f.ID), zap.Error(err))
			continue
		}
		live = append(live, f)
	}

	start := time.Now()
	switch o.strategy {
	case StrategyPairwise:
		buildPairwise(idx, live, o.epsilon)
	default:
		buildVertexHash(idx, live, o.epsilon)
	}

	o.log.Debug("adjacency built",
		zap.Uint64("generation", idx.generation),
		zap.Stringer("strategy", o.strategy),
		zap.Int("faces", len(mesh.Faces)),
		zap.Int("skipped", len(idx.skipped)),
		zap.Duration("took", time.Since(start)))

	return idx, nil
}

// buildPairwise links every pair of faces with a vertex in common.
func buildPairwise(idx *Index, faces []geodesic.Face, eps float64) {
	for i := 0; i < len(faces); i++ {
		for j := i + 1; j < len(faces); j++ {
			if shareVertex(faces[i], faces[j], eps) {
				a, b := faces[i].ID, faces[j].ID
				idx.neighbors[a] = append(idx.neighbors[a], b)
				idx.neighbors[b] = append(idx.neighbors[b], a)
			}
		}
	}
	// Sorted here so the result does not depend on mesh order.
	for _, n := range idx.neighbors {
		sort.Ints(n)
	}
}

func shareVertex(a, b geodesic.Face, eps float64) bool {
	for _, va := range a.Vertices {
		for _, vb := range b.Vertices {
			if va.ApproxEqual(vb, eps) {
				return true
			}
		}
	}
	return false
}

// buildVertexHash groups faces by welded vertex and links co-members.
func buildVertexHash(idx *Index, faces []geodesic.Face, eps float64) {
	w := newWelder(eps, len(faces)/2+12)
	faceVerts := make([][3]int, len(faces))
	for i, f := range faces {
		for j, v := range f.Vertices {
			faceVerts[i][j] = w.weld(v)
		}
	}

	vertexFaces := make([][]int, w.count())
	for i, f := range faces {
		for _, v := range faceVerts[i] {
			vertexFaces[v] = append(vertexFaces[v], f.ID)
		}
	}

	for i, f := range faces {
		var n []int
		for _, v := range faceVerts[i] {
			for _, other := range vertexFaces[v] {
				if other != f.ID {
					n = append(n, other)
				}
			}
		}
		idx.neighbors[f.ID] = dedupe(n)
	}
}

// dedupe sorts ids and removes repeats in place.
func dedupe(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	sort.Ints(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// Generation returns the mesh generation the index was built from.
func (idx *Index) Generation() uint64 {
	return idx.generation
}

// Len returns the number of face ids covered, including skipped ones.
func (idx *Index) Len() int {
	return len(idx.neighbors) - 1
}

// Has reports whether id is a face of the indexed mesh.
func (idx *Index) Has(id int) bool {
	return id >= 1 && id < len(idx.neighbors)
}

// Neighbors returns the ascending neighbor ids of a face, or nil for an
// unknown or skipped face. The slice must not be modified.
func (idx *Index) Neighbors(id int) []int {
	if !idx.Has(id) {
		return nil
	}
	return idx.neighbors[id]
}

// Adjacent reports whether a and b are distinct neighbors.
func (idx *Index) Adjacent(a, b int) bool {
	n := idx.Neighbors(a)
	i := sort.SearchInts(n, b)
	return i < len(n) && n[i] == b
}

// Skipped returns the ids of degenerate faces left out of the graph.
func (idx *Index) Skipped() []int {
	return idx.skipped
}

// Stats summarizes the graph.
type Stats struct {
	Faces     int
	Links     int // undirected
	MinDegree int
	MaxDegree int
}

// Stats computes degree statistics over non-skipped faces.
func (idx *Index) Stats() Stats {
	s := Stats{Faces: idx.Len()}
	first := true
	total := 0
	for id := 1; id < len(idx.neighbors); id++ {
		d := len(idx.neighbors[id])
		total += d
		if d == 0 {
			continue
		}
		if first || d < s.MinDegree {
			s.MinDegree = d
		}
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
		first = false
	}
	s.Links = total / 2
	return s
}
