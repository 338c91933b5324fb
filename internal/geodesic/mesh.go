package geodesic

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// ErrInvalidLevel is returned for a subdivision level outside [0, MaxLevel].
var ErrInvalidLevel = errors.New("invalid subdivision level")

// DefaultMaxLevel bounds subdivision when the caller does not choose one.
// Level 8 is 1,310,720 faces.
const DefaultMaxLevel = 8

// phi is the golden ratio.
var phi = (1 + math.Sqrt(5)) / 2

// icosahedronVertices are the cyclic permutations of (±1, ±φ, 0) before
// normalization.
var icosahedronVertices = [12]gmath.Vec3{
	{X: -1, Y: 0, Z: phi}, {X: 1, Y: 0, Z: phi}, {X: -1, Y: 0, Z: -phi}, {X: 1, Y: 0, Z: -phi},
	{X: 0, Y: phi, Z: 1}, {X: 0, Y: phi, Z: -1}, {X: 0, Y: -phi, Z: 1}, {X: 0, Y: -phi, Z: -1},
	{X: phi, Y: 1, Z: 0}, {X: phi, Y: -1, Z: 0}, {X: -phi, Y: 1, Z: 0}, {X: -phi, Y: -1, Z: 0},
}

// icosahedronFaces indexes icosahedronVertices. Every triple is wound
// counter-clockwise seen from outside, so (b-a)x(c-a) points away from the
// origin. Subdivision preserves this winding.
var icosahedronFaces = [20][3]int{
	{0, 6, 1}, {0, 1, 4}, {0, 4, 10}, {0, 10, 11}, {0, 11, 6},
	{1, 6, 9}, {6, 11, 7}, {6, 7, 9}, {1, 9, 8}, {1, 8, 4},
	{4, 8, 5}, {4, 5, 10}, {2, 5, 3}, {2, 3, 7}, {2, 10, 5},
	{2, 7, 11}, {2, 11, 10}, {3, 5, 8}, {3, 9, 7}, {3, 8, 9},
}

// Mesh is the face list produced by one Build call.
type Mesh struct {
	Generation uint64
	Level      int
	Faces      []Face
}

// Len returns the number of faces.
func (m *Mesh) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Faces)
}

// Face returns the face with the given id.
func (m *Mesh) Face(id int) (Face, bool) {
	if m == nil || id < 1 || id > len(m.Faces) {
		return Face{}, false
	}
	return m.Faces[id-1], true
}

// Ref returns a generation-qualified reference to a face id.
func (m *Mesh) Ref(id int) FaceRef {
	return FaceRef{Generation: m.Generation, ID: id}
}

// Resolve returns the face a ref points at. Refs taken from an earlier
// generation are rejected even if the id still exists.
func (m *Mesh) Resolve(ref FaceRef) (Face, error) {
	if m == nil || ref.Generation != m.Generation {
		return Face{}, fmt.Errorf("%w: ref %s", ErrStaleFace, ref)
	}
	f, ok := m.Face(ref.ID)
	if !ok {
		return Face{}, fmt.Errorf("%w: %d", ErrUnknownFace, ref.ID)
	}
	return f, nil
}

// FaceCount returns 20 * 4^level.
func FaceCount(level int) int {
	return 20 << (2 * uint(level))
}

// Builder produces meshes and stamps each with a fresh generation.
type Builder struct {
	maxLevel   int
	generation atomic.Uint64
	log        *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBuilder creates a builder that rejects levels above maxLevel.
// A non-positive maxLevel selects DefaultMaxLevel.
func NewBuilder(maxLevel int, opts ...BuilderOption) *Builder {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	b := &Builder{maxLevel: maxLevel, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MaxLevel returns the highest level Build accepts.
func (b *Builder) MaxLevel() int {
	return b.maxLevel
}

// Build constructs the geodesic sphere at the given subdivision level.
func (b *Builder) Build(level int) (*Mesh, error) {
	if level < 0 || level > b.maxLevel {
		return nil, fmt.Errorf("%w: %d (allowed 0..%d)", ErrInvalidLevel, level, b.maxLevel)
	}

	start := time.Now()
	mesh := &Mesh{
		Generation: b.generation.Add(1),
		Level:      level,
		Faces:      Subdivide(level),
	}

	b.log.Debug("mesh built",
		zap.Uint64("generation", mesh.Generation),
		zap.Int("level", level),
		zap.Int("faces", len(mesh.Faces)),
		zap.Duration("took", time.Since(start)))

	return mesh, nil
}

// Subdivide returns the faces of the level-n geodesic sphere with ids
// assigned 1..20*4^n in traversal order. It is a pure function of level.
func Subdivide(level int) []Face {
	tris := make([][3]gmath.Vec3, 0, FaceCount(level))
	for _, idx := range icosahedronFaces {
		tris = append(tris, [3]gmath.Vec3{
			icosahedronVertices[idx[0]].Normalize(),
			icosahedronVertices[idx[1]].Normalize(),
			icosahedronVertices[idx[2]].Normalize(),
		})
	}

	for i := 0; i < level; i++ {
		next := make([][3]gmath.Vec3, 0, len(tris)*4)
		for _, t := range tris {
			a, b, c := t[0], t[1], t[2]
			ab := a.Midpoint(b).Normalize()
			bc := b.Midpoint(c).Normalize()
			ca := c.Midpoint(a).Normalize()
			next = append(next,
				[3]gmath.Vec3{a, ab, ca},
				[3]gmath.Vec3{b, bc, ab},
				[3]gmath.Vec3{c, ca, bc},
				[3]gmath.Vec3{ab, bc, ca},
			)
		}
		tris = next
	}

	faces := make([]Face, len(tris))
	for i, t := range tris {
		faces[i] = Face{ID: i + 1, Vertices: t}
	}
	return faces
}
