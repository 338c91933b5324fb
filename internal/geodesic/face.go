// Package geodesic builds subdivided icosahedral approximations of the unit sphere.
package geodesic

import (
	"errors"
	"fmt"

	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// Face errors.
var (
	ErrDegenerateFace = errors.New("degenerate face: vertices are collinear")
	ErrUnknownFace    = errors.New("unknown face id")
	ErrStaleFace      = errors.New("face reference from a previous mesh generation")
)

// degenerateArea is the squared cross-product length below which a face is
// treated as having no normal.
const degenerateArea = 1e-24

// Face is one triangle of the mesh. Vertices are wound counter-clockwise
// when seen from outside the sphere.
type Face struct {
	ID       int           `yaml:"id"`
	Vertices [3]gmath.Vec3 `yaml:"vertices,flow"`
}

// Centroid returns the average of the three vertices.
func (f Face) Centroid() gmath.Vec3 {
	return f.Vertices[0].Add(f.Vertices[1]).Add(f.Vertices[2]).Scale(1.0 / 3.0)
}

// Normal returns the outward unit normal.
func (f Face) Normal() (gmath.Vec3, error) {
	a, b, c := f.Vertices[0], f.Vertices[1], f.Vertices[2]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LengthSq() < degenerateArea {
		return gmath.Vec3{}, fmt.Errorf("face %d: %w", f.ID, ErrDegenerateFace)
	}
	return n.Normalize(), nil
}

// Degenerate reports whether the face has collinear vertices.
func (f Face) Degenerate() bool {
	_, err := f.Normal()
	return err != nil
}

// Rotated returns the face with every vertex rotated by q.
func (f Face) Rotated(q gmath.Quat) Face {
	return Face{
		ID: f.ID,
		Vertices: [3]gmath.Vec3{
			q.Rotate(f.Vertices[0]),
			q.Rotate(f.Vertices[1]),
			q.Rotate(f.Vertices[2]),
		},
	}
}

// FaceRef names a face of one specific mesh generation.
type FaceRef struct {
	Generation uint64
	ID         int
}

// Valid reports whether the ref points at a face at all.
func (r FaceRef) Valid() bool {
	return r.ID > 0
}

// String returns the ref as "gen/id".
func (r FaceRef) String() string {
	return fmt.Sprintf("%d/%d", r.Generation, r.ID)
}
