package navigator

import (
	"fmt"
	"math"

	"github.com/Faultbox/geosphere/internal/geodesic"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// Locator finds the face whose centroid is nearest a point, with the mesh
// rotated by orientation. Ties go to the lowest face id.
type Locator interface {
	Nearest(p gmath.Vec3, orientation gmath.Quat) (id int, ok bool)
}

// LocatorKind selects a Locator implementation.
type LocatorKind int

const (
	// LocatorGrid buckets centroids in a uniform grid.
	LocatorGrid LocatorKind = iota
	// LocatorLinear scans every face.
	LocatorLinear
	// LocatorKDTree searches a k-d tree of centroids.
	LocatorKDTree
)

// String returns the configuration name of the kind.
func (k LocatorKind) String() string {
	switch k {
	case LocatorGrid:
		return "grid"
	case LocatorLinear:
		return "linear"
	case LocatorKDTree:
		return "kdtree"
	default:
		return fmt.Sprintf("LocatorKind(%d)", int(k))
	}
}

// ParseLocator maps a configuration name to a LocatorKind.
func ParseLocator(name string) (LocatorKind, error) {
	switch name {
	case "grid", "":
		return LocatorGrid, nil
	case "linear":
		return LocatorLinear, nil
	case "kdtree":
		return LocatorKDTree, nil
	default:
		return 0, fmt.Errorf("navigator: unknown locator %q", name)
	}
}

// NewLocator builds a locator of the given kind over mesh.
func NewLocator(kind LocatorKind, mesh *geodesic.Mesh) Locator {
	switch kind {
	case LocatorLinear:
		return NewLinearLocator(mesh)
	case LocatorKDTree:
		return NewKDTreeLocator(mesh)
	default:
		return NewGridLocator(mesh)
	}
}

// LinearLocator rotates every face into place and compares centroids.
type LinearLocator struct {
	faces []geodesic.Face
}

// NewLinearLocator creates a LinearLocator over mesh.
func NewLinearLocator(mesh *geodesic.Mesh) *LinearLocator {
	if mesh == nil {
		return &LinearLocator{}
	}
	return &LinearLocator{faces: mesh.Faces}
}

// Nearest implements Locator.
func (l *LinearLocator) Nearest(p gmath.Vec3, orientation gmath.Quat) (int, bool) {
	bestID, best := 0, math.Inf(1)
	for _, f := range l.faces {
		d := f.Rotated(orientation).Centroid().DistanceSq(p)
		if d < best || (d == best && f.ID < bestID) {
			bestID, best = f.ID, d
		}
	}
	return bestID, bestID != 0
}

type gridCell [3]int

// GridLocator buckets face centroids into a uniform grid over the cube
// [-1, 1]^3 and searches outward shell by shell from the query cell.
// Queries are rotated into mesh space instead of rotating the faces.
type GridLocator struct {
	n         int
	cellSize  float64
	cells     map[gridCell][]int // face indices
	centroids []gmath.Vec3
	ids       []int
}

// NewGridLocator creates a GridLocator over mesh.
func NewGridLocator(mesh *geodesic.Mesh) *GridLocator {
	count := mesh.Len()

	// About four faces per occupied cell on the sphere's surface.
	n := int(math.Ceil(math.Sqrt(float64(count) / (4 * math.Pi))))
	if n < 1 {
		n = 1
	}

	g := &GridLocator{
		n:         n,
		cellSize:  2 / float64(n),
		cells:     make(map[gridCell][]int),
		centroids: make([]gmath.Vec3, count),
		ids:       make([]int, count),
	}
	for i := 0; i < count; i++ {
		f := mesh.Faces[i]
		c := f.Centroid()
		g.centroids[i] = c
		g.ids[i] = f.ID
		k := g.cell(c)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *GridLocator) axis(v float64) int {
	i := int(math.Floor((v + 1) / g.cellSize))
	if i < 0 {
		return 0
	}
	if i >= g.n {
		return g.n - 1
	}
	return i
}

func (g *GridLocator) cell(v gmath.Vec3) gridCell {
	return gridCell{g.axis(v.X), g.axis(v.Y), g.axis(v.Z)}
}

// Nearest implements Locator.
func (g *GridLocator) Nearest(p gmath.Vec3, orientation gmath.Quat) (int, bool) {
	if len(g.ids) == 0 {
		return 0, false
	}

	q := orientation.Normalize().Conjugate().Rotate(p)
	origin := g.cell(q)

	bestID, best := 0, math.Inf(1)
	for r := 0; r <= g.n; r++ {
		g.visitShell(origin, r, func(i int) {
			d := g.centroids[i].DistanceSq(q)
			if d < best || (d == best && g.ids[i] < bestID) {
				bestID, best = g.ids[i], d
			}
		})
		// Every cell beyond shell r is at least r cells away along some axis.
		if bound := float64(r) * g.cellSize; bestID != 0 && best < bound*bound {
			break
		}
	}
	return bestID, bestID != 0
}

// visitShell calls fn for every face in the cells at Chebyshev distance r
// from origin.
func (g *GridLocator) visitShell(origin gridCell, r int, fn func(int)) {
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				if max(abs(dx), abs(dy), abs(dz)) != r {
					continue
				}
				for _, i := range g.cells[gridCell{origin[0] + dx, origin[1] + dy, origin[2] + dz}] {
					fn(i)
				}
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
