package navigator

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/Faultbox/geosphere/internal/geodesic"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// KDTreeLocator keeps face centroids in a k-d tree. Queries are rotated into
// mesh space the same way GridLocator does.
type KDTreeLocator struct {
	tree *kdtree.Tree
}

// NewKDTreeLocator creates a KDTreeLocator over mesh.
func NewKDTreeLocator(mesh *geodesic.Mesh) *KDTreeLocator {
	pts := make(centroids, mesh.Len())
	for i := range pts {
		f := mesh.Faces[i]
		pts[i] = centroid{Vec3: f.Centroid(), id: f.ID}
	}
	return &KDTreeLocator{tree: kdtree.New(pts, false)}
}

// Nearest implements Locator.
func (l *KDTreeLocator) Nearest(p gmath.Vec3, orientation gmath.Quat) (int, bool) {
	q := centroid{Vec3: orientation.Normalize().Conjugate().Rotate(p)}
	best, d := l.tree.Nearest(q)
	if best == nil {
		return 0, false
	}

	// The tree keeps the first of several equidistant points it meets, which
	// depends on its shape. Gather them all and take the lowest id.
	keep := kdtree.NewDistKeeper(d)
	l.tree.NearestSet(keep, q)
	id := best.(centroid).id
	for _, c := range keep.Heap {
		if c.Dist == d && c.Comparable.(centroid).id < id {
			id = c.Comparable.(centroid).id
		}
	}
	return id, true
}

// centroid is a face centroid stored in the tree. Queries carry id 0.
type centroid struct {
	gmath.Vec3
	id int
}

func (c centroid) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return c.coord(d) - b.(centroid).coord(d)
}

func (c centroid) Dims() int { return 3 }

func (c centroid) Distance(b kdtree.Comparable) float64 {
	return c.DistanceSq(b.(centroid).Vec3)
}

func (c centroid) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

type centroids []centroid

func (c centroids) Index(i int) kdtree.Comparable         { return c[i] }
func (c centroids) Len() int                              { return len(c) }
func (c centroids) Slice(start, end int) kdtree.Interface { return c[start:end] }
func (c centroids) Pivot(d kdtree.Dim) int {
	return plane{Dim: d, centroids: c}.Pivot()
}

// plane sorts centroids along one axis while the tree is built.
type plane struct {
	kdtree.Dim
	centroids
}

func (p plane) Less(i, j int) bool {
	return p.centroids[i].coord(p.Dim) < p.centroids[j].coord(p.Dim)
}

func (p plane) Swap(i, j int) {
	p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i]
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{Dim: p.Dim, centroids: p.centroids[start:end]}
}

func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
