package adjacency

import (
	"math"

	gmath "github.com/Faultbox/geosphere/pkg/math"
)

type cellKey [3]int64

// welder assigns one id to every group of positions within eps of each
// other. Positions are bucketed into cubes of side eps, so a match can only
// live in the 27 cubes around the query.
type welder struct {
	eps       float64
	cells     map[cellKey][]int
	positions []gmath.Vec3
}

func newWelder(eps float64, sizeHint int) *welder {
	return &welder{
		eps:       eps,
		cells:     make(map[cellKey][]int, sizeHint),
		positions: make([]gmath.Vec3, 0, sizeHint),
	}
}

func (w *welder) key(v gmath.Vec3) cellKey {
	return cellKey{
		int64(math.Floor(v.X / w.eps)),
		int64(math.Floor(v.Y / w.eps)),
		int64(math.Floor(v.Z / w.eps)),
	}
}

// weld returns the id of the existing position within eps of v, or
// registers v under a new id.
func (w *welder) weld(v gmath.Vec3) int {
	k := w.key(v)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range w.cells[cellKey{k[0] + dx, k[1] + dy, k[2] + dz}] {
					if w.positions[id].ApproxEqual(v, w.eps) {
						return id
					}
				}
			}
		}
	}

	id := len(w.positions)
	w.positions = append(w.positions, v)
	w.cells[k] = append(w.cells[k], id)
	return id
}

// count returns the number of distinct positions.
func (w *welder) count() int {
	return len(w.positions)
}
