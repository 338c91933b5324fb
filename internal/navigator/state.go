// Package navigator moves an agent across the surface of a geodesic sphere,
// keeping it on the unit sphere with an orthonormal tangent frame and tracking
// the face it is over.
package navigator

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/geosphere/internal/geodesic"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// ErrFrameDrift is returned by Validate when a frame invariant does not hold.
var ErrFrameDrift = errors.New("agent frame drifted")

// collapsed is the squared length below which a projected vector is treated
// as having vanished.
const collapsed = 1e-20

// AgentState is the position and tangent frame of the agent.
//
// After every update Center has unit length, Up equals Center, and
// Forward, Up and Right are orthonormal with Right = Up x Forward.
type AgentState struct {
	Center  gmath.Vec3
	Forward gmath.Vec3
	Up      gmath.Vec3
	Right   gmath.Vec3
	Face    geodesic.FaceRef
}

// NewAgentState places an agent at center heading along forward. Both are
// projected onto the sphere and its tangent plane; a zero center starts at
// the north pole (0, 0, 1).
func NewAgentState(center, forward gmath.Vec3) AgentState {
	if center.LengthSq() < collapsed {
		center = gmath.Vec3{Z: 1}
	}
	s := AgentState{Center: center.Normalize(), Forward: forward}
	s.orthonormalize()
	return s
}

// orthonormalize restores the frame invariants: Up from Center, Forward
// corrected against Up, Right from Up x Forward and then corrected against
// both.
func (s *AgentState) orthonormalize() {
	s.Center = s.Center.Normalize()
	s.Up = s.Center

	f := s.Forward.Reject(s.Up)
	if f.LengthSq() < collapsed {
		// Forward collapsed onto Up; recover it from Right if possible.
		f = s.Right.Cross(s.Up)
		if f.Reject(s.Up).LengthSq() < collapsed {
			f = perpendicular(s.Up)
		}
		f = f.Reject(s.Up)
	}
	s.Forward = f.Normalize()

	s.Right = s.Up.Cross(s.Forward).Normalize()
	s.Right = s.Right.Reject(s.Up).Reject(s.Forward).Normalize()
}

// perpendicular returns a unit vector orthogonal to n, built from the axis
// least aligned with it.
func perpendicular(n gmath.Vec3) gmath.Vec3 {
	axis := gmath.Vec3{X: 1}
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ay <= ax && ay <= az:
		axis = gmath.Vec3{Y: 1}
	case az <= ax && az <= ay:
		axis = gmath.Vec3{Z: 1}
	}
	return n.Cross(axis).Normalize()
}

// Validate checks the frame invariants within eps.
func Validate(s AgentState, eps float64) error {
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"|center|", s.Center.Length(), 1},
		{"|forward|", s.Forward.Length(), 1},
		{"|up|", s.Up.Length(), 1},
		{"|right|", s.Right.Length(), 1},
		{"forward.up", s.Forward.Dot(s.Up), 0},
		{"forward.right", s.Forward.Dot(s.Right), 0},
		{"up.right", s.Up.Dot(s.Right), 0},
		{"up-center", s.Up.Distance(s.Center), 0},
		{"handedness", s.Up.Cross(s.Forward).Dot(s.Right), 1},
	}
	for _, c := range checks {
		if math.IsNaN(c.got) || math.Abs(c.got-c.want) > eps {
			return fmt.Errorf("%w: %s = %g, want %g", ErrFrameDrift, c.name, c.got, c.want)
		}
	}
	return nil
}
