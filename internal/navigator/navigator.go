package navigator

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/geosphere/internal/geodesic"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

// ErrEmptyMesh is returned by Tick when there is no face to lock onto. The
// tick is discarded and the agent keeps its previous state.
var ErrEmptyMesh = errors.New("navigator: mesh has no faces")

// Input is the per-tick intent of the agent and the sphere's orientation.
type Input struct {
	Speed       float64 // signed translation intent, units per second
	TurnRate    float64 // signed heading change per second; positive turns toward Right
	DT          float64 // elapsed seconds
	Orientation gmath.Quat
}

// Transform is what the renderer needs to draw the agent.
type Transform struct {
	Position gmath.Vec3
	Forward  gmath.Vec3
	Up       gmath.Vec3
	Right    gmath.Vec3
	Rotation gmath.Quat
	Matrix   gmath.Mat4
	Face     geodesic.FaceRef
}

// Navigator owns one agent on one mesh. It is not safe for concurrent use;
// the host ticks it from a single goroutine.
type Navigator struct {
	state       AgentState
	mesh        *geodesic.Mesh
	kind        LocatorKind
	locator     Locator
	orientation gmath.Quat
	log         *zap.Logger
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLocator selects the nearest-face search.
func WithLocator(kind LocatorKind) Option {
	return func(n *Navigator) { n.kind = kind }
}

// WithOrientation seeds the sphere orientation the first tick is measured from.
func WithOrientation(q gmath.Quat) Option {
	return func(n *Navigator) { n.orientation = q.Normalize() }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.log = l
		}
	}
}

// New creates a navigator for the agent. Call SetMesh before ticking.
func New(state AgentState, opts ...Option) *Navigator {
	n := &Navigator{
		state:       state,
		kind:        LocatorGrid,
		orientation: gmath.QuatIdentity(),
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.state.orthonormalize()
	return n
}

// SetMesh replaces the mesh. The agent keeps its position and heading; its
// face is recomputed against the new mesh on the next tick.
func (n *Navigator) SetMesh(mesh *geodesic.Mesh) {
	n.mesh = mesh
	n.locator = nil
	if mesh == nil {
		return
	}
	n.locator = NewLocator(n.kind, mesh)
	n.log.Debug("mesh attached",
		zap.Uint64("generation", mesh.Generation),
		zap.Int("faces", mesh.Len()),
		zap.Stringer("locator", n.kind))
}

// Mesh returns the current mesh.
func (n *Navigator) Mesh() *geodesic.Mesh {
	return n.mesh
}

// State returns a copy of the agent state.
func (n *Navigator) State() AgentState {
	return n.state
}

// Orientation returns the sphere orientation seen on the last tick.
func (n *Navigator) Orientation() gmath.Quat {
	return n.orientation
}

// Tick advances the agent by one step. The returned transform is always
// valid; on ErrEmptyMesh it describes the unchanged prior state.
func (n *Navigator) Tick(in Input) (Transform, error) {
	prev, prevOrientation := n.state, n.orientation

	dt := in.DT
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	s := &n.state

	// Carry the agent along with the sphere's rotation since the last tick.
	current := in.Orientation.Normalize()
	delta := current.Mul(n.orientation.Conjugate()).Normalize()
	n.orientation = current
	if !delta.IsIdentity(0) {
		s.Center = delta.Rotate(s.Center)
		s.Forward = delta.Rotate(s.Forward)
		s.Right = delta.Rotate(s.Right)
	}
	s.orthonormalize()

	// Step along the tangent and fall back onto the sphere.
	if in.Speed != 0 {
		s.Center = s.Center.Add(s.Forward.Scale(in.Speed * dt)).Normalize()
		s.orthonormalize()
	}

	// Blend the heading toward Right, then correct the frame again.
	if in.TurnRate != 0 {
		s.Forward = s.Forward.Add(s.Right.Scale(in.TurnRate * dt)).Normalize()
	}
	s.orthonormalize()

	if err := n.locate(); err != nil {
		n.state, n.orientation = prev, prevOrientation
		return n.transform(), err
	}
	return n.transform(), nil
}

// locate updates the agent's face to the one nearest its center.
func (n *Navigator) locate() error {
	if n.mesh.Len() == 0 || n.locator == nil {
		return ErrEmptyMesh
	}
	id, ok := n.locator.Nearest(n.state.Center, n.orientation)
	if !ok {
		return ErrEmptyMesh
	}

	ref := n.mesh.Ref(id)
	if ref != n.state.Face {
		n.log.Debug("face changed",
			zap.Stringer("from", n.state.Face),
			zap.Stringer("to", ref))
		n.state.Face = ref
	}
	return nil
}

func (n *Navigator) transform() Transform {
	s := n.state
	rot := gmath.QuatFromBasis(s.Right, s.Up, s.Forward)
	return Transform{
		Position: s.Center,
		Forward:  s.Forward,
		Up:       s.Up,
		Right:    s.Right,
		Rotation: rot,
		Matrix:   gmath.Translate(s.Center).Mul(rot.ToMat4()),
		Face:     s.Face,
	}
}
