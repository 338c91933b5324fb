package navigator

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/geosphere/internal/geodesic"
	gmath "github.com/Faultbox/geosphere/pkg/math"
)

const frameEps = 1e-9

func buildMesh(t *testing.T, b *geodesic.Builder, level int) *geodesic.Mesh {
	t.Helper()
	mesh, err := b.Build(level)
	require.NoError(t, err)
	return mesh
}

func TestTickFollowsGreatCircle(t *testing.T) {
	nav := New(NewAgentState(gmath.Vec3{Z: 1}, gmath.Vec3{Y: 1}))
	nav.SetMesh(buildMesh(t, geodesic.NewBuilder(0), 2))

	for i := 0; i < 10; i++ {
		_, err := nav.Tick(Input{Speed: 1, DT: 0.1, Orientation: gmath.QuatIdentity()})
		require.NoError(t, err)
	}

	s := nav.State()
	assert.InDelta(t, 1, s.Center.Length(), frameEps)
	assert.InDelta(t, 0, s.Center.X, 1e-12, "stays on the great circle through z and y")
	assert.Greater(t, s.Center.Y, 0.0, "moved toward +y")

	// Each step moves atan(speed*dt) along the circle.
	traveled := s.Center.Angle(gmath.Vec3{Z: 1})
	assert.InDelta(t, 10*math.Atan(0.1), traveled, 1e-9)
	require.NoError(t, Validate(s, frameEps))
}

func TestFrameInvariantsUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	nav := New(NewAgentState(gmath.Vec3{X: 0.3, Y: -0.4, Z: 0.8}, gmath.Vec3{X: 1}))
	nav.SetMesh(buildMesh(t, geodesic.NewBuilder(0), 2))

	orientation := gmath.QuatIdentity()
	for i := 0; i < 2000; i++ {
		if rng.IntN(3) == 0 {
			axis := gmath.Vec3{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
			orientation = gmath.QuatFromAxisAngle(axis, rng.Float64()*0.2).Mul(orientation)
		}
		in := Input{
			Speed:       rng.Float64()*4 - 2,
			TurnRate:    rng.Float64()*6 - 3,
			DT:          rng.Float64() * 0.05,
			Orientation: orientation,
		}
		tr, err := nav.Tick(in)
		require.NoError(t, err)
		require.NoError(t, Validate(nav.State(), frameEps), "tick %d", i)
		require.True(t, tr.Face.Valid())
	}
}

func TestSphereRotationCarriesAgent(t *testing.T) {
	mesh := buildMesh(t, geodesic.NewBuilder(0), 3)
	start := gmath.Vec3{X: 0.2, Y: 0.5, Z: 0.7}.Normalize()
	nav := New(NewAgentState(start, gmath.Vec3{Z: 1}))
	nav.SetMesh(mesh)

	tr, err := nav.Tick(Input{Orientation: gmath.QuatIdentity()})
	require.NoError(t, err)
	home := tr.Face

	orientation := gmath.QuatIdentity()
	step := gmath.QuatFromAxisAngle(gmath.Vec3{X: 1, Y: 1}, 0.05)
	for i := 0; i < 40; i++ {
		orientation = step.Mul(orientation)
		tr, err = nav.Tick(Input{Orientation: orientation})
		require.NoError(t, err)
		require.Equal(t, home, tr.Face, "tick %d: standing agent must stay on its face", i)
	}

	want := orientation.Rotate(start)
	assert.True(t, tr.Position.ApproxEqual(want, 1e-9), "got %v want %v", tr.Position, want)
	assert.InDelta(t, 1, math.Abs(nav.Orientation().Dot(orientation)), 1e-12)
}

func TestTurnStaysInPlace(t *testing.T) {
	nav := New(NewAgentState(gmath.Vec3{Z: 1}, gmath.Vec3{Y: 1}))
	nav.SetMesh(buildMesh(t, geodesic.NewBuilder(0), 1))
	initialRight := nav.State().Right

	for i := 0; i < 5; i++ {
		_, err := nav.Tick(Input{TurnRate: 1, DT: 0.1})
		require.NoError(t, err)
	}

	s := nav.State()
	assert.True(t, s.Center.ApproxEqual(gmath.Vec3{Z: 1}, 1e-12))
	assert.Greater(t, s.Forward.Dot(initialRight), 0.0, "positive turn rate heads toward the initial right")
	assert.InDelta(t, 0, s.Forward.Z, 1e-12)
	require.NoError(t, Validate(s, frameEps))
}

func TestNewAgentStateDegenerateForward(t *testing.T) {
	tests := []struct {
		name    string
		center  gmath.Vec3
		forward gmath.Vec3
	}{
		{"forward along up", gmath.Vec3{Z: 1}, gmath.Vec3{Z: 2}},
		{"zero forward", gmath.Vec3{X: 1}, gmath.Vec3{}},
		{"zero center", gmath.Vec3{}, gmath.Vec3{X: 1}},
		{"unnormalized", gmath.Vec3{X: 3, Y: 4}, gmath.Vec3{Z: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAgentState(tt.center, tt.forward)
			require.NoError(t, Validate(s, frameEps))
		})
	}
}

func TestValidateDetectsDrift(t *testing.T) {
	s := NewAgentState(gmath.Vec3{Z: 1}, gmath.Vec3{Y: 1})
	s.Forward = s.Forward.Add(gmath.Vec3{Z: 0.1})
	assert.ErrorIs(t, Validate(s, frameEps), ErrFrameDrift)

	s = NewAgentState(gmath.Vec3{Z: 1}, gmath.Vec3{Y: 1})
	s.Right = s.Right.Negate()
	assert.ErrorIs(t, Validate(s, frameEps), ErrFrameDrift, "left-handed frame")
}

func TestTickEmptyMesh(t *testing.T) {
	nav := New(NewAgentState(gmath.Vec3{Z: 1}, gmath.Vec3{Y: 1}))
	start := nav.State()

	tr, err := nav.Tick(Input{Speed: 1, DT: 0.1, TurnRate: 2})
	assert.ErrorIs(t, err, ErrEmptyMesh)
	assert.False(t, tr.Face.Valid())
	assert.Equal(t, start, nav.State(), "failed tick leaves the agent in place")
	assert.Equal(t, start.Center, tr.Position)

	// A real face survives a later empty mesh.
	nav.SetMesh(buildMesh(t, geodesic.NewBuilder(0), 0))
	tr, err = nav.Tick(Input{})
	require.NoError(t, err)
	face := tr.Face
	before := nav.State()

	nav.SetMesh(&geodesic.Mesh{Generation: 99})
	spun := gmath.QuatFromAxisAngle(gmath.Vec3{X: 1}, 0.5)
	tr, err = nav.Tick(Input{Speed: 1, DT: 0.01, Orientation: spun})
	assert.ErrorIs(t, err, ErrEmptyMesh)
	assert.Equal(t, face, tr.Face)
	assert.Equal(t, before, nav.State())
	assert.Equal(t, before.Center, tr.Position)
	assert.True(t, nav.Orientation().IsIdentity(0), "orientation is not advanced")

	nav.SetMesh(nil)
	_, err = nav.Tick(Input{})
	assert.ErrorIs(t, err, ErrEmptyMesh)
	assert.Equal(t, before, nav.State())
}

func TestTickAfterRegeneration(t *testing.T) {
	b := geodesic.NewBuilder(0)
	first := buildMesh(t, b, 1)
	nav := New(NewAgentState(gmath.Vec3{X: 1}, gmath.Vec3{Y: 1}))
	nav.SetMesh(first)

	tr, err := nav.Tick(Input{})
	require.NoError(t, err)
	assert.Equal(t, first.Generation, tr.Face.Generation)
	before := nav.State()

	second := buildMesh(t, b, 3)
	nav.SetMesh(second)
	assert.Equal(t, before, nav.State(), "state carries over until the next tick")

	tr, err = nav.Tick(Input{})
	require.NoError(t, err)
	assert.Equal(t, second.Generation, tr.Face.Generation)
	_, err = second.Resolve(tr.Face)
	require.NoError(t, err)
	_, err = second.Resolve(before.Face)
	assert.ErrorIs(t, err, geodesic.ErrStaleFace)
}

func TestTickIgnoresInvalidDT(t *testing.T) {
	nav := New(NewAgentState(gmath.Vec3{Z: 1}, gmath.Vec3{Y: 1}))
	nav.SetMesh(buildMesh(t, geodesic.NewBuilder(0), 0))

	for _, dt := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := nav.Tick(Input{Speed: 5, TurnRate: 5, DT: dt})
		require.NoError(t, err)
		assert.True(t, nav.State().Center.ApproxEqual(gmath.Vec3{Z: 1}, 1e-12), "dt %v", dt)
	}
}

func TestTransformMatchesFrame(t *testing.T) {
	nav := New(NewAgentState(gmath.Vec3{X: 1, Y: 1, Z: 1}, gmath.Vec3{X: -1, Y: 1}))
	nav.SetMesh(buildMesh(t, geodesic.NewBuilder(0), 1))

	tr, err := nav.Tick(Input{Speed: 0.5, TurnRate: 0.3, DT: 0.1})
	require.NoError(t, err)

	assert.True(t, tr.Rotation.Rotate(gmath.Vec3{Z: 1}).ApproxEqual(tr.Forward, 1e-9))
	assert.True(t, tr.Rotation.Rotate(gmath.Vec3{Y: 1}).ApproxEqual(tr.Up, 1e-9))
	assert.True(t, tr.Rotation.Rotate(gmath.Vec3{X: 1}).ApproxEqual(tr.Right, 1e-9))

	m := tr.Matrix
	assert.Equal(t, tr.Position, gmath.Vec3{X: m[12], Y: m[13], Z: m[14]})
	assert.True(t, gmath.Vec3{X: m[0], Y: m[1], Z: m[2]}.ApproxEqual(tr.Right, 1e-12))
	assert.True(t, gmath.Vec3{X: m[4], Y: m[5], Z: m[6]}.ApproxEqual(tr.Up, 1e-12))
	assert.True(t, gmath.Vec3{X: m[8], Y: m[9], Z: m[10]}.ApproxEqual(tr.Forward, 1e-12))
	assert.Equal(t, 1.0, m[15])
}

func TestNearestFaceIsClosestCentroid(t *testing.T) {
	mesh := buildMesh(t, geodesic.NewBuilder(0), 2)
	nav := New(NewAgentState(gmath.Vec3{X: -0.6, Y: 0.1, Z: 0.2}, gmath.Vec3{Y: 1}), WithLocator(LocatorLinear))
	nav.SetMesh(mesh)

	tr, err := nav.Tick(Input{})
	require.NoError(t, err)

	got, _ := mesh.Resolve(tr.Face)
	best := got.Centroid().Distance(tr.Position)
	for _, f := range mesh.Faces {
		assert.GreaterOrEqual(t, f.Centroid().Distance(tr.Position), best)
	}
}
