package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if !q.IsIdentity(0) {
		t.Error("IsIdentity should hold for the identity")
	}
	if !(Quat{W: -1}).IsIdentity(0) {
		t.Error("-identity describes the same rotation")
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()
	if math.Abs(n.Length()-1.0) > 1e-12 {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, math.Pi/2)

	expectedW := math.Cos(math.Pi / 4)
	expectedY := math.Sin(math.Pi / 4)

	if math.Abs(q.W-expectedW) > 1e-12 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(q.Y-expectedY) > 1e-12 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}

	if got := QuatFromAxisAngle(Vec3{}, 1); got != QuatIdentity() {
		t.Errorf("zero axis should give identity, got %v", got)
	}
}

func TestQuatRotate(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"y90 x", Vec3{0, 1, 0}, math.Pi / 2, Vec3{1, 0, 0}, Vec3{0, 0, -1}},
		{"z90 x", Vec3{0, 0, 1}, math.Pi / 2, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"x180 y", Vec3{1, 0, 0}, math.Pi, Vec3{0, 1, 0}, Vec3{0, -1, 0}},
		{"axis unchanged", Vec3{1, 1, 1}, 1.234, Vec3{2, 2, 2}, Vec3{2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuatFromAxisAngle(tt.axis, tt.angle).Rotate(tt.in)
			if !got.ApproxEqual(tt.want, 1e-12) {
				t.Errorf("Rotate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, 0.3)
	b := QuatFromAxisAngle(Vec3{1, 0, 0}, -0.7)
	v := Vec3{0.2, -0.5, 0.9}

	got := a.Mul(b).Rotate(v)
	want := a.Rotate(b.Rotate(v))
	if !got.ApproxEqual(want, 1e-12) {
		t.Errorf("(a*b).Rotate(v) = %v, want %v", got, want)
	}

	back := a.Conjugate().Rotate(a.Rotate(v))
	if !back.ApproxEqual(v, 1e-12) {
		t.Errorf("conjugate should undo rotation, got %v", back)
	}
}

func TestQuatFromBasis(t *testing.T) {
	want := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/2)
	got := QuatFromBasis(Vec3{0, 0, -1}, Vec3{0, 1, 0}, Vec3{1, 0, 0})
	if math.Abs(math.Abs(got.Dot(want))-1) > 1e-12 {
		t.Errorf("QuatFromBasis() = %v, want %v (up to sign)", got, want)
	}

	// Every branch of the trace switch must reproduce the basis.
	rotations := []Quat{
		QuatIdentity(),
		QuatFromAxisAngle(Vec3{1, 0, 0}, math.Pi),
		QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi),
		QuatFromAxisAngle(Vec3{0, 0, 1}, math.Pi),
		QuatFromAxisAngle(Vec3{1, 2, 3}, 2.5),
	}
	for i, q := range rotations {
		r := q.Rotate(Vec3{1, 0, 0})
		u := q.Rotate(Vec3{0, 1, 0})
		f := q.Rotate(Vec3{0, 0, 1})
		back := QuatFromBasis(r, u, f)
		for _, axis := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			if !back.Rotate(axis).ApproxEqual(q.Rotate(axis), 1e-9) {
				t.Errorf("rotation %d: basis round trip mismatch on %v", i, axis)
			}
		}
	}
}

func TestQuatToMat4(t *testing.T) {
	m := QuatIdentity().ToMat4()
	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(m[i]-identity[i]) > 1e-12 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}

	q := QuatFromAxisAngle(Vec3{1, -2, 0.5}, 0.8)
	rot := q.ToMat4()
	for i, axis := range []Vec3{{X: 1}, {Y: 1}, {Z: 1}} {
		if got, want := column(rot, i), q.Rotate(axis); !got.ApproxEqual(want, 1e-12) {
			t.Errorf("ToMat4 column %d = %v, want %v", i, got, want)
		}
	}
}
