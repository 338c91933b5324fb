package math

import (
	"math"
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	got := v.Length()
	want := 7.0
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	l := v.Normalize().Length()
	if math.Abs(l-1) > 1e-12 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Vec3.Normalize() = %v, want zero", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Reject(t *testing.T) {
	v := Vec3{1, 2, 3}
	n := Vec3{0, 0, 1}
	got := v.Reject(n)
	want := Vec3{1, 2, 0}
	if got != want {
		t.Errorf("Vec3.Reject() = %v, want %v", got, want)
	}
	if d := got.Dot(n); d != 0 {
		t.Errorf("rejected vector should be orthogonal to n, dot = %v", d)
	}
}

func TestVec3Midpoint(t *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 1, 0}
	got := a.Midpoint(b)
	want := Vec3{0.5, 0.5, 0}
	if got != want {
		t.Errorf("Vec3.Midpoint() = %v, want %v", got, want)
	}
	// Argument order must not change the bits of the result.
	if b.Midpoint(a) != got {
		t.Errorf("Vec3.Midpoint() is not symmetric")
	}
}

func TestVec3ApproxEqual(t *testing.T) {
	a := Vec3{1, 2, 3}
	if !a.ApproxEqual(Vec3{1 + 1e-10, 2, 3 - 1e-10}, 1e-9) {
		t.Error("expected vectors within eps to be equal")
	}
	if a.ApproxEqual(Vec3{1.1, 2, 3}, 1e-9) {
		t.Error("expected vectors outside eps to differ")
	}
}

func TestVec3Angle(t *testing.T) {
	got := Vec3{1, 0, 0}.Angle(Vec3{0, 1, 0})
	if math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Vec3.Angle() = %v, want pi/2", got)
	}
	if got := (Vec3{}).Angle(Vec3{1, 0, 0}); got != 0 {
		t.Errorf("angle against zero vector = %v, want 0", got)
	}
}
