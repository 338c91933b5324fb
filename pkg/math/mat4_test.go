package math

import (
	"testing"
)

// column returns the first three rows of column i.
func column(m Mat4, i int) Vec3 {
	return Vec3{m[i*4], m[i*4+1], m[i*4+2]}
}

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 || m[12] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(Vec3{5, 10, 15})

	if got := column(m, 3); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translate: got %v, want (5, 10, 15)", got)
	}
	if m[15] != 1 {
		t.Errorf("Translate: w = %v, want 1", m[15])
	}
}

func TestTranslateTimesRotation(t *testing.T) {
	right := Vec3{0, 0, -1}
	up := Vec3{0, 1, 0}
	forward := Vec3{1, 0, 0}
	origin := Vec3{0, 0, 1}

	m := Translate(origin).Mul(QuatFromBasis(right, up, forward).ToMat4())

	tests := []struct {
		name string
		col  int
		want Vec3
	}{
		{"right", 0, right},
		{"up", 1, up},
		{"forward", 2, forward},
		{"origin", 3, origin},
	}
	for _, tt := range tests {
		if got := column(m, tt.col); !got.ApproxEqual(tt.want, 1e-12) {
			t.Errorf("%s column = %v, want %v", tt.name, got, tt.want)
		}
	}
	if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		t.Errorf("bottom row = (%v %v %v %v), want (0 0 0 1)", m[3], m[7], m[11], m[15])
	}
}
