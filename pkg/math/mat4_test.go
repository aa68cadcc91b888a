package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTransformVec3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(2, 2, 2), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"scale then translate", Translate(1, 0, 0).Mul(Scale(2, 2, 2)), Vec3{1, 1, 1}, Vec3{3, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformVec3(tt.in); got != tt.want {
				t.Errorf("TransformVec3() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposeMatchesProduct(t *testing.T) {
	tr := Vec3{1, 2, 3}
	rot := QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/3))
	sc := Vec3{2, 0.5, 4}

	got := Compose(tr, rot, sc)
	want := Translate(tr.X, tr.Y, tr.Z).Mul(rot.ToMat4()).Mul(Scale(sc.X, sc.Y, sc.Z))

	for i := range got {
		if abs(got[i]-want[i]) > 1e-5 {
			t.Fatalf("Compose element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInverse(t *testing.T) {
	m := Compose(Vec3{4, -2, 1}, QuatFromAxisAngle(Vec3{1, 0, 0}, 0.7), Vec3{2, 2, 2})
	p := m.Mul(m.Inverse())

	id := Identity()
	for i := range p {
		if abs(p[i]-id[i]) > 1e-4 {
			t.Fatalf("M * M^-1 element %d = %v, want %v", i, p[i], id[i])
		}
	}
}

func TestInverseSingular(t *testing.T) {
	if got := Scale(1, 0, 1).Inverse(); got != Identity() {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestInverseNeedsPivot(t *testing.T) {
	// Zero on the diagonal: swaps X and Y.
	m := Mat4{1: 1, 4: 1, 10: 1, 15: 1}
	if got := m.Inverse().Mul(m); got != Identity() {
		t.Errorf("M^-1 * M = %v", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{6, 4, 6}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})

	got := m.TransformVec3(eye)
	if got.Length() > 1e-4 {
		t.Errorf("eye in view space = %v, want origin", got)
	}

	// The target must land on the negative Z axis.
	target := m.TransformVec3(Vec3{})
	if abs(target.X) > 1e-4 || abs(target.Y) > 1e-4 || target.Z >= 0 {
		t.Errorf("target in view space = %v, want (0, 0, -d)", target)
	}
}

func TestFromFloat64(t *testing.T) {
	src := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 6, 7, 1}
	m := FromFloat64(src)
	if m.Translation() != (Vec3{5, 6, 7}) {
		t.Errorf("Translation() = %v, want {5 6 7}", m.Translation())
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
