package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 0}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector normalized to %v", z)
	}
}

func TestVec3MaxComponent(t *testing.T) {
	if got := (Vec3{10, 2, 5}).MaxComponent(); got != 10 {
		t.Errorf("MaxComponent() = %v, want 10", got)
	}
}

func TestBox3Empty(t *testing.T) {
	b := EmptyBox()
	if !b.IsEmpty() {
		t.Fatal("EmptyBox should be empty")
	}
	if s := b.Size(); s != (Vec3{}) {
		t.Errorf("empty box size = %v, want zero", s)
	}
	if c := b.Center(); c != (Vec3{}) {
		t.Errorf("empty box center = %v, want zero", c)
	}
}

func TestBox3Expand(t *testing.T) {
	b := EmptyBox()
	b.ExpandByPoint(Vec3{-5, 1, -2.5})
	b.ExpandByPoint(Vec3{5, 3, 2.5})

	if got := b.Size(); got != (Vec3{10, 2, 5}) {
		t.Errorf("Size() = %v, want {10 2 5}", got)
	}
	if got := b.Center(); got != (Vec3{0, 2, 0}) {
		t.Errorf("Center() = %v, want {0 2 0}", got)
	}
}

func TestBox3Transform(t *testing.T) {
	b := Box3{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	got := b.Transform(Translate(2, 0, 0).Mul(Scale(2, 1, 1)))

	if got.Min != (Vec3{0, -1, -1}) || got.Max != (Vec3{4, 1, 1}) {
		t.Errorf("Transform() = %+v", got)
	}
}

func TestHex(t *testing.T) {
	c := Hex(0x3b82f6)
	if abs(c.R-59.0/255) > 1e-6 || abs(c.G-130.0/255) > 1e-6 || abs(c.B-246.0/255) > 1e-6 {
		t.Errorf("Hex(0x3b82f6) = %+v", c)
	}
	if Hex(0xffffff) != (Color{1, 1, 1}) {
		t.Errorf("Hex(0xffffff) = %+v", Hex(0xffffff))
	}
}

func TestVec3Lerp(t *testing.T) {
	got := Vec3{0, 0, 0}.Lerp(Vec3{10, 20, 30}, 0.5)
	if want := (Vec3{5, 10, 15}); got != want {
		t.Errorf("Lerp() = %v, want %v", got, want)
	}
}
