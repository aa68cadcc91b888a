package shadow

import (
	"testing"

	"github.com/Faultbox/assetdeck/pkg/math"
)

func TestLightMatrixCoversBounds(t *testing.T) {
	box := math.Box3{Min: math.V3(-2, 0, -1), Max: math.V3(2, 3, 1)}
	dirs := []math.Vec3{
		math.V3(10, 20, 10).Normalize(),
		math.V3(0, 1, 0),
		math.V3(-1, 0.2, 0).Normalize(),
	}

	for _, dir := range dirs {
		m := LightMatrix(dir, box)
		for _, x := range []float32{box.Min.X, box.Max.X} {
			for _, y := range []float32{box.Min.Y, box.Max.Y} {
				for _, z := range []float32{box.Min.Z, box.Max.Z} {
					p := m.TransformVec3(math.V3(x, y, z))
					if p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 || p.Z < -1 || p.Z > 1 {
						t.Errorf("dir %+v: corner (%v,%v,%v) maps outside the light volume: %+v", dir, x, y, z, p)
					}
				}
			}
		}
	}
}

func TestLightMatrixEmptyBounds(t *testing.T) {
	if m := LightMatrix(math.V3(0, 1, 0), math.EmptyBox()); m != math.Identity() {
		t.Errorf("empty bounds = %v, want identity", m)
	}
}
