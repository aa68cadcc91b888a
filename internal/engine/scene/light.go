package scene

import (
	"github.com/Faultbox/assetdeck/pkg/math"
)

// AmbientLight lights every surface uniformly.
type AmbientLight struct {
	Color     math.Color
	Intensity float32
}

// DirectionalLight shines from Position towards Target.
type DirectionalLight struct {
	Name       string
	Color      math.Color
	Intensity  float32
	Position   math.Vec3
	Target     math.Vec3
	CastShadow bool
}

// Direction returns the normalized direction pointing from the target to the light.
func (l *DirectionalLight) Direction() math.Vec3 {
	return l.Position.Sub(l.Target).Normalize()
}

// Radiance returns color scaled by intensity.
func (l *DirectionalLight) Radiance() math.Color {
	return l.Color.Scale(l.Intensity)
}
