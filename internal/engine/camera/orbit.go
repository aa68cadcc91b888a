package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/assetdeck/pkg/math"
)

const polarEpsilon = 1e-6

// OrbitControls rotates and dollies a camera around a target point.
//
// Input handlers accumulate deltas; Update applies them. With damping enabled
// only a DampingFactor share of the pending rotation is applied per Update and
// the rest decays, so the camera keeps drifting after the pointer stops.
type OrbitControls struct {
	Camera *Perspective
	Target math.Vec3

	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32

	MinDistance float32
	MaxDistance float32
	MinPolar    float32
	MaxPolar    float32

	// Viewport height in pixels; rotation is one full turn per height dragged.
	viewportHeight float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
}

// NewOrbitControls creates controls orbiting cam around the origin.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	return &OrbitControls{
		Camera:         cam,
		DampingFactor:  0.05,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		MinDistance:    0,
		MaxDistance:    math32.Inf(1),
		MinPolar:       0,
		MaxPolar:       math32.Pi,
		viewportHeight: 1,
		scale:          1,
	}
}

// SetViewport records the viewport size used to scale drag rotation.
func (c *OrbitControls) SetViewport(width, height int) {
	if height > 0 {
		c.viewportHeight = float32(height)
	}
}

// HandleDrag rotates by a pointer drag of dx, dy pixels.
func (c *OrbitControls) HandleDrag(dx, dy float32) {
	c.deltaTheta -= 2 * math32.Pi * dx / c.viewportHeight * c.RotateSpeed
	c.deltaPhi -= 2 * math32.Pi * dy / c.viewportHeight * c.RotateSpeed
}

// HandleWheel dollies by wheel notches. Positive dy moves toward the target.
func (c *OrbitControls) HandleWheel(dy float32) {
	if dy == 0 {
		return
	}
	c.scale *= math32.Pow(0.95, dy*c.ZoomSpeed)
}

// Stop discards pending rotation and dolly, including damping momentum.
func (c *OrbitControls) Stop() {
	c.deltaTheta = 0
	c.deltaPhi = 0
	c.scale = 1
}

// Moving reports whether rotation momentum remains.
func (c *OrbitControls) Moving() bool {
	return math32.Abs(c.deltaTheta) > polarEpsilon || math32.Abs(c.deltaPhi) > polarEpsilon
}

// Update applies pending input to the camera position and aim.
func (c *OrbitControls) Update() {
	offset := c.Camera.Position.Sub(c.Target)

	radius := offset.Length()
	theta := math32.Atan2(offset.X, offset.Z)
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(clamp(offset.Y/radius, -1, 1))
	}

	if c.EnableDamping {
		theta += c.deltaTheta * c.DampingFactor
		phi += c.deltaPhi * c.DampingFactor
	} else {
		theta += c.deltaTheta
		phi += c.deltaPhi
	}

	phi = clamp(phi, c.MinPolar, c.MaxPolar)
	phi = clamp(phi, polarEpsilon, math32.Pi-polarEpsilon)

	radius = clamp(radius*c.scale, c.MinDistance, c.MaxDistance)

	sinPhi := math32.Sin(phi) * radius
	offset = math.Vec3{
		X: sinPhi * math32.Sin(theta),
		Y: math32.Cos(phi) * radius,
		Z: sinPhi * math32.Cos(theta),
	}
	c.Camera.Position = c.Target.Add(offset)
	c.Camera.LookAt(c.Target)

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
	} else {
		c.deltaTheta = 0
		c.deltaPhi = 0
	}
	c.scale = 1
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
