// Package camera provides the perspective camera and the orbit controls that
// drive it from pointer input.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/assetdeck/pkg/math"
)

// Perspective is a perspective-projection camera looking at a target point.
type Perspective struct {
	Fov    float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position math.Vec3
	Up       math.Vec3

	target math.Vec3
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	return &Perspective{
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     math.Vec3{Y: 1},
		target: math.Vec3{Z: -1},
	}
}

// LookAt points the camera at p.
func (c *Perspective) LookAt(p math.Vec3) {
	c.target = p
}

// Target returns the point the camera looks at.
func (c *Perspective) Target() math.Vec3 {
	return c.target
}

// SetAspect updates the aspect ratio from a viewport size. A zero height is ignored.
func (c *Perspective) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Perspective) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position, c.target, c.Up)
}

// ProjectionMatrix returns the camera projection.
func (c *Perspective) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.Fov*math32.Pi/180, c.Aspect, c.Near, c.Far)
}
