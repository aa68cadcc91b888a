package shadow

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/assetdeck/pkg/math"
)

// LightMatrix computes the view-projection of a directional light that covers
// bounds. dir is the normalized direction pointing towards the light.
// An empty box gives the identity.
func LightMatrix(dir math.Vec3, bounds math.Box3) math.Mat4 {
	if bounds.IsEmpty() {
		return math.Identity()
	}
	center := bounds.Center()
	radius := bounds.Size().Length() / 2
	if radius <= 0 {
		radius = 1
	}

	distance := radius * 2
	eye := center.Add(dir.Scale(distance))

	up := math.V3(0, 1, 0)
	if math32.Abs(dir.Y) > 0.99 {
		up = math.V3(0, 0, 1)
	}
	view := math.LookAt(eye, center, up)

	// Padding keeps geometry off the frustum edges
	half := radius * 1.1
	far := distance + half
	proj := math.Ortho(-half, half, -half, half, 0.1, far)

	return proj.Mul(view)
}
