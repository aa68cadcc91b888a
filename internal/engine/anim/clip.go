// Package anim provides keyframe animation clips and the mixer that plays them
// against a scene hierarchy.
package anim

import (
	"sort"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Path selects which node property a track drives.
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// Track animates one property of one node.
//
// Values holds Components floats per keyframe (3 for translation/scale, 4 for
// rotation quaternions). Cubic spline tracks store in-tangent, value and
// out-tangent per keyframe, so they are three times as long.
type Track struct {
	Node          *scene.Node
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        []float32
}

// Components returns the number of floats per value.
func (t *Track) Components() int {
	if t.Path == PathRotation {
		return 4
	}
	return 3
}

// Clip is a named set of tracks.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []*Track
}

// NewClip creates a clip. Its duration is the latest keyframe time across tracks.
func NewClip(name string, tracks []*Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	for _, tr := range tracks {
		if n := len(tr.Times); n > 0 && tr.Times[n-1] > c.Duration {
			c.Duration = tr.Times[n-1]
		}
	}
	return c
}

// Apply poses every track's node at time t (seconds).
func (c *Clip) Apply(t float32) {
	for _, tr := range c.Tracks {
		tr.apply(t)
	}
}

func (t *Track) apply(at float32) {
	if t.Node == nil || len(t.Times) == 0 {
		return
	}
	v := t.sample(at)
	switch t.Path {
	case PathTranslation:
		t.Node.Position = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case PathScale:
		t.Node.Scale = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	case PathRotation:
		t.Node.Rotation = math.QuatFromArray(v).Normalize()
	}
}

// sample returns the interpolated value at time at.
func (t *Track) sample(at float32) [4]float32 {
	n := len(t.Times)
	if n == 1 || at <= t.Times[0] {
		return t.value(0)
	}
	if at >= t.Times[n-1] {
		return t.value(n - 1)
	}

	// Find surrounding keyframes
	next := sort.Search(n, func(i int) bool { return t.Times[i] > at })
	prev := next - 1

	t0, t1 := t.Times[prev], t.Times[next]
	dt := t1 - t0
	u := float32(0)
	if dt > 0 {
		u = (at - t0) / dt
	}

	switch t.Interpolation {
	case InterpolationStep:
		return t.value(prev)
	case InterpolationCubicSpline:
		return t.hermite(prev, next, u, dt)
	}

	a, b := t.value(prev), t.value(next)
	if t.Path == PathRotation {
		return math.QuatFromArray(a).Slerp(math.QuatFromArray(b), u).Array()
	}
	var out [4]float32
	for i := 0; i < 3; i++ {
		out[i] = a[i] + u*(b[i]-a[i])
	}
	return out
}

// element returns the k-th group of Components floats.
func (t *Track) element(k int) [4]float32 {
	var out [4]float32
	c := t.Components()
	copy(out[:c], t.Values[k*c:k*c+c])
	return out
}

// value returns the keyframe value, skipping tangents for cubic spline tracks.
func (t *Track) value(key int) [4]float32 {
	if t.Interpolation == InterpolationCubicSpline {
		return t.element(key*3 + 1)
	}
	return t.element(key)
}

func (t *Track) hermite(prev, next int, u, dt float32) [4]float32 {
	p0 := t.element(prev*3 + 1)
	m0 := t.element(prev*3 + 2) // out-tangent
	p1 := t.element(next*3 + 1)
	m1 := t.element(next*3) // in-tangent

	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2

	var out [4]float32
	for i := 0; i < t.Components(); i++ {
		out[i] = h00*p0[i] + h10*dt*m0[i] + h01*p1[i] + h11*dt*m1[i]
	}
	return out
}
