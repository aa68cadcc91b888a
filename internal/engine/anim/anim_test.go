package anim

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

func approx(a, b float32) bool {
	return math32.Abs(a-b) < 1e-4
}

func translationTrack(n *scene.Node, interp Interpolation) *Track {
	return &Track{
		Node:          n,
		Path:          PathTranslation,
		Interpolation: interp,
		Times:         []float32{0, 1, 2},
		Values:        []float32{0, 0, 0, 10, 0, 0, 10, 10, 0},
	}
}

func TestNewClipDuration(t *testing.T) {
	n := scene.NewNode("n")
	short := &Track{Node: n, Path: PathScale, Times: []float32{0, 0.5}, Values: make([]float32, 6)}
	c := NewClip("walk", []*Track{short, translationTrack(n, InterpolationLinear)})
	if c.Duration != 2 {
		t.Errorf("Duration = %v, want 2", c.Duration)
	}
}

func TestTrackSample(t *testing.T) {
	tests := []struct {
		name   string
		interp Interpolation
		at     float32
		want   math.Vec3
	}{
		{"before first key clamps", InterpolationLinear, -1, math.V3(0, 0, 0)},
		{"linear midpoint", InterpolationLinear, 0.5, math.V3(5, 0, 0)},
		{"linear second segment", InterpolationLinear, 1.25, math.V3(10, 2.5, 0)},
		{"after last key clamps", InterpolationLinear, 5, math.V3(10, 10, 0)},
		{"step holds previous", InterpolationStep, 0.9, math.V3(0, 0, 0)},
		{"step on key", InterpolationStep, 1, math.V3(10, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := scene.NewNode("n")
			tr := translationTrack(n, tt.interp)
			tr.apply(tt.at)
			got := n.Position
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) || !approx(got.Z, tt.want.Z) {
				t.Errorf("position at %v = %+v, want %+v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTrackRotationSlerp(t *testing.T) {
	n := scene.NewNode("n")
	q := math.QuatFromAxisAngle(math.V3(0, 1, 0), math32.Pi/2)
	tr := &Track{
		Node:   n,
		Path:   PathRotation,
		Times:  []float32{0, 1},
		Values: []float32{0, 0, 0, 1, q.X, q.Y, q.Z, q.W},
	}
	tr.apply(0.5)

	want := math.QuatFromAxisAngle(math.V3(0, 1, 0), math32.Pi/4)
	if !approx(n.Rotation.Y, want.Y) || !approx(n.Rotation.W, want.W) {
		t.Errorf("rotation = %+v, want %+v", n.Rotation, want)
	}
}

func TestTrackCubicSplineHitsKeys(t *testing.T) {
	n := scene.NewNode("n")
	tr := &Track{
		Node:          n,
		Path:          PathTranslation,
		Interpolation: InterpolationCubicSpline,
		Times:         []float32{0, 1},
		// in-tangent, value, out-tangent per key
		Values: []float32{
			0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 4, 0, 0, 0, 0, 0,
		},
	}

	tr.apply(1)
	if !approx(n.Position.X, 4) {
		t.Errorf("at last key X = %v, want 4", n.Position.X)
	}
	// Zero tangents give a smoothstep curve: value at half time is half way.
	tr.apply(0.5)
	if !approx(n.Position.X, 2) {
		t.Errorf("at midpoint X = %v, want 2", n.Position.X)
	}
	tr.apply(0.25)
	if n.Position.X >= 1 {
		t.Errorf("at quarter X = %v, want ease-in below linear 1", n.Position.X)
	}
}

func TestMixerLoops(t *testing.T) {
	n := scene.NewNode("n")
	clip := NewClip("idle", []*Track{translationTrack(n, InterpolationLinear)})
	m := NewMixer(n)
	a := m.ClipAction(clip)
	if m.ClipAction(clip) != a {
		t.Fatal("ClipAction should return the same action for the same clip")
	}
	a.Play()

	m.Update(2.5)
	if !approx(a.Time(), 0.5) {
		t.Errorf("looped time = %v, want 0.5", a.Time())
	}
	if !approx(n.Position.X, 5) {
		t.Errorf("position X = %v, want 5", n.Position.X)
	}
}

func TestMixerTimeScalePauses(t *testing.T) {
	n := scene.NewNode("n")
	clip := NewClip("idle", []*Track{translationTrack(n, InterpolationLinear)})
	m := NewMixer(n)
	a := m.ClipAction(clip)
	a.Play()
	m.Update(0.5)

	m.TimeScale = 0
	m.Update(1)
	if !approx(a.Time(), 0.5) {
		t.Errorf("paused time = %v, want 0.5", a.Time())
	}

	m.TimeScale = 1
	m.Update(0.25)
	if !approx(a.Time(), 0.75) {
		t.Errorf("resumed time = %v, want 0.75", a.Time())
	}
}

func TestMixerOnceStopsAtEnd(t *testing.T) {
	n := scene.NewNode("n")
	clip := NewClip("once", []*Track{translationTrack(n, InterpolationLinear)})
	m := NewMixer(n)
	a := m.ClipAction(clip)
	a.Loop = false
	a.Play()

	m.Update(3)
	if a.IsPlaying() {
		t.Error("non-looping action should stop at the clip end")
	}
	if a.Time() != clip.Duration {
		t.Errorf("time = %v, want %v", a.Time(), clip.Duration)
	}
}

func TestMixerIgnoresStoppedActions(t *testing.T) {
	n := scene.NewNode("n")
	clip := NewClip("idle", []*Track{translationTrack(n, InterpolationLinear)})
	m := NewMixer(n)
	m.ClipAction(clip)

	m.Update(1)
	if n.Position != (math.Vec3{}) {
		t.Errorf("stopped action moved node to %+v", n.Position)
	}
}
