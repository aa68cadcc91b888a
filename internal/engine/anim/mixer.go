package anim

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
)

// Action is the playback state of one clip on a mixer.
type Action struct {
	clip    *Clip
	time    float32
	playing bool
	Loop    bool
}

// Play starts or resumes the action.
func (a *Action) Play() {
	a.playing = true
}

// Stop halts the action and rewinds it.
func (a *Action) Stop() {
	a.playing = false
	a.time = 0
}

// IsPlaying reports whether the action advances on Update.
func (a *Action) IsPlaying() bool {
	return a.playing
}

// Time returns the local clip time in seconds.
func (a *Action) Time() float32 {
	return a.time
}

// Clip returns the clip driven by the action.
func (a *Action) Clip() *Clip {
	return a.clip
}

// Mixer advances clip actions for one model. TimeScale multiplies every update;
// 0 pauses playback without losing position.
type Mixer struct {
	root      *scene.Node
	TimeScale float32
	actions   []*Action
}

// NewMixer creates a mixer for the model rooted at root.
func NewMixer(root *scene.Node) *Mixer {
	return &Mixer{root: root, TimeScale: 1}
}

// Root returns the model the mixer animates.
func (m *Mixer) Root() *scene.Node {
	return m.root
}

// ClipAction returns the action for clip, creating a looping one on first use.
func (m *Mixer) ClipAction(clip *Clip) *Action {
	for _, a := range m.actions {
		if a.clip == clip {
			return a
		}
	}
	a := &Action{clip: clip, Loop: true}
	m.actions = append(m.actions, a)
	return a
}

// Update advances playing actions by dt seconds scaled by TimeScale and poses the model.
func (m *Mixer) Update(dt float64) {
	step := float32(dt) * m.TimeScale
	for _, a := range m.actions {
		if !a.playing {
			continue
		}
		a.time += step
		d := a.clip.Duration
		switch {
		case d <= 0:
			a.time = 0
		case a.Loop:
			a.time = math32.Mod(a.time, d)
			if a.time < 0 {
				a.time += d
			}
		case a.time >= d:
			a.time = d
			a.playing = false
		}
		a.clip.Apply(a.time)
	}
}
