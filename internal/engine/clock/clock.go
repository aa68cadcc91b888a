// Package clock schedules per-frame callbacks against the display refresh.
package clock

import (
	"sort"
	"time"
)

// FrameFunc is called once per display frame with the seconds elapsed since the
// subscriber's previous frame (or since it registered, for the first frame).
type FrameFunc func(dt float64)

// FrameClock delivers display frames to registered subscribers.
type FrameClock interface {
	Register(fn FrameFunc) int
	Unregister(id int)
}

type subscriber struct {
	fn   FrameFunc
	last time.Time
}

// Display is a FrameClock ticked by the main loop once per presented frame.
// It is not safe for concurrent use; register, unregister and tick from the
// loop goroutine.
type Display struct {
	now    func() time.Time
	nextID int
	subs   map[int]*subscriber
	frames uint64
}

// NewDisplay creates a display clock. A nil now uses time.Now.
func NewDisplay(now func() time.Time) *Display {
	if now == nil {
		now = time.Now
	}
	return &Display{
		now:    now,
		nextID: 1,
		subs:   make(map[int]*subscriber),
	}
}

// Register adds fn and returns its registration id. Ids are never reused.
func (d *Display) Register(fn FrameFunc) int {
	id := d.nextID
	d.nextID++
	d.subs[id] = &subscriber{fn: fn, last: d.now()}
	return id
}

// Unregister removes a subscriber. Unknown ids are ignored.
func (d *Display) Unregister(id int) {
	delete(d.subs, id)
}

// Len returns the number of registered subscribers.
func (d *Display) Len() int {
	return len(d.subs)
}

// Frames returns how many frames have been ticked.
func (d *Display) Frames() uint64 {
	return d.frames
}

// Frame ticks every subscriber in registration order. Subscribers may register
// or unregister during the tick; new ones start on the next frame and removed
// ones are not called again.
func (d *Display) Frame() {
	d.frames++
	now := d.now()

	ids := make([]int, 0, len(d.subs))
	for id := range d.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		s, ok := d.subs[id]
		if !ok {
			continue
		}
		dt := now.Sub(s.last).Seconds()
		if dt < 0 {
			dt = 0
		}
		s.last = now
		s.fn(dt)
	}
}
