package clock

import (
	"testing"
	"time"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestDisplayDeltaPerSubscriber(t *testing.T) {
	ft := &fakeTime{t: time.Unix(100, 0)}
	d := NewDisplay(ft.now)

	var a, b []float64
	d.Register(func(dt float64) { a = append(a, dt) })

	ft.advance(16 * time.Millisecond)
	d.Frame()

	d.Register(func(dt float64) { b = append(b, dt) })
	ft.advance(32 * time.Millisecond)
	d.Frame()

	if len(a) != 2 || a[0] != 0.016 || a[1] != 0.032 {
		t.Errorf("a deltas = %v, want [0.016 0.032]", a)
	}
	if len(b) != 1 || b[0] != 0.032 {
		t.Errorf("b deltas = %v, want [0.032]", b)
	}
	if d.Frames() != 2 {
		t.Errorf("Frames = %d, want 2", d.Frames())
	}
}

func TestDisplayUnregister(t *testing.T) {
	d := NewDisplay(nil)
	calls := 0
	id := d.Register(func(float64) { calls++ })
	d.Frame()
	d.Unregister(id)
	d.Unregister(id)
	d.Frame()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if d.Len() != 0 {
		t.Errorf("Len = %d, want 0", d.Len())
	}
}

func TestDisplayUnregisterDuringFrame(t *testing.T) {
	d := NewDisplay(nil)
	var second int
	calls := 0
	d.Register(func(float64) { d.Unregister(second) })
	second = d.Register(func(float64) { calls++ })

	d.Frame()
	if calls != 0 {
		t.Errorf("subscriber removed earlier in the frame was called %d times", calls)
	}
}

func TestDisplayRegisterDuringFrame(t *testing.T) {
	d := NewDisplay(nil)
	calls := 0
	registered := false
	d.Register(func(float64) {
		if !registered {
			registered = true
			d.Register(func(float64) { calls++ })
		}
	})

	d.Frame()
	if calls != 0 {
		t.Errorf("new subscriber ran in the frame it registered (%d calls)", calls)
	}
	d.Frame()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDisplayIDsNotReused(t *testing.T) {
	d := NewDisplay(nil)
	a := d.Register(func(float64) {})
	d.Unregister(a)
	b := d.Register(func(float64) {})
	if a == b {
		t.Errorf("id %d reused", a)
	}
}
