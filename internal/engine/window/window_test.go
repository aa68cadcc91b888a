package window

import (
	"fmt"
	"testing"

	"github.com/Faultbox/assetdeck/internal/engine/input"
	"github.com/Faultbox/assetdeck/internal/engine/renderer"
	"github.com/Faultbox/assetdeck/internal/viewer"
)

type recorder struct {
	calls []string
}

func (r *recorder) PointerDrag(dx, dy float32) { r.calls = append(r.calls, fmt.Sprintf("drag %v,%v", dx, dy)) }
func (r *recorder) Wheel(dy float32)           { r.calls = append(r.calls, fmt.Sprintf("wheel %v", dy)) }
func (r *recorder) Resized(w, h int)           { r.calls = append(r.calls, fmt.Sprintf("resize %dx%d", w, h)) }

func TestRoute(t *testing.T) {
	rec := &recorder{}
	handlers := map[int]viewer.InputHandler{0: rec}
	events := []input.Event{
		{Type: input.EventDrag, DX: 3, DY: -1},
		{Type: input.EventKeyDown},
		{Type: input.EventWheel, Wheel: -2},
		{Type: input.EventResize, Width: 400, Height: 300},
	}

	route(handlers, events, 2, func() (int, int) { return 800, 600 })

	want := []string{"drag 6,-2", "wheel -2", "resize 800x600"}
	if fmt.Sprint(rec.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestListenUnlisten(t *testing.T) {
	w := &Window{handlers: make(map[int]viewer.InputHandler)}
	a, b := &recorder{}, &recorder{}
	stopA := w.Listen(a)
	w.Listen(b)

	stopA()
	route(w.handlers, []input.Event{{Type: input.EventWheel, Wheel: 1}}, 1, nil)

	if len(a.calls) != 0 || len(b.calls) != 1 {
		t.Errorf("a=%v b=%v", a.calls, b.calls)
	}
}

func TestDetachSurface(t *testing.T) {
	current, stale := &renderer.Renderer{}, &renderer.Renderer{}
	w := &Window{surface: current}

	w.DetachSurface(stale)
	if w.surface != current {
		t.Fatal("detaching another surface cleared the current one")
	}

	w.DetachSurface(current)
	if _, _, _, ok := w.ReadPixels(); ok {
		t.Error("ReadPixels reported a surface after detach")
	}
}
