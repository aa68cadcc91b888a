package viewer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/assetdeck/internal/engine/anim"
	"github.com/Faultbox/assetdeck/internal/engine/camera"
	"github.com/Faultbox/assetdeck/internal/engine/clock"
	"github.com/Faultbox/assetdeck/internal/engine/loader"
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/internal/logger"
	"github.com/Faultbox/assetdeck/pkg/math"
)

type fakeSurface struct {
	draws    int
	lastDraw *scene.Scene
	resizes  [][2]int
	released int
}

func (f *fakeSurface) Draw(sc *scene.Scene, _ *camera.Perspective) {
	f.draws++
	f.lastDraw = sc
}

func (f *fakeSurface) Resize(w, h int) { f.resizes = append(f.resizes, [2]int{w, h}) }

func (f *fakeSurface) Release() { f.released++ }

type fakeMount struct {
	w, h      int
	failNext  bool
	surfaces  []*fakeSurface
	attached  map[*fakeSurface]bool
	listeners map[int]InputHandler
	nextID    int
}

func newFakeMount() *fakeMount {
	return &fakeMount{
		w:         800,
		h:         600,
		attached:  make(map[*fakeSurface]bool),
		listeners: make(map[int]InputHandler),
	}
}

func (m *fakeMount) Size() (int, int) { return m.w, m.h }

func (m *fakeMount) AttachSurface() (Surface, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("no GL context")
	}
	s := &fakeSurface{}
	m.surfaces = append(m.surfaces, s)
	m.attached[s] = true
	return s, nil
}

func (m *fakeMount) DetachSurface(s Surface) {
	delete(m.attached, s.(*fakeSurface))
}

func (m *fakeMount) Listen(h InputHandler) func() {
	id := m.nextID
	m.nextID++
	m.listeners[id] = h
	return func() { delete(m.listeners, id) }
}

func (m *fakeMount) drag(dx, dy float32) {
	for _, h := range m.listeners {
		h.PointerDrag(dx, dy)
	}
}

func (m *fakeMount) resize(w, h int) {
	m.w, m.h = w, h
	for _, l := range m.listeners {
		l.Resized(w, h)
	}
}

func (m *fakeMount) surface() *fakeSurface {
	return m.surfaces[len(m.surfaces)-1]
}

type loadRequest struct {
	ctx    context.Context
	source string
	done   func(*loader.Model, error)
}

type fakeLoader struct {
	requests []*loadRequest
}

func (l *fakeLoader) Load(ctx context.Context, source string, done func(*loader.Model, error)) {
	l.requests = append(l.requests, &loadRequest{ctx: ctx, source: source, done: done})
}

func (l *fakeLoader) last() *loadRequest {
	return l.requests[len(l.requests)-1]
}

type harness struct {
	mount   *fakeMount
	loader  *fakeLoader
	clock   *clock.Display
	now     time.Time
	session *Session
	logs    *observer.ObservedLogs
}

func newHarness() (*harness, func()) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.Replace(zap.New(core))

	h := &harness{
		mount:  newFakeMount(),
		loader: &fakeLoader{},
		now:    time.Unix(0, 0),
		logs:   logs,
	}
	h.clock = clock.NewDisplay(func() time.Time { return h.now })
	h.session = NewSession(h.mount, h.clock, h.loader, DefaultOptions())
	return h, restore
}

// frame advances fake time by dt and ticks the clock.
func (h *harness) frame(dt time.Duration) {
	h.now = h.now.Add(dt)
	h.clock.Frame()
}

func (h *harness) count(msg string) int {
	return h.logs.FilterMessage(msg).Len()
}

// boxModel returns a single-mesh model whose bounds are w x h x d, centered
// at center.
func boxModel(w, h, d float32, center math.Vec3) *loader.Model {
	hx, hy, hz := w/2, h/2, d/2
	var pos [][3]float32
	for _, x := range []float32{-hx, hx} {
		for _, y := range []float32{-hy, hy} {
			for _, z := range []float32{-hz, hz} {
				pos = append(pos, [3]float32{x + center.X, y + center.Y, z + center.Z})
			}
		}
	}
	idx := []uint32{0, 1, 2, 1, 3, 2, 4, 5, 6, 5, 7, 6}

	root := scene.NewNode("model")
	body := scene.NewNode("body")
	body.Mesh = scene.NewMesh(&scene.Geometry{Positions: pos, Indices: idx},
		scene.NewMaterial("paint", math.Color{R: 0.8, G: 0.1, B: 0.1}))
	root.Add(body)
	return &loader.Model{Root: root}
}

// riggedModel returns a box with a two-bone chain and one looping clip that
// moves the tip bone.
func riggedModel(clipName string) *loader.Model {
	m := boxModel(1, 1, 1, math.Vec3{})
	hip := scene.NewNode("hip")
	hip.Bone = true
	tip := scene.NewNode("tip")
	tip.Bone = true
	tip.Position = math.V3(0, 1, 0)
	hip.Add(tip)
	m.Root.Add(hip)

	m.Clips = []*anim.Clip{anim.NewClip(clipName, []*anim.Track{{
		Node:   tip,
		Path:   anim.PathTranslation,
		Times:  []float32{0, 2},
		Values: []float32{0, 1, 0, 0, 3, 0},
	}})}
	return m
}

func materials(root *scene.Node) []*scene.Material {
	var out []*scene.Material
	root.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			out = append(out, n.Mesh.Materials...)
		}
	})
	return out
}
