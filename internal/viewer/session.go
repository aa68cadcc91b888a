package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/anim"
	"github.com/Faultbox/assetdeck/internal/engine/camera"
	"github.com/Faultbox/assetdeck/internal/engine/clock"
	"github.com/Faultbox/assetdeck/internal/engine/loader"
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/internal/logger"
)

// ErrDisposed is returned by SetSource and Reload after Dispose.
var ErrDisposed = errors.New("viewer session disposed")

// Session is one viewer bound to a mount.
//
// All methods must be called from the event-loop goroutine that ticks the
// frame clock. Only load completions cross goroutines, through a queue that
// the loop drains.
type Session struct {
	mount  Mount
	clock  clock.FrameClock
	loader ModelLoader
	opts   Options
	log    *zap.Logger

	state     State
	source    string
	view      ViewState
	lastReset int
	resetDue  bool
	loading   bool
	stats     Stats
	clips     []ClipInfo
	playing   bool

	gen uint64
	cur *cycle

	mu      sync.Mutex
	pending []completion
	closed  bool
}

// cycle holds everything built for one source. It is released as a unit.
type cycle struct {
	gen    uint64
	source string
	ctx    context.Context
	cancel context.CancelFunc

	surface  Surface
	camera   *camera.Perspective
	controls *camera.OrbitControls
	scene    *scene.Scene
	mixer    *anim.Mixer

	clockID  int
	unlisten func()
}

type completion struct {
	gen    uint64
	source string
	model  *loader.Model
	err    error
}

// NewSession creates an idle session. Nothing is built until SetSource.
func NewSession(mount Mount, fc clock.FrameClock, ml ModelLoader, opts Options) *Session {
	return &Session{
		mount:  mount,
		clock:  fc,
		loader: ml,
		opts:   opts,
		log:    logger.Named("viewer"),
		view:   opts.InitialView,
	}
}

// SetSource activates a model source. Setting the active source again is a
// no-op; any other source tears down the current cycle and starts a new one.
// The only error is a failure to attach a surface, after which the session is
// Uninitialized and SetSource may be retried.
func (s *Session) SetSource(source string) error {
	if s.state == Disposed {
		return ErrDisposed
	}
	if source == "" {
		source = s.opts.FallbackSource
	}
	if s.cur != nil && source == s.source {
		return nil
	}
	return s.start(source)
}

// Reload tears down and rebuilds the cycle for the active source.
func (s *Session) Reload() error {
	if s.state == Disposed {
		return ErrDisposed
	}
	if s.source == "" {
		return nil
	}
	return s.start(s.source)
}

func (s *Session) start(source string) error {
	if s.cur != nil {
		s.teardown(s.cur)
	}

	s.source = source
	s.stats = Stats{}
	s.clips = nil
	s.playing = false
	s.loading = false
	s.state = Bootstrapping

	c, err := s.bootstrap(source)
	if err != nil {
		s.state = Uninitialized
		s.source = ""
		return fmt.Errorf("bootstrapping viewer: %w", err)
	}
	s.cur = c

	if s.resetDue {
		s.resetDue = false
		s.resetCamera(c)
	}

	s.load(c)
	return nil
}

func (s *Session) load(c *cycle) {
	s.state = Loading
	s.loading = true
	s.log.Info("loading model", zap.String("source", c.source), zap.Uint64("gen", c.gen))

	gen, source := c.gen, c.source
	s.loader.Load(c.ctx, source, func(m *loader.Model, err error) {
		s.post(completion{gen: gen, source: source, model: m, err: err})
	})
}

// post queues a load result. It runs on the loader's goroutine.
func (s *Session) post(c completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if c.model != nil {
			c.model.Root.Dispose()
		}
		return
	}
	s.pending = append(s.pending, c)
}

// Poll applies queued load results. The render loop calls it every frame; a
// host without a running clock may call it directly.
func (s *Session) Poll() {
	s.mu.Lock()
	queued := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, c := range queued {
		s.complete(c)
	}
}

func (s *Session) complete(r completion) {
	c := s.cur
	if c == nil || r.gen != c.gen || r.source != c.source {
		s.log.Debug("discarding stale load result",
			zap.String("source", r.source),
			zap.Uint64("gen", r.gen))
		if r.model != nil {
			r.model.Root.Dispose()
		}
		return
	}

	if r.err != nil {
		s.log.Error("model load failed", zap.String("source", r.source), zap.Error(r.err))
		s.loading = false
		s.state = Ready
		return
	}

	root := r.model.Root
	scale := Normalize(root, s.opts.FitSize)
	stats := CollectStats(root)
	c.scene.SetModel(root)

	s.clips = make([]ClipInfo, len(r.model.Clips))
	for i, clip := range r.model.Clips {
		s.clips[i] = ClipInfo{Name: clip.Name}
	}
	if len(r.model.Clips) > 0 {
		c.mixer = anim.NewMixer(root)
		c.mixer.ClipAction(r.model.Clips[0]).Play()
		s.playing = true
	}

	c.scene.Skeleton = scene.NewSkeletonHelper(root)

	// Flags toggled while loading take effect now
	applyViewState(c.scene, s.view, s.opts.FlattenColor)

	s.stats = stats
	s.loading = false
	s.state = Ready

	s.log.Info("model ready",
		zap.String("source", r.source),
		zap.Int("meshes", stats.Meshes),
		zap.Int("vertices", stats.Vertices),
		zap.Int("triangles", stats.Triangles),
		zap.Int("clips", len(s.clips)),
		zap.Float32("scale", scale))
}

// tick is the per-frame callback registered with the clock.
func (s *Session) tick(c *cycle, dt float64) {
	s.Poll()
	if s.cur != c {
		return
	}
	if c.mixer != nil {
		c.mixer.Update(dt)
	}
	c.controls.Update()
	c.scene.Update()
	c.surface.Draw(c.scene, c.camera)
}

// TogglePlayback pauses or resumes the animation. It does nothing without one.
func (s *Session) TogglePlayback() {
	if s.cur == nil || s.cur.mixer == nil {
		return
	}
	s.playing = !s.playing
	if s.playing {
		s.cur.mixer.TimeScale = 1
	} else {
		s.cur.mixer.TimeScale = 0
	}
}

// Dispose releases everything the session built. Further calls are no-ops.
func (s *Session) Dispose() {
	if s.state == Disposed {
		return
	}

	s.mu.Lock()
	s.closed = true
	queued := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, r := range queued {
		if r.model != nil {
			r.model.Root.Dispose()
		}
	}
	if s.cur != nil {
		s.teardown(s.cur)
	}
	s.loading = false
	s.state = Disposed
	s.log.Debug("session disposed")
}

// teardown releases a cycle in reverse order of construction.
func (s *Session) teardown(c *cycle) {
	c.cancel()
	s.clock.Unregister(c.clockID)
	c.unlisten()
	c.scene.Dispose()
	c.surface.Release()
	s.mount.DetachSurface(c.surface)
	if s.cur == c {
		s.cur = nil
	}
	s.log.Debug("cycle released", zap.String("source", c.source), zap.Uint64("gen", c.gen))
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Source returns the active source.
func (s *Session) Source() string { return s.source }

// IsLoading reports whether a load is in flight.
func (s *Session) IsLoading() bool { return s.loading }

// Stats returns the counts for the loaded model.
func (s *Session) Stats() Stats { return s.stats }

// Clips returns the loaded model's animation clips.
func (s *Session) Clips() []ClipInfo { return s.clips }

// IsPlaying reports whether the animation advances.
func (s *Session) IsPlaying() bool { return s.playing }

// View returns the current view flags.
func (s *Session) View() ViewState { return s.view }
