// Package app wires the viewer session to a desktop window and runs the
// frame loop.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/assets"
	"github.com/Faultbox/assetdeck/internal/catalog"
	"github.com/Faultbox/assetdeck/internal/config"
	"github.com/Faultbox/assetdeck/internal/engine/clock"
	"github.com/Faultbox/assetdeck/internal/engine/input"
	"github.com/Faultbox/assetdeck/internal/engine/loader"
	"github.com/Faultbox/assetdeck/internal/engine/snapshot"
	"github.com/Faultbox/assetdeck/internal/engine/window"
	"github.com/Faultbox/assetdeck/internal/logger"
	"github.com/Faultbox/assetdeck/internal/viewer"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// App is the desktop viewer.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	window  *window.Window
	input   *input.Input
	clock   *clock.Display
	assets  *assets.Manager
	catalog *catalog.Catalog
	watcher *assets.Watcher
	shots   *snapshot.Capture
	session *viewer.Session

	controls controls
	title    string
	running  bool
}

// New opens the window and builds an idle session.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		log:   logger.Named("app"),
		input: input.New(),
		clock: clock.NewDisplay(time.Now),
	}
	a.controls.view = viewState(cfg.View)

	a.assets = assets.NewManager(cfg.Viewer.FetchTimeout)
	for _, root := range cfg.Catalog.Roots {
		if err := a.assets.AddRoot(root); err != nil {
			a.log.Warn("skipping asset root", zap.String("root", root), zap.Error(err))
		}
	}

	if cfg.Catalog.Manifest != "" {
		c, err := catalog.Load(cfg.Catalog.Manifest)
		if err != nil {
			a.assets.Close()
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		a.catalog = c
	}

	shots, err := snapshot.New(cfg.Viewer.ScreenshotDir, "assetdeck")
	if err != nil {
		a.log.Warn("screenshots disabled", zap.Error(err))
	}
	a.shots = shots

	if cfg.Viewer.Watch {
		if a.watcher, err = assets.NewWatcher(); err != nil {
			a.log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	a.window, err = window.New(window.Config{
		Title:         cfg.Window.Title,
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
		Fullscreen:    cfg.Window.Fullscreen,
		VSync:         cfg.Window.VSync,
		ShadowMapSize: cfg.Viewer.ShadowMapSize,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.session = viewer.NewSession(a.window, a.clock, loader.New(a.assets), sessionOptions(cfg))
	a.log.Info("viewer initialized")
	return a, nil
}

// sessionOptions maps configuration onto the session's scene options.
func sessionOptions(cfg *config.Config) viewer.Options {
	opts := viewer.DefaultOptions()
	v := cfg.Viewer
	opts.FallbackSource = catalog.FallbackModel
	opts.FitSize = v.FitSize
	opts.FlattenColor = math.Hex(v.FlattenColor)
	opts.FOV = v.FOV
	opts.Near = v.Near
	opts.Far = v.Far
	opts.CameraPosition = math.V3(v.CameraPosition[0], v.CameraPosition[1], v.CameraPosition[2])
	opts.DampingFactor = v.DampingFactor
	opts.GridSize = v.GridSize
	opts.GridDivisions = v.GridDivisions
	opts.InitialView = viewState(cfg.View)
	return opts
}

// initialSource picks the first model: the catalog's current asset unless a
// model was configured explicitly.
func initialSource(cfg *config.Config, c *catalog.Catalog) string {
	if c != nil && (cfg.Viewer.Model == "" || cfg.Viewer.Model == catalog.FallbackModel) {
		return c.Current().Source()
	}
	return cfg.Viewer.Model
}

// Run shows models until the window closes.
func (a *App) Run() error {
	if err := a.open(initialSource(a.cfg, a.catalog)); err != nil {
		return err
	}

	a.running = true
	a.log.Info("starting frame loop")

	frames := a.clock.Frames()
	fpsTimer := time.Now()

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}
		a.window.Dispatch(a.input.Events())

		shoot := false
		for _, ev := range a.input.Events() {
			switch ev.Type {
			case input.EventKeyDown:
				if a.handleKey(ev.Key) {
					shoot = true
				}
			case input.EventDrop:
				if err := a.open(ev.Path); err != nil {
					return err
				}
			}
		}
		a.pollWatcher()

		a.clock.Frame()
		if shoot {
			a.screenshot()
		}
		a.window.SwapBuffers()
		a.updateTitle()

		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Uint64("count", a.clock.Frames()-frames))
			frames = a.clock.Frames()
			fpsTimer = time.Now()
		}
	}
	return nil
}

// handleKey applies one key press. It reports whether a screenshot was asked for.
func (a *App) handleKey(key sdl.Keycode) bool {
	act := actionFor(key)
	switch act {
	case actionQuit:
		a.running = false
	case actionNext, actionPrev:
		if a.catalog == nil {
			return false
		}
		var asset catalog.Asset
		if act == actionNext {
			asset = a.catalog.Next()
		} else {
			asset = a.catalog.Prev()
		}
		if err := a.open(asset.Source()); err != nil {
			a.log.Error("opening asset", zap.String("id", asset.ID), zap.Error(err))
		}
	case actionScreenshot:
		return true
	case actionTogglePlayback:
		a.session.TogglePlayback()
	case actionResetCamera:
		a.controls.apply(act)
		a.session.RequestReset(a.controls.resets)
	default:
		if a.controls.apply(act) {
			a.session.SetViewState(a.controls.view)
		}
	}
	return false
}

// open activates source and points the watcher at it when it is local.
func (a *App) open(source string) error {
	err := a.session.SetSource(source)
	if errors.Is(err, viewer.ErrDisposed) {
		return err
	}
	if err != nil {
		a.log.Error("attaching surface", zap.String("source", source), zap.Error(err))
	}
	if a.catalog != nil {
		a.catalog.SelectSource(source)
	}
	a.watch(a.session.Source())
	return nil
}

func (a *App) watch(source string) {
	if a.watcher == nil {
		return
	}
	path := ""
	if loc, err := a.assets.Resolve(source); err == nil && !loc.Remote() {
		path = loc.Path
	}
	if err := a.watcher.Watch(path); err != nil {
		a.log.Warn("cannot watch model", zap.String("source", source), zap.Error(err))
	}
}

func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	select {
	case path := <-a.watcher.Changed():
		a.log.Info("model changed on disk, reloading", zap.String("path", path))
		if err := a.session.Reload(); err != nil {
			a.log.Error("reload failed", zap.Error(err))
		}
	default:
	}
}

func (a *App) screenshot() {
	if a.shots == nil {
		return
	}
	pixels, width, height, ok := a.window.ReadPixels()
	if !ok {
		return
	}
	path, err := a.shots.FromPixels(pixels, width, height, a.session.ModelName())
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) updateTitle() {
	title := a.cfg.Window.Title + " - " + a.session.Overlay()
	if title != a.title {
		a.window.SetTitle(title)
		a.title = title
	}
}

// Close releases the session, then the window and its GL context.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.session != nil {
		a.session.Dispose()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
	if a.assets != nil {
		hits, misses := a.assets.Cache().Stats()
		a.log.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
		a.assets.Close()
	}
}
