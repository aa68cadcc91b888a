// Package window handles SDL2 window and OpenGL context creation.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/input"
	"github.com/Faultbox/assetdeck/internal/engine/renderer"
	"github.com/Faultbox/assetdeck/internal/logger"
	"github.com/Faultbox/assetdeck/internal/viewer"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title         string
	Width         int
	Height        int
	Fullscreen    bool
	VSync         bool
	ShadowMapSize int32
}

// Window wraps an SDL2 window and its OpenGL context. It is the viewer's mount.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext
	surface   *renderer.Renderer

	handlers map[int]viewer.InputHandler
	nextID   int
}

// New creates a new window with OpenGL context.
func New(cfg Config) (*Window, error) {
	w := &Window{
		config:   cfg,
		handlers: make(map[int]viewer.InputHandler),
	}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Attributes must be set before the window exists.
	// OpenGL 4.1 Core is the highest macOS offers.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, 1)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, 4)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if cfg.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			logger.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}

	sdl.EventState(sdl.DROPFILE, sdl.ENABLE)

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)

	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	logger.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// SwapBuffers swaps the OpenGL buffers.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the drawable size in pixels, which differs from the
// window size on high-DPI displays.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// AttachSurface creates a renderer sized to the drawable.
func (w *Window) AttachSurface() (viewer.Surface, error) {
	width, height := w.Size()
	r, err := renderer.New(renderer.Config{
		Width:         width,
		Height:        height,
		ShadowMapSize: w.config.ShadowMapSize,
	})
	if err != nil {
		return nil, err
	}
	w.surface = r
	return r, nil
}

// DetachSurface forgets s once the session has released it.
func (w *Window) DetachSurface(s viewer.Surface) {
	if r, ok := s.(*renderer.Renderer); ok && r == w.surface {
		w.surface = nil
	}
}

// ReadPixels reads back the attached surface. ok is false when none is
// attached.
func (w *Window) ReadPixels() (pixels []byte, width, height int, ok bool) {
	if w.surface == nil {
		return nil, 0, 0, false
	}
	pixels, width, height = w.surface.ReadPixels()
	return pixels, width, height, true
}

// Listen routes drag, wheel and resize events to h.
func (w *Window) Listen(h viewer.InputHandler) func() {
	id := w.nextID
	w.nextID++
	w.handlers[id] = h
	return func() { delete(w.handlers, id) }
}

// Dispatch forwards the frame's events to listeners. Drag distances are
// scaled from window points to drawable pixels.
func (w *Window) Dispatch(events []input.Event) {
	if len(w.handlers) == 0 {
		return
	}
	route(w.handlers, events, w.pixelScale(), w.Size)
}

func route(handlers map[int]viewer.InputHandler, events []input.Event, scale float32, size func() (int, int)) {
	for _, e := range events {
		switch e.Type {
		case input.EventDrag:
			for _, h := range handlers {
				h.PointerDrag(e.DX*scale, e.DY*scale)
			}
		case input.EventWheel:
			for _, h := range handlers {
				h.Wheel(e.Wheel)
			}
		case input.EventResize:
			width, height := size()
			for _, h := range handlers {
				h.Resized(width, height)
			}
		}
	}
}

func (w *Window) pixelScale() float32 {
	pw, _ := w.sdlWindow.GLGetDrawableSize()
	ww, _ := w.sdlWindow.GetSize()
	if ww <= 0 {
		return 1
	}
	return float32(pw) / float32(ww)
}
