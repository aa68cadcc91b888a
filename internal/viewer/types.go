// Package viewer runs one interactive model view: it bootstraps the scene for
// a source, loads the model off the event loop, draws every display frame and
// re-applies view-mode flags to whatever is loaded.
package viewer

import (
	"context"

	"github.com/Faultbox/assetdeck/internal/engine/camera"
	"github.com/Faultbox/assetdeck/internal/engine/loader"
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// ViewState holds the user-toggled view modes.
type ViewState struct {
	Wireframe    bool
	Textured     bool
	ShowSkeleton bool
}

// Stats describes the loaded model.
type Stats struct {
	Triangles int
	Vertices  int
	Meshes    int
}

// ClipInfo describes one animation clip of the loaded model.
type ClipInfo struct {
	Name string
}

// State is the session lifecycle state.
type State int

const (
	Uninitialized State = iota
	Bootstrapping
	Loading
	Ready
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Bootstrapping:
		return "bootstrapping"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}

// Mount is the host a session draws into.
type Mount interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	// AttachSurface creates a drawing surface bound to the mount.
	AttachSurface() (Surface, error)
	// DetachSurface removes a released surface so the mount holds none of it.
	DetachSurface(s Surface)
	// Listen routes pointer and resize input to h until unlisten is called.
	Listen(h InputHandler) (unlisten func())
}

// Surface draws a scene. It owns GPU resources until Release.
type Surface interface {
	Draw(sc *scene.Scene, cam *camera.Perspective)
	Resize(width, height int)
	Release()
}

// InputHandler receives mount input.
type InputHandler interface {
	PointerDrag(dx, dy float32)
	Wheel(dy float32)
	Resized(width, height int)
}

// ModelLoader loads a model asynchronously. done may be called from any goroutine.
type ModelLoader interface {
	Load(ctx context.Context, source string, done func(*loader.Model, error))
}

// Options configures the scene a session builds.
type Options struct {
	FallbackSource string // opened when SetSource receives ""
	FitSize        float32
	FlattenColor   math.Color

	FOV            float32
	Near           float32
	Far            float32
	CameraPosition math.Vec3
	DampingFactor  float32

	Background    math.Color
	GridSize      float32
	GridDivisions int
	GridCenter    math.Color
	GridLine      math.Color

	InitialView ViewState
}

// DefaultOptions returns the stock viewer look.
func DefaultOptions() Options {
	return Options{
		FallbackSource: "/model.glb",
		FitSize:        4,
		FlattenColor:   math.Hex(0x333333),
		FOV:            45,
		Near:           0.1,
		Far:            1000,
		CameraPosition: math.V3(6, 4, 6),
		DampingFactor:  0.05,
		Background:     math.Hex(0x0a0a0a),
		GridSize:       30,
		GridDivisions:  60,
		GridCenter:     math.Hex(0x222222),
		GridLine:       math.Hex(0x111111),
		InitialView:    ViewState{Textured: true},
	}
}
