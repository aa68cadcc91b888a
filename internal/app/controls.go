package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/assetdeck/internal/config"
	"github.com/Faultbox/assetdeck/internal/viewer"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionToggleWireframe
	actionToggleTextured
	actionToggleSkeleton
	actionResetCamera
	actionTogglePlayback
	actionNext
	actionPrev
	actionScreenshot
)

var keyBindings = map[sdl.Keycode]action{
	sdl.K_ESCAPE: actionQuit,
	sdl.K_w:      actionToggleWireframe,
	sdl.K_t:      actionToggleTextured,
	sdl.K_b:      actionToggleSkeleton,
	sdl.K_r:      actionResetCamera,
	sdl.K_SPACE:  actionTogglePlayback,
	sdl.K_n:      actionNext,
	sdl.K_RIGHT:  actionNext,
	sdl.K_p:      actionPrev,
	sdl.K_LEFT:   actionPrev,
	sdl.K_F12:    actionScreenshot,
}

func actionFor(key sdl.Keycode) action {
	return keyBindings[key]
}

// controls is the host-side copy of the view flags and the reset counter
// handed to the session.
type controls struct {
	view   viewer.ViewState
	resets int
}

// apply updates the controls for act and reports whether it changed them.
func (c *controls) apply(act action) bool {
	switch act {
	case actionToggleWireframe:
		c.view.Wireframe = !c.view.Wireframe
	case actionToggleTextured:
		c.view.Textured = !c.view.Textured
	case actionToggleSkeleton:
		c.view.ShowSkeleton = !c.view.ShowSkeleton
	case actionResetCamera:
		c.resets++
	default:
		return false
	}
	return true
}

func viewState(v config.ViewConfig) viewer.ViewState {
	return viewer.ViewState{
		Wireframe:    v.Wireframe,
		Textured:     v.Textured,
		ShowSkeleton: v.ShowSkeleton,
	}
}
