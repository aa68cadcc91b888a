package app

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/assetdeck/internal/catalog"
	"github.com/Faultbox/assetdeck/internal/config"
	"github.com/Faultbox/assetdeck/internal/viewer"
	"github.com/Faultbox/assetdeck/pkg/math"
)

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key  sdl.Keycode
		want action
	}{
		{sdl.K_w, actionToggleWireframe},
		{sdl.K_t, actionToggleTextured},
		{sdl.K_b, actionToggleSkeleton},
		{sdl.K_r, actionResetCamera},
		{sdl.K_SPACE, actionTogglePlayback},
		{sdl.K_F12, actionScreenshot},
		{sdl.K_ESCAPE, actionQuit},
		{sdl.K_q, actionNone},
	}
	for _, tt := range tests {
		if got := actionFor(tt.key); got != tt.want {
			t.Errorf("actionFor(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestControls(t *testing.T) {
	c := controls{view: viewer.ViewState{Textured: true}}

	if !c.apply(actionToggleWireframe) || !c.view.Wireframe {
		t.Error("wireframe not toggled")
	}
	c.apply(actionToggleTextured)
	c.apply(actionToggleSkeleton)
	want := viewer.ViewState{Wireframe: true, Textured: false, ShowSkeleton: true}
	if c.view != want {
		t.Errorf("view = %+v, want %+v", c.view, want)
	}

	c.apply(actionResetCamera)
	c.apply(actionResetCamera)
	if c.resets != 2 {
		t.Errorf("resets = %d, want 2", c.resets)
	}

	if c.apply(actionNext) {
		t.Error("navigation should not change controls")
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer.FitSize = 2
	cfg.Viewer.FlattenColor = 0x102030
	cfg.View.Wireframe = true

	opts := sessionOptions(cfg)
	if opts.FitSize != 2 || opts.FOV != 45 || opts.GridDivisions != 60 {
		t.Errorf("options = %+v", opts)
	}
	if opts.FlattenColor != math.Hex(0x102030) {
		t.Errorf("flatten color = %v", opts.FlattenColor)
	}
	if opts.CameraPosition != math.V3(6, 4, 6) {
		t.Errorf("camera position = %v", opts.CameraPosition)
	}
	if !opts.InitialView.Wireframe || !opts.InitialView.Textured {
		t.Errorf("initial view = %+v", opts.InitialView)
	}
	if opts.Background != math.Hex(0x0a0a0a) {
		t.Errorf("background = %v", opts.Background)
	}
}

func TestInitialSource(t *testing.T) {
	c, err := catalog.New(
		catalog.Asset{ID: "a", Title: "Robot", Model: "robot.glb"},
		catalog.Asset{ID: "b", Title: "Crate"},
	)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	if got := initialSource(cfg, nil); got != "/model.glb" {
		t.Errorf("no catalog: %q", got)
	}
	if got := initialSource(cfg, c); got != "robot.glb" {
		t.Errorf("catalog: %q", got)
	}
	cfg.Viewer.Model = "other.glb"
	if got := initialSource(cfg, c); got != "other.glb" {
		t.Errorf("explicit model: %q", got)
	}
}
