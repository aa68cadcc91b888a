package viewer

import (
	"context"
	"fmt"

	"github.com/Faultbox/assetdeck/internal/engine/camera"
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// bootstrap builds the surface, scene, camera and controls for one source and
// wires them to the mount and the clock.
func (s *Session) bootstrap(source string) (*cycle, error) {
	surface, err := s.mount.AttachSurface()
	if err != nil {
		return nil, fmt.Errorf("attaching surface: %w", err)
	}
	w, h := s.mount.Size()

	cam := camera.NewPerspective(s.opts.FOV, 1, s.opts.Near, s.opts.Far)
	cam.SetAspect(w, h)
	cam.Position = s.opts.CameraPosition
	cam.LookAt(math.Vec3{})

	controls := camera.NewOrbitControls(cam)
	controls.EnableDamping = true
	controls.DampingFactor = s.opts.DampingFactor
	controls.SetViewport(w, h)

	s.gen++
	ctx, cancel := context.WithCancel(context.Background())
	c := &cycle{
		gen:      s.gen,
		source:   source,
		ctx:      ctx,
		cancel:   cancel,
		surface:  surface,
		camera:   cam,
		controls: controls,
		scene:    s.buildScene(),
	}

	c.unlisten = s.mount.Listen(&cycleInput{s: s, c: c})
	c.clockID = s.clock.Register(func(dt float64) { s.tick(c, dt) })
	return c, nil
}

// buildScene creates the empty stage: background, grid and lighting rig.
func (s *Session) buildScene() *scene.Scene {
	sc := scene.New(s.opts.Background)
	sc.Grid = scene.NewGrid(s.opts.GridSize, s.opts.GridDivisions, s.opts.GridCenter, s.opts.GridLine)
	sc.Ambient = &scene.AmbientLight{Color: math.Hex(0xffffff), Intensity: 0.3}
	sc.AddLight(&scene.DirectionalLight{
		Name:       "key",
		Color:      math.Hex(0xffffff),
		Intensity:  1.2,
		Position:   math.V3(10, 20, 10),
		CastShadow: true,
	})
	sc.AddLight(&scene.DirectionalLight{
		Name:      "rim",
		Color:     math.Hex(0x3b82f6),
		Intensity: 0.8,
		Position:  math.V3(-10, 10, -10),
	})
	return sc
}

// cycleInput routes mount input to the cycle it was bound for.
type cycleInput struct {
	s *Session
	c *cycle
}

func (in *cycleInput) live() bool {
	return in.s.cur == in.c
}

func (in *cycleInput) PointerDrag(dx, dy float32) {
	if in.live() {
		in.c.controls.HandleDrag(dx, dy)
	}
}

func (in *cycleInput) Wheel(dy float32) {
	if in.live() {
		in.c.controls.HandleWheel(dy)
	}
}

func (in *cycleInput) Resized(w, h int) {
	if !in.live() {
		return
	}
	in.c.camera.SetAspect(w, h)
	in.c.controls.SetViewport(w, h)
	in.c.surface.Resize(w, h)
}
