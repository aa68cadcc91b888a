package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// SetViewState applies new view flags to the loaded model. Flags set before a
// load completes are applied when it does.
func (s *Session) SetViewState(v ViewState) {
	if s.state == Disposed || v == s.view {
		return
	}
	s.view = v
	if s.cur != nil {
		applyViewState(s.cur.scene, v, s.opts.FlattenColor)
	}
}

// RequestReset snaps the camera home when counter rises above every counter
// seen so far. Zero never resets. A reset requested before any scene exists
// is applied once one is built.
func (s *Session) RequestReset(counter int) {
	if s.state == Disposed || counter <= s.lastReset {
		return
	}
	s.lastReset = counter
	if s.cur == nil {
		s.resetDue = true
		return
	}
	s.resetCamera(s.cur)
}

func (s *Session) resetCamera(c *cycle) {
	c.camera.Position = s.opts.CameraPosition
	c.controls.Target = math.Vec3{}
	c.controls.Stop()
	c.controls.Update()
	s.log.Debug("camera reset", zap.Int("counter", s.lastReset))
}

// applyViewState pushes flags onto every material and the skeleton helper.
// It only touches attributes, never structure, and is a no-op before a model
// is loaded.
func applyViewState(sc *scene.Scene, v ViewState, flat math.Color) {
	root := sc.Model()
	if root == nil {
		return
	}

	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		for _, m := range n.Mesh.Materials {
			m.Wireframe = v.Wireframe
			if v.Textured {
				m.Restore()
			} else {
				m.Flatten(flat)
			}
		}
	})

	if sc.Skeleton != nil {
		sc.Skeleton.Visible = v.ShowSkeleton && !sc.Skeleton.Empty()
	}
}
