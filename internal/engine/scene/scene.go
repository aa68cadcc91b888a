package scene

import (
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Scene is everything a surface draws for one viewer: the loaded model, the
// lighting rig and the reference helpers.
type Scene struct {
	Background math.Color
	Ambient    *AmbientLight
	Lights     []*DirectionalLight
	Grid       *Grid
	Skeleton   *SkeletonHelper

	// Root holds the loaded model. It is always present, empty until a load completes.
	Root *Node

	model *Node
}

// New creates an empty scene with the given background.
func New(background math.Color) *Scene {
	return &Scene{
		Background: background,
		Root:       NewNode("root"),
	}
}

// AddLight appends a directional light.
func (s *Scene) AddLight(l *DirectionalLight) {
	s.Lights = append(s.Lights, l)
}

// ShadowLight returns the first shadow-casting directional light, or nil.
func (s *Scene) ShadowLight() *DirectionalLight {
	for _, l := range s.Lights {
		if l.CastShadow {
			return l
		}
	}
	return nil
}

// SetModel replaces the loaded model. The previous model is disposed.
func (s *Scene) SetModel(model *Node) {
	if s.model != nil {
		s.Root.Remove(s.model)
		s.model.Dispose()
	}
	s.model = model
	if model != nil {
		s.Root.Add(model)
	}
}

// Model returns the loaded model, or nil while nothing is loaded.
func (s *Scene) Model() *Node {
	return s.model
}

// Update recomputes world matrices for the whole scene.
func (s *Scene) Update() {
	s.Root.UpdateWorld()
}

// Dispose releases the model geometry. Lights and helpers hold no GPU state of
// their own; the surface frees what it created for them.
func (s *Scene) Dispose() {
	s.SetModel(nil)
	s.Skeleton = nil
}
