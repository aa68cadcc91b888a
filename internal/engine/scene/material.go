package scene

import (
	"image"

	"github.com/Faultbox/assetdeck/pkg/math"
)

// Material holds per-surface appearance attributes.
type Material struct {
	Name        string
	Color       math.Color
	Map         *image.RGBA // base color texture, nil when untextured
	Wireframe   bool
	DoubleSided bool

	// original is the appearance captured before the first Flatten.
	original *appearance
}

type appearance struct {
	color math.Color
	tex   *image.RGBA
}

// NewMaterial creates a material with the given base color.
func NewMaterial(name string, color math.Color) *Material {
	return &Material{Name: name, Color: color}
}

// Flatten replaces the visible color with c and hides the texture. The current
// appearance is cached the first time only, so repeated calls keep the true
// original.
func (m *Material) Flatten(c math.Color) {
	if m.original == nil {
		m.original = &appearance{color: m.Color, tex: m.Map}
	}
	m.Color = c
	m.Map = nil
}

// Restore puts back the appearance cached by Flatten. It does nothing if the
// material was never flattened.
func (m *Material) Restore() {
	if m.original != nil {
		m.Color = m.original.color
		m.Map = m.original.tex
	}
}

// OriginalColor returns the cached pre-flatten color, if any.
func (m *Material) OriginalColor() (math.Color, bool) {
	if m.original == nil {
		return math.Color{}, false
	}
	return m.original.color, true
}
