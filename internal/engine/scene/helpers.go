package scene

import (
	"github.com/Faultbox/assetdeck/pkg/math"
)

// LineVertex is one endpoint of a debug line segment.
type LineVertex struct {
	Position [3]float32
	Color    [3]float32
}

// Grid is a square ground reference grid centered on the origin in the XZ plane.
type Grid struct {
	Size        float32
	Divisions   int
	CenterColor math.Color
	LineColor   math.Color
}

// NewGrid creates a grid helper.
func NewGrid(size float32, divisions int, center, line math.Color) *Grid {
	if divisions < 1 {
		divisions = 1
	}
	return &Grid{
		Size:        size,
		Divisions:   divisions,
		CenterColor: center,
		LineColor:   line,
	}
}

// Lines generates the grid as line-segment vertex pairs at y = 0.
// The middle line on each axis uses CenterColor.
func (g *Grid) Lines() []LineVertex {
	step := g.Size / float32(g.Divisions)
	half := g.Size / 2
	center := g.Divisions / 2

	vertices := make([]LineVertex, 0, (g.Divisions+1)*4)
	for i := 0; i <= g.Divisions; i++ {
		k := -half + float32(i)*step
		c := g.LineColor.Array()
		if i == center {
			c = g.CenterColor.Array()
		}
		vertices = append(vertices,
			LineVertex{Position: [3]float32{-half, 0, k}, Color: c},
			LineVertex{Position: [3]float32{half, 0, k}, Color: c},
			LineVertex{Position: [3]float32{k, 0, -half}, Color: c},
			LineVertex{Position: [3]float32{k, 0, half}, Color: c},
		)
	}
	return vertices
}

// SkeletonHelper draws a line from every bone to its parent bone.
// A hierarchy without bones gives an empty helper that draws nothing.
type SkeletonHelper struct {
	Visible bool
	bones   []*Node
}

var (
	boneRootColor = [3]float32{0, 0, 1}
	boneTipColor  = [3]float32{0, 1, 0}
)

// NewSkeletonHelper collects the bones under root.
func NewSkeletonHelper(root *Node) *SkeletonHelper {
	h := &SkeletonHelper{}
	if root == nil {
		return h
	}
	root.Traverse(func(n *Node) {
		if n.Bone {
			h.bones = append(h.bones, n)
		}
	})
	return h
}

// Bones returns the collected bones.
func (h *SkeletonHelper) Bones() []*Node {
	return h.bones
}

// Empty reports whether there is nothing to draw.
func (h *SkeletonHelper) Empty() bool {
	return len(h.bones) == 0
}

// Lines returns bone segments in world space. World matrices must be current.
func (h *SkeletonHelper) Lines() []LineVertex {
	var vertices []LineVertex
	for _, b := range h.bones {
		p := b.Parent()
		if p == nil || !p.Bone {
			continue
		}
		vertices = append(vertices,
			LineVertex{Position: b.WorldPosition().Array(), Color: boneTipColor},
			LineVertex{Position: p.WorldPosition().Array(), Color: boneRootColor},
		)
	}
	return vertices
}
