package scene

import (
	"github.com/Faultbox/assetdeck/pkg/math"
)

// ComputeBounds returns the world-space box enclosing every vertex under root.
// World matrices are refreshed first. Hidden nodes are included.
func ComputeBounds(root *Node) math.Box3 {
	root.UpdateWorld()

	box := math.EmptyBox()
	root.Traverse(func(n *Node) {
		if n.Mesh == nil || n.Mesh.Geometry == nil {
			return
		}
		w := n.World()
		for _, p := range n.Mesh.Geometry.Positions {
			box.ExpandByPoint(w.TransformVec3(math.Vec3{X: p[0], Y: p[1], Z: p[2]}))
		}
	})
	return box
}
