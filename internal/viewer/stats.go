package viewer

import (
	gomath "math"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Normalize scales root so its largest dimension is fitSize and centers it on
// the origin horizontally, with no vertical offset. A degenerate box leaves
// the transform alone. It returns the applied scale.
func Normalize(root *scene.Node, fitSize float32) float32 {
	box := scene.ComputeBounds(root)
	if box.IsEmpty() {
		return 1
	}
	maxDim := box.Size().MaxComponent()
	if maxDim <= 0 {
		return 1
	}

	scale := fitSize / maxDim
	root.Scale = math.V3(scale, scale, scale)
	root.Position = box.Center().Scale(-scale)
	root.Position.Y = 0
	root.UpdateWorld()
	return scale
}

// CollectStats counts meshes, vertices and triangles in one pass and turns on
// shadows for every mesh. Meshes without positions count as meshes only.
// Triangle totals are rounded once at the end.
func CollectStats(root *scene.Node) Stats {
	var st Stats
	var triangles float64

	root.Traverse(func(n *scene.Node) {
		m := n.Mesh
		if m == nil {
			return
		}
		st.Meshes++
		m.CastShadow = true
		m.ReceiveShadow = true

		g := m.Geometry
		if g == nil || g.VertexCount() == 0 {
			return
		}
		st.Vertices += g.VertexCount()
		triangles += g.TriangleCount()
	})

	st.Triangles = int(gomath.Round(triangles))
	return st
}
