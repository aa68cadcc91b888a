package renderer

import (
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// MaxJoints is the joint palette size of the skinning shaders.
const MaxJoints = 64

// MaxLights is the directional light count of the mesh shader.
const MaxLights = 4

// drawItem is one visible mesh with its world transform.
type drawItem struct {
	node *scene.Node
	mesh *scene.Mesh
}

// visibleMeshes lists drawable meshes under root. Hidden subtrees and meshes
// without positions are skipped.
func visibleMeshes(root *scene.Node) []drawItem {
	var items []drawItem
	root.TraverseVisible(func(n *scene.Node) {
		m := n.Mesh
		if m == nil || m.Geometry == nil || m.Geometry.VertexCount() == 0 || m.Geometry.Disposed() {
			return
		}
		items = append(items, drawItem{node: n, mesh: m})
	})
	return items
}

// casterBounds returns the world box of every shadow-casting item.
func casterBounds(items []drawItem) math.Box3 {
	box := math.EmptyBox()
	for _, it := range items {
		if it.mesh.CastShadow {
			box.Union(it.mesh.Geometry.Bounds().Transform(it.node.World()))
		}
	}
	return box
}

// jointPalette flattens the skinning matrices of a mesh for upload. Joints
// past MaxJoints are dropped.
func jointPalette(skin *scene.Skin, meshWorld math.Mat4) []float32 {
	mats := skin.JointMatrices(meshWorld)
	if len(mats) > MaxJoints {
		mats = mats[:MaxJoints]
	}
	out := make([]float32, 0, len(mats)*16)
	for _, m := range mats {
		out = append(out, m[:]...)
	}
	return out
}

// lightRig is the light uniform block for one frame.
type lightRig struct {
	ambient     [3]float32
	count       int32
	dirs        []float32
	radiance    []float32
	shadowIndex int32 // -1 when no light casts shadows
}

func buildLightRig(sc *scene.Scene) lightRig {
	rig := lightRig{shadowIndex: -1}
	if sc.Ambient != nil {
		rig.ambient = sc.Ambient.Color.Scale(sc.Ambient.Intensity).Array()
	}
	for _, l := range sc.Lights {
		if rig.count == MaxLights {
			break
		}
		if l.CastShadow && rig.shadowIndex < 0 {
			rig.shadowIndex = rig.count
		}
		d := l.Direction().Array()
		r := l.Radiance().Array()
		rig.dirs = append(rig.dirs, d[:]...)
		rig.radiance = append(rig.radiance, r[:]...)
		rig.count++
	}
	return rig
}
