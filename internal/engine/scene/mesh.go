package scene

import (
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Geometry holds vertex data for one drawable primitive.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32 // nil for unindexed geometry

	// Skinning attributes, present only on skinned primitives.
	Joints  [][4]uint16
	Weights [][4]float32

	bounds    *math.Box3
	onDispose []func()
	disposed  bool
}

// VertexCount returns the number of vertex positions.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// Indexed reports whether the geometry draws through an index buffer.
func (g *Geometry) Indexed() bool {
	return g.Indices != nil
}

// TriangleCount returns index count / 3 for indexed geometry, otherwise vertex
// count / 3. It is not rounded so that totals can be summed before rounding.
func (g *Geometry) TriangleCount() float64 {
	if g.Indexed() {
		return float64(len(g.Indices)) / 3
	}
	return float64(len(g.Positions)) / 3
}

// Bounds returns the local-space bounding box of the positions.
func (g *Geometry) Bounds() math.Box3 {
	if g.bounds == nil {
		b := math.EmptyBox()
		for _, p := range g.Positions {
			b.ExpandByPoint(math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		}
		g.bounds = &b
	}
	return *g.bounds
}

// OnDispose registers fn to run when the geometry is disposed. Renderers use it to
// free GPU buffers they created for the geometry.
func (g *Geometry) OnDispose(fn func()) {
	if g.disposed {
		fn()
		return
	}
	g.onDispose = append(g.onDispose, fn)
}

// Dispose runs the registered dispose hooks once. Later calls do nothing.
func (g *Geometry) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	hooks := g.onDispose
	g.onDispose = nil
	for _, fn := range hooks {
		fn()
	}
}

// Disposed reports whether Dispose has run.
func (g *Geometry) Disposed() bool {
	return g.disposed
}

// Skin binds a skinned mesh to its joint nodes.
type Skin struct {
	Joints      []*Node
	InverseBind []math.Mat4
}

// JointMatrices returns the per-joint skinning matrices relative to the mesh node.
// World matrices must be current.
func (s *Skin) JointMatrices(meshWorld math.Mat4) []math.Mat4 {
	inv := meshWorld.Inverse()
	out := make([]math.Mat4, len(s.Joints))
	for i, j := range s.Joints {
		bind := math.Identity()
		if i < len(s.InverseBind) {
			bind = s.InverseBind[i]
		}
		out[i] = inv.Mul(j.World()).Mul(bind)
	}
	return out
}

// Mesh is a drawable primitive with one or more materials.
type Mesh struct {
	Geometry      *Geometry
	Materials     []*Material
	Skin          *Skin
	CastShadow    bool
	ReceiveShadow bool
}

// NewMesh creates a mesh with the given geometry and materials.
func NewMesh(geom *Geometry, materials ...*Material) *Mesh {
	return &Mesh{
		Geometry:  geom,
		Materials: materials,
	}
}
