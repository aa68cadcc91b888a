// Package scene provides the in-memory scene graph drawn by the viewer: nodes,
// meshes, materials, lights and the debug helpers (ground grid, skeleton overlay).
package scene

import (
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Node is a transform in the scene hierarchy. A node with a Mesh is drawable;
// a node flagged Bone is a skeleton joint.
type Node struct {
	Name string

	// Local transform. Ignored when Matrix is set.
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	Matrix   *math.Mat4

	Visible bool
	Bone    bool
	Mesh    *Mesh

	parent   *Node
	children []*Node
	world    math.Mat4
}

// NewNode creates a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:  true,
		world:    math.Identity(),
	}
}

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches child from n. It is a no-op if child is not a direct child.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// World returns the world matrix computed by the last UpdateWorld.
func (n *Node) World() math.Mat4 {
	return n.world
}

// WorldPosition returns the translation of the world matrix.
func (n *Node) WorldPosition() math.Vec3 {
	return n.world.Translation()
}

// UpdateWorld recomputes world matrices for n and its subtree, using the parent's
// current world matrix (identity for a root).
func (n *Node) UpdateWorld() {
	parent := math.Identity()
	if n.parent != nil {
		parent = n.parent.world
	}
	n.updateWorld(parent)
}

func (n *Node) updateWorld(parent math.Mat4) {
	n.world = parent.Mul(n.LocalMatrix())
	for _, c := range n.children {
		c.updateWorld(n.world)
	}
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseVisible is like Traverse but skips hidden subtrees.
func (n *Node) TraverseVisible(fn func(*Node)) {
	if !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.TraverseVisible(fn)
	}
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}

// Dispose releases the geometry of every mesh in the subtree.
func (n *Node) Dispose() {
	n.Traverse(func(c *Node) {
		if c.Mesh != nil && c.Mesh.Geometry != nil {
			c.Mesh.Geometry.Dispose()
		}
	})
}
