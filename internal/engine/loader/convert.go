// Package loader turns glTF/GLB documents into scene graphs and animation clips.
package loader

import (
	"errors"
	"fmt"
	"image"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/anim"
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/internal/logger"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// ErrNoScene is returned for documents with nothing to display.
var ErrNoScene = errors.New("document has no scene")

// Model is a converted document. It is built on a worker goroutine and handed
// to the event loop; nothing else references it until then.
type Model struct {
	Root  *scene.Node
	Clips []*anim.Clip
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

type converter struct {
	doc       *gltf.Document
	read      ResourceReader
	nodes     []*scene.Node
	materials map[int]*scene.Material
	meshes    map[int][]*scene.Geometry
	images    map[int]*image.RGBA
}

// Convert builds a model from a decoded document. Only embedded images are
// read; see ConvertWith.
func Convert(doc *gltf.Document) (*Model, error) {
	return ConvertWith(doc, nil)
}

// ConvertWith builds a model, reading external images through read.
func ConvertWith(doc *gltf.Document, read ResourceReader) (*Model, error) {
	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}
	if err := checkAccessors(doc); err != nil {
		return nil, err
	}

	c := &converter{
		doc:       doc,
		read:      read,
		nodes:     make([]*scene.Node, len(doc.Nodes)),
		materials: make(map[int]*scene.Material),
		meshes:    make(map[int][]*scene.Geometry),
		images:    make(map[int]*image.RGBA),
	}

	// Create every node first so children and skins can reference them
	for i, n := range doc.Nodes {
		c.nodes[i] = newNode(n, i)
	}
	for i, n := range doc.Nodes {
		for _, child := range n.Children {
			if child < 0 || child >= len(c.nodes) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, child)
			}
			c.nodes[i].Add(c.nodes[child])
		}
	}
	for _, s := range doc.Skins {
		for _, j := range s.Joints {
			if j >= 0 && j < len(c.nodes) {
				c.nodes[j].Bone = true
			}
		}
	}
	for i, n := range doc.Nodes {
		if n.Mesh == nil {
			continue
		}
		if err := c.attachMesh(c.nodes[i], n); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, n.Name, err)
		}
	}

	root := scene.NewNode("model")
	for _, r := range roots {
		root.Add(c.nodes[r])
	}

	clips, err := c.clips()
	if err != nil {
		return nil, err
	}
	return &Model{Root: root, Clips: clips}, nil
}

func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) == 0 {
		if len(doc.Nodes) == 0 {
			return nil, ErrNoScene
		}
		// No scene list: every node without a parent is a root
		parented := make([]bool, len(doc.Nodes))
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				if c >= 0 && c < len(parented) {
					parented[c] = true
				}
			}
		}
		var roots []int
		for i, p := range parented {
			if !p {
				roots = append(roots, i)
			}
		}
		return roots, nil
	}

	idx := 0
	if doc.Scene != nil {
		idx = *doc.Scene
	}
	if idx < 0 || idx >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d: %w", idx, ErrNoScene)
	}
	roots := doc.Scenes[idx].Nodes
	if len(roots) == 0 {
		return nil, ErrNoScene
	}
	for _, r := range roots {
		if r < 0 || r >= len(doc.Nodes) {
			return nil, fmt.Errorf("scene root %d out of range", r)
		}
	}
	return roots, nil
}

func newNode(n *gltf.Node, index int) *scene.Node {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	node := scene.NewNode(name)

	if m := n.MatrixOrDefault(); m != identity {
		mat := math.FromFloat64(m)
		node.Matrix = &mat
		return node
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	node.Position = math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}
	node.Rotation = math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	node.Scale = math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}
	return node
}

// attachMesh gives node its mesh. A single-primitive mesh is attached directly;
// each primitive of a multi-primitive mesh becomes a child node.
func (c *converter) attachMesh(node *scene.Node, n *gltf.Node) error {
	idx := *n.Mesh
	if idx < 0 || idx >= len(c.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", idx)
	}
	gm := c.doc.Meshes[idx]

	geoms, err := c.geometries(idx)
	if err != nil {
		return fmt.Errorf("mesh %s: %w", gm.Name, err)
	}

	var skin *scene.Skin
	if n.Skin != nil {
		if skin, err = c.skin(*n.Skin); err != nil {
			return err
		}
	}

	var meshes []*scene.Mesh
	for i, prim := range gm.Primitives {
		if geoms[i] == nil {
			continue
		}
		m := scene.NewMesh(geoms[i], c.material(prim.Material))
		m.Skin = skin
		meshes = append(meshes, m)
	}

	if len(meshes) == 1 {
		node.Mesh = meshes[0]
		return nil
	}
	for i, m := range meshes {
		child := scene.NewNode(fmt.Sprintf("%s_primitive_%d", node.Name, i))
		child.Mesh = m
		node.Add(child)
	}
	return nil
}

// geometries reads every triangle primitive of a mesh once; nodes that share
// the mesh share its geometry. Entries for non-triangle primitives are nil.
func (c *converter) geometries(meshIdx int) ([]*scene.Geometry, error) {
	if g, ok := c.meshes[meshIdx]; ok {
		return g, nil
	}
	gm := c.doc.Meshes[meshIdx]
	out := make([]*scene.Geometry, len(gm.Primitives))
	for i, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			logger.Debug("skipping non-triangle primitive",
				zap.String("mesh", gm.Name), zap.Int("primitive", i))
			continue
		}
		g, err := c.geometry(prim)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", i, err)
		}
		out[i] = g
	}
	c.meshes[meshIdx] = out
	return out, nil
}

func (c *converter) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	g := &scene.Geometry{}
	var err error

	if idx, ok := prim.Attributes[gltf.POSITION]; ok {
		if g.Positions, err = modeler.ReadPosition(c.doc, acc(c.doc, idx), nil); err != nil {
			return nil, fmt.Errorf("reading positions: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if g.Normals, err = modeler.ReadNormal(c.doc, acc(c.doc, idx), nil); err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if g.UVs, err = modeler.ReadTextureCoord(c.doc, acc(c.doc, idx), nil); err != nil {
			return nil, fmt.Errorf("reading texture coordinates: %w", err)
		}
	}
	if prim.Indices != nil {
		if g.Indices, err = modeler.ReadIndices(c.doc, acc(c.doc, *prim.Indices), nil); err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.JOINTS_0]; ok {
		if g.Joints, err = modeler.ReadJoints(c.doc, acc(c.doc, idx), nil); err != nil {
			return nil, fmt.Errorf("reading joints: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
		if g.Weights, err = modeler.ReadWeights(c.doc, acc(c.doc, idx), nil); err != nil {
			return nil, fmt.Errorf("reading weights: %w", err)
		}
	}
	return g, nil
}

func (c *converter) material(idx *int) *scene.Material {
	if idx == nil || *idx < 0 || *idx >= len(c.doc.Materials) {
		return scene.NewMaterial("default", math.Color{R: 1, G: 1, B: 1})
	}
	if m, ok := c.materials[*idx]; ok {
		return m
	}

	gm := c.doc.Materials[*idx]
	color := math.Color{R: 1, G: 1, B: 1}
	var tex *image.RGBA
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			color = math.Color{R: float32(f[0]), G: float32(f[1]), B: float32(f[2])}
		}
		tex = c.baseColorMap(pbr.BaseColorTexture)
	}
	m := scene.NewMaterial(gm.Name, color)
	m.Map = tex
	m.DoubleSided = gm.DoubleSided
	c.materials[*idx] = m
	return m
}

func (c *converter) skin(idx int) (*scene.Skin, error) {
	if idx < 0 || idx >= len(c.doc.Skins) {
		return nil, fmt.Errorf("skin index %d out of range", idx)
	}
	gs := c.doc.Skins[idx]

	s := &scene.Skin{
		Joints:      make([]*scene.Node, len(gs.Joints)),
		InverseBind: make([]math.Mat4, len(gs.Joints)),
	}
	for i, j := range gs.Joints {
		if j < 0 || j >= len(c.nodes) {
			return nil, fmt.Errorf("skin %d: joint %d out of range", idx, j)
		}
		s.Joints[i] = c.nodes[j]
		s.InverseBind[i] = math.Identity()
	}

	if gs.InverseBindMatrices != nil {
		data, err := modeler.ReadAccessor(c.doc, acc(c.doc, *gs.InverseBindMatrices), nil)
		if err != nil {
			return nil, fmt.Errorf("skin %d: reading inverse bind matrices: %w", idx, err)
		}
		mats, ok := data.([][4][4]float32)
		if !ok {
			return nil, fmt.Errorf("skin %d: inverse bind matrices have type %T", idx, data)
		}
		for i := range mats {
			if i >= len(s.InverseBind) {
				break
			}
			// Each inner array is one column
			var m math.Mat4
			for col := 0; col < 4; col++ {
				copy(m[col*4:col*4+4], mats[i][col][:])
			}
			s.InverseBind[i] = m
		}
	}
	return s, nil
}

func acc(doc *gltf.Document, idx int) *gltf.Accessor {
	return doc.Accessors[idx]
}

// checkAccessors verifies every accessor reference before any data is read.
func checkAccessors(doc *gltf.Document) error {
	n := len(doc.Accessors)
	bad := func(idx int) bool { return idx < 0 || idx >= n || doc.Accessors[idx] == nil }

	for mi, m := range doc.Meshes {
		for pi, p := range m.Primitives {
			for name, idx := range p.Attributes {
				if bad(idx) {
					return fmt.Errorf("mesh %d primitive %d: %s accessor %d out of range", mi, pi, name, idx)
				}
			}
			if p.Indices != nil && bad(*p.Indices) {
				return fmt.Errorf("mesh %d primitive %d: index accessor %d out of range", mi, pi, *p.Indices)
			}
		}
	}
	for si, s := range doc.Skins {
		if s.InverseBindMatrices != nil && bad(*s.InverseBindMatrices) {
			return fmt.Errorf("skin %d: accessor %d out of range", si, *s.InverseBindMatrices)
		}
	}
	for ai, a := range doc.Animations {
		for si, s := range a.Samplers {
			if bad(s.Input) || bad(s.Output) {
				return fmt.Errorf("animation %d sampler %d: accessor out of range", ai, si)
			}
		}
	}
	return nil
}
