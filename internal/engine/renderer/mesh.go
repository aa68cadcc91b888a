package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Attribute locations shared by the mesh and depth shaders.
const (
	attrPosition = 0
	attrNormal   = 1
	attrUV       = 2
	attrJoints   = 3
	attrWeights  = 4
)

// vertexData is the flattened attribute layout uploaded for one geometry.
type vertexData struct {
	positions []float32
	normals   []float32
	uvs       []float32
	joints    []uint16
	weights   []float32
	indices   []uint32
}

// buildVertexData flattens g for upload. Missing normals are computed and
// missing texture coordinates are zero. Skinning attributes are kept only when
// both are present for every vertex.
func buildVertexData(g *scene.Geometry) vertexData {
	n := len(g.Positions)
	d := vertexData{
		positions: make([]float32, 0, n*3),
		normals:   make([]float32, 0, n*3),
		uvs:       make([]float32, n*2),
		indices:   g.Indices,
	}
	for _, p := range g.Positions {
		d.positions = append(d.positions, p[:]...)
	}

	normals := g.Normals
	if len(normals) != n {
		normals = computeNormals(g.Positions, g.Indices)
	}
	for _, v := range normals {
		d.normals = append(d.normals, v[:]...)
	}

	if len(g.UVs) == n {
		for i, uv := range g.UVs {
			d.uvs[i*2], d.uvs[i*2+1] = uv[0], uv[1]
		}
	}

	if len(g.Joints) == n && len(g.Weights) == n {
		d.joints = make([]uint16, 0, n*4)
		d.weights = make([]float32, 0, n*4)
		for i := range g.Joints {
			d.joints = append(d.joints, g.Joints[i][:]...)
			d.weights = append(d.weights, g.Weights[i][:]...)
		}
	}
	return d
}

// computeNormals returns area-weighted vertex normals.
func computeNormals(pos [][3]float32, indices []uint32) [][3]float32 {
	acc := make([]math.Vec3, len(pos))
	vec := func(i uint32) math.Vec3 { p := pos[i]; return math.V3(p[0], p[1], p[2]) }

	face := func(a, b, c uint32) {
		if int(a) >= len(pos) || int(b) >= len(pos) || int(c) >= len(pos) {
			return
		}
		pa := vec(a)
		n := vec(b).Sub(pa).Cross(vec(c).Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	if indices != nil {
		for i := 0; i+2 < len(indices); i += 3 {
			face(indices[i], indices[i+1], indices[i+2])
		}
	} else {
		for i := 0; i+2 < len(pos); i += 3 {
			face(uint32(i), uint32(i+1), uint32(i+2))
		}
	}

	out := make([][3]float32, len(pos))
	for i, v := range acc {
		if v.Length() == 0 {
			out[i] = [3]float32{0, 1, 0}
			continue
		}
		out[i] = v.Normalize().Array()
	}
	return out
}

// gpuMesh holds the buffers uploaded for one geometry.
type gpuMesh struct {
	vao     uint32
	vbos    []uint32
	ebo     uint32
	count   int32
	indexed bool
	skinned bool
}

func uploadMesh(g *scene.Geometry) *gpuMesh {
	d := buildVertexData(g)
	m := &gpuMesh{
		indexed: d.indices != nil,
		skinned: d.joints != nil,
		count:   int32(len(g.Positions)),
	}
	if m.indexed {
		m.count = int32(len(d.indices))
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	m.floats(attrPosition, 3, d.positions)
	m.floats(attrNormal, 3, d.normals)
	m.floats(attrUV, 2, d.uvs)
	if m.skinned {
		m.buffer(len(d.joints)*2, d.joints)
		gl.VertexAttribIPointer(attrJoints, 4, gl.UNSIGNED_SHORT, 0, nil)
		gl.EnableVertexAttribArray(attrJoints)
		m.floats(attrWeights, 4, d.weights)
	}

	if m.indexed && len(d.indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(d.indices)*4, gl.Ptr(d.indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return m
}

func (m *gpuMesh) buffer(size int, data any) {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(data), gl.STATIC_DRAW)
	m.vbos = append(m.vbos, vbo)
}

func (m *gpuMesh) floats(loc uint32, size int32, data []float32) {
	if len(data) == 0 {
		return
	}
	m.buffer(len(data)*4, data)
	gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(loc)
}

func (m *gpuMesh) draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
}

func (m *gpuMesh) free() {
	if len(m.vbos) > 0 {
		gl.DeleteBuffers(int32(len(m.vbos)), &m.vbos[0])
		m.vbos = nil
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}
