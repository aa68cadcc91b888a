package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/assetdeck/internal/engine/scene"
)

const lineVertexSize = int32(unsafe.Sizeof(scene.LineVertex{}))

// lineBatch is a reusable buffer of colored line segments.
type lineBatch struct {
	vao, vbo uint32
	count    int32
	capacity int
}

func newLineBatch() *lineBatch {
	b := &lineBatch{}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, lineVertexSize, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, lineVertexSize, 12)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)
	return b
}

// set replaces the batch contents. The buffer only grows.
func (b *lineBatch) set(vertices []scene.LineVertex) {
	b.count = int32(len(vertices))
	if len(vertices) == 0 {
		return
	}
	size := len(vertices) * int(lineVertexSize)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if len(vertices) > b.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
		b.capacity = len(vertices)
		return
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vertices))
}

func (b *lineBatch) draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.LINES, 0, b.count)
}

func (b *lineBatch) free() {
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
}
