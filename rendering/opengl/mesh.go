package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"dynastyglobe/territory"
)

// meshBuffers is one uploaded indexed mesh.
type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
}

// interleave packs a patch mesh as position/normal pairs, six floats per vertex.
func interleave(m *territory.Mesh) []float32 {
	out := make([]float32, 0, len(m.Positions)*6)
	for i, p := range m.Positions {
		n := m.Normals[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	return out
}

// upload creates a VAO with float attributes of the given component sizes.
func upload(vertices []float32, indices []uint32, layout ...int32) meshBuffers {
	var b meshBuffers
	if len(vertices) == 0 || len(indices) == 0 {
		return b
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	var stride int32
	for _, n := range layout {
		stride += n
	}
	stride *= 4

	offset := 0
	for i, n := range layout {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), n, gl.FLOAT, false, stride, uintptr(offset))
		offset += int(n) * 4
	}

	gl.BindVertexArray(0)
	b.count = int32(len(indices))
	return b
}

func (b *meshBuffers) draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.count, gl.UNSIGNED_INT, nil)
}

func (b *meshBuffers) release() {
	if b.vao == 0 {
		return
	}
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteBuffers(1, &b.ebo)
	gl.DeleteVertexArrays(1, &b.vao)
	*b = meshBuffers{}
}
