// Package overlay draws the screen-space dynasty timeline over the globe.
package overlay

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"dynastyglobe/rendering/opengl/shaders"
	"dynastyglobe/territory"
)

// Simple overlay shader for colored rectangles
const overlayVertexShader = `
#version 410 core

const vec2 positions[4] = vec2[](
    vec2(0.0, 0.0),
    vec2(1.0, 0.0),
    vec2(0.0, 1.0),
    vec2(1.0, 1.0)
);

uniform vec2 offset;
uniform vec2 size;
uniform vec2 screenSize;

void main() {
    vec2 pos = positions[gl_VertexID];
    vec2 pixelPos = offset + pos * size;
    vec2 ndcPos = (pixelPos / screenSize) * 2.0 - 1.0;
    ndcPos.y = -ndcPos.y; // Flip Y for top-left origin
    gl_Position = vec4(ndcPos, 0.0, 1.0);
}
`

const overlayFragmentShader = `
#version 410 core

uniform vec4 color;
out vec4 outColor;

void main() {
    outColor = color;
}
`

// Program returns the rectangle program.
func Program() territory.ShaderProgram {
	return territory.ShaderProgram{
		Name:     "overlay",
		Vertex:   overlayVertexShader,
		Fragment: overlayFragmentShader,
	}
}

// Timeline draws one cell per dynasty along the bottom of the window and
// highlights the active one.
type Timeline struct {
	Program uint32
	VAO     uint32
	keys    []string
}

// NewTimeline compiles the overlay program. Requires a current GL context.
func NewTimeline(keys []string) (*Timeline, error) {
	program, err := shaders.Compile(Program())
	if err != nil {
		return nil, err
	}

	t := &Timeline{Program: program, keys: keys}
	// Vertices come from gl_VertexID; the VAO is empty.
	gl.GenVertexArrays(1, &t.VAO)
	return t, nil
}

// Draw renders the strip for a width x height framebuffer.
func (t *Timeline) Draw(activeKey string, width, height int) {
	cells := Layout(len(t.keys), width, height)
	if len(cells) == 0 {
		return
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(t.Program)
	gl.BindVertexArray(t.VAO)
	gl.Uniform2f(shaders.Uniform(t.Program, "screenSize"), float32(width), float32(height))

	offsetLoc := shaders.Uniform(t.Program, "offset")
	sizeLoc := shaders.Uniform(t.Program, "size")
	colorLoc := shaders.Uniform(t.Program, "color")

	for i, c := range cells {
		color := CellColor(t.keys[i] == activeKey)
		gl.Uniform2f(offsetLoc, c.X, c.Y)
		gl.Uniform2f(sizeLoc, c.W, c.H)
		gl.Uniform4fv(colorLoc, 1, &color[0])
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Delete releases the program and VAO.
func (t *Timeline) Delete() {
	if t.VAO != 0 {
		gl.DeleteVertexArrays(1, &t.VAO)
	}
	if t.Program != 0 {
		gl.DeleteProgram(t.Program)
	}
}

// CellColor is the fill for a timeline cell.
func CellColor(active bool) mgl32.Vec4 {
	if active {
		return mgl32.Vec4{1.0, 0.3, 0.0, 0.9}
	}
	return mgl32.Vec4{0.1, 0.1, 0.3, 0.6}
}
