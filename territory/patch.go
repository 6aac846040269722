package territory

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderProgram is a vertex/fragment source pair. The sources are opaque to
// this package; the renderer compiles them.
type ShaderProgram struct {
	Name     string
	Vertex   string
	Fragment string
}

// Uniforms are the values a patch feeds its shader each frame.
type Uniforms struct {
	Time      float32
	Intensity float32
}

// Material binds a shader program to a patch.
type Material struct {
	Program     ShaderProgram
	Intensity   float64
	Transparent bool
	DoubleSided bool
}

// Patch is one extruded ring.
type Patch struct {
	Feature  string
	Index    int // position within the owning group
	Mesh     *Mesh
	Offset   mgl32.Vec3 // model translation applied when drawn
	Material Material

	ticks uint64
	time  float64
}

// Advance moves the time uniform forward one frame. Time is recomputed from
// the frame count so that after N frames it is exactly N*step.
func (p *Patch) Advance(step float64) {
	p.ticks++
	p.time = float64(p.ticks) * step
}

// Time returns the current value of the time uniform.
func (p *Patch) Time() float64 {
	return p.time
}

// Ticks returns how many frames this patch has been animated for.
func (p *Patch) Ticks() uint64 {
	return p.ticks
}

// Uniforms returns the shader uniforms for the current frame.
func (p *Patch) Uniforms() Uniforms {
	return Uniforms{
		Time:      float32(p.time),
		Intensity: float32(p.Material.Intensity),
	}
}

// Model returns the model matrix of the patch.
func (p *Patch) Model() mgl32.Mat4 {
	return mgl32.Translate3D(p.Offset.X(), p.Offset.Y(), p.Offset.Z())
}
