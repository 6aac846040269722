package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"dynastyglobe/globe"
	"dynastyglobe/logging"
	"dynastyglobe/rendering/opengl/shaders"
	"dynastyglobe/territory"
)

var _ globe.Scene = (*Renderer)(nil)

// lightDir matches a directional light up and to the right of the camera.
var lightDir = mgl32.Vec3{5, 3, 5}.Normalize()

// Add queues g for upload on the next Draw.
func (r *Renderer) Add(g *territory.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached = append(r.attached, g)
}

// Remove detaches g; its buffers are released on the next Draw.
func (r *Renderer) Remove(g *territory.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.attached {
		if a == g {
			r.attached = append(r.attached[:i], r.attached[i+1:]...)
			r.retired = append(r.retired, g)
			return
		}
	}
}

// Draw renders one frame and swaps buffers.
func (r *Renderer) Draw(f globe.Frame) {
	r.mu.Lock()
	r.releaseRetired()
	groups := append([]*territory.Group(nil), r.attached...)
	r.uploadPending(groups)
	r.mu.Unlock()

	r.rotation = float32(f.Rotation)

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := r.camera.View()
	proj := r.camera.Projection()

	gl.UseProgram(r.globeProgram)
	setMat4(r.globeProgram, shaders.UniformModel, mgl32.HomogRotate3DY(r.rotation))
	setMat4(r.globeProgram, shaders.UniformView, view)
	setMat4(r.globeProgram, shaders.UniformProjection, proj)
	gl.Uniform3fv(shaders.Uniform(r.globeProgram, shaders.UniformLightDir), 1, &lightDir[0])
	r.globeMesh.draw()

	if len(groups) > 0 {
		r.drawPatches(groups, view, proj)
	}

	if r.timeline != nil {
		r.timeline.Draw(f.Key, r.camera.Width, r.camera.Height)
	}

	gl.BindVertexArray(0)
	r.window.SwapBuffers()
}

func (r *Renderer) drawPatches(groups []*territory.Group, view, proj mgl32.Mat4) {
	gl.UseProgram(r.heatmapProgram)
	setMat4(r.heatmapProgram, shaders.UniformView, view)
	setMat4(r.heatmapProgram, shaders.UniformProjection, proj)

	timeLoc := shaders.Uniform(r.heatmapProgram, shaders.UniformTime)
	intensityLoc := shaders.Uniform(r.heatmapProgram, shaders.UniformIntensity)

	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.mu.Lock()
	for _, g := range groups {
		for _, p := range g.Patches {
			b, ok := r.uploaded[p]
			if !ok {
				continue
			}
			applyState(materialState(p.Material))
			u := p.Uniforms()
			setMat4(r.heatmapProgram, shaders.UniformModel, p.Model())
			gl.Uniform1f(timeLoc, u.Time)
			gl.Uniform1f(intensityLoc, u.Intensity)
			b.draw()
		}
	}
	r.mu.Unlock()

	applyState(defaultState)
}

// renderState is the fixed-function state a patch is drawn with.
type renderState struct {
	Blend      bool
	DepthWrite bool
	Cull       bool
}

// defaultState is what the globe pass expects.
var defaultState = renderState{Blend: false, DepthWrite: true, Cull: true}

// materialState maps a material's flags onto GL state. Transparent patches
// blend and leave the depth buffer alone so overlapping rings all show.
func materialState(m territory.Material) renderState {
	return renderState{
		Blend:      m.Transparent,
		DepthWrite: !m.Transparent,
		Cull:       !m.DoubleSided,
	}
}

func applyState(s renderState) {
	setCap(gl.BLEND, s.Blend)
	setCap(gl.CULL_FACE, s.Cull)
	gl.DepthMask(s.DepthWrite)
}

func setCap(c uint32, on bool) {
	if on {
		gl.Enable(c)
	} else {
		gl.Disable(c)
	}
}

// uploadPending must be called with mu held.
func (r *Renderer) uploadPending(groups []*territory.Group) {
	for _, g := range groups {
		n := 0
		for _, p := range g.Patches {
			if _, ok := r.uploaded[p]; ok {
				continue
			}
			r.uploaded[p] = upload(interleave(p.Mesh), p.Mesh.Indices, 3, 3)
			n++
		}
		if n > 0 {
			logging.Debug().Str("dynasty", g.Key).Int("patches", n).Msg("uploaded territory meshes")
		}
	}
}

// releaseRetired must be called with mu held.
func (r *Renderer) releaseRetired() {
	for _, g := range r.retired {
		for _, p := range g.Patches {
			if b, ok := r.uploaded[p]; ok {
				b.release()
				delete(r.uploaded, p)
			}
		}
	}
	r.retired = r.retired[:0]
}
