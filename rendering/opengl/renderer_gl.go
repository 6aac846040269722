// Package opengl renders the globe and its territory overlay in a native
// window.
package opengl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"dynastyglobe/core"
	"dynastyglobe/logging"
	"dynastyglobe/rendering/opengl/overlay"
	"dynastyglobe/rendering/opengl/shaders"
	"dynastyglobe/territory"
)

// Options configures the window and the globe mesh.
type Options struct {
	Width          int
	Height         int
	Title          string
	GlobeRadius    float32
	Segments       int
	CameraDistance float32
	FOV            float32

	// Keys labels the timeline cells, one per selectable slot. No timeline
	// is drawn when empty.
	Keys []string

	// OnSelect is called with the zero-based slot for keys 1-9.
	OnSelect func(slot int)
	// OnClear is called for the C key.
	OnClear func()
}

// Renderer is a globe.Scene backed by an OpenGL window. All methods except
// Add and Remove must be called from the thread that created it.
type Renderer struct {
	window *glfw.Window
	opts   Options
	camera *Camera

	globeProgram   uint32
	heatmapProgram uint32
	globeMesh      meshBuffers
	timeline       *overlay.Timeline

	rotation float32

	// Groups attached by the engine. Uploads happen lazily in Draw because
	// Add may be called from a selection goroutine.
	mu       sync.Mutex
	attached []*territory.Group
	uploaded map[*territory.Patch]meshBuffers
	retired  []*territory.Group

	mouseDown  bool
	dragged    bool
	lastMouseX float64
	lastMouseY float64
}

// NewRenderer opens a window and compiles the globe and heatmap programs.
// The caller must have locked the OS thread.
func NewRenderer(opts Options) (*Renderer, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logging.Info().Str("version", gl.GoStr(gl.GetString(gl.VERSION))).Msg("OpenGL context ready")

	// Framebuffer size differs from window size on HiDPI displays.
	fbw, fbh := window.GetFramebufferSize()

	r := &Renderer{
		window:   window,
		opts:     opts,
		camera:   NewCamera(opts.CameraDistance, opts.FOV, fbw, fbh),
		uploaded: make(map[*territory.Patch]meshBuffers),
	}
	r.camera.MinDistance = opts.GlobeRadius * 1.2

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.02, 0.02, 0.06, 1.0)
	gl.Viewport(0, 0, int32(fbw), int32(fbh))

	if r.globeProgram, err = shaders.Compile(shaders.Globe()); err != nil {
		r.Terminate()
		return nil, err
	}
	if r.heatmapProgram, err = shaders.Compile(shaders.Heatmap()); err != nil {
		r.Terminate()
		return nil, err
	}

	if len(opts.Keys) > 0 {
		if r.timeline, err = overlay.NewTimeline(opts.Keys); err != nil {
			r.Terminate()
			return nil, err
		}
	}

	vertices, indices := core.GenerateGlobeData(opts.GlobeRadius, opts.Segments, opts.Segments)
	r.globeMesh = upload(vertices, indices, 3, 3, 2)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(width, height)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		r.onKey(key, action)
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		r.camera.Zoom(yoff)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		r.onMouseButton(button, action)
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		r.onMouseMove(xpos, ypos)
	})

	return r, nil
}

// Run calls tick once per frame, capped at fps, until the window closes or
// ctx is cancelled.
func (r *Renderer) Run(ctx context.Context, fps int, tick func()) {
	frame := time.Second / time.Duration(max(fps, 1))
	for !r.window.ShouldClose() {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()

		tick()
		glfw.PollEvents()

		if elapsed := time.Since(start); elapsed < frame {
			time.Sleep(frame - elapsed)
		}
	}
}

func (r *Renderer) onResize(width, height int) {
	r.camera.Resize(width, height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *Renderer) onKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}

	switch {
	case key == glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case key >= glfw.Key1 && key <= glfw.Key9:
		if r.opts.OnSelect != nil {
			r.opts.OnSelect(int(key - glfw.Key1))
		}
	case key == glfw.KeyC:
		if r.opts.OnClear != nil {
			r.opts.OnClear()
		}
	}
}

func (r *Renderer) onMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		r.mouseDown = true
		r.dragged = false
		r.lastMouseX, r.lastMouseY = r.window.GetCursorPos()
	case glfw.Release:
		r.mouseDown = false
		if !r.dragged {
			r.handleClick(r.lastMouseX, r.lastMouseY)
		}
	}
}

func (r *Renderer) onMouseMove(xpos, ypos float64) {
	if !r.mouseDown {
		return
	}
	dx := float32(xpos - r.lastMouseX)
	dy := float32(ypos - r.lastMouseY)
	if dx != 0 || dy != 0 {
		r.dragged = true
	}
	r.camera.Orbit(dx, dy)
	r.lastMouseX = xpos
	r.lastMouseY = ypos
}

// Terminate releases GPU resources and closes the window.
func (r *Renderer) Terminate() {
	r.mu.Lock()
	for _, b := range r.uploaded {
		b.release()
	}
	r.uploaded = map[*territory.Patch]meshBuffers{}
	r.attached = nil
	r.retired = nil
	r.mu.Unlock()

	r.globeMesh.release()
	if r.timeline != nil {
		r.timeline.Delete()
	}
	if r.globeProgram != 0 {
		gl.DeleteProgram(r.globeProgram)
	}
	if r.heatmapProgram != 0 {
		gl.DeleteProgram(r.heatmapProgram)
	}
	r.window.Destroy()
	glfw.Terminate()
}

func setMat4(program uint32, name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(shaders.Uniform(program, name), 1, false, &m[0])
}
