package opengl

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits the origin at a fixed distance. There is no pan.
type Camera struct {
	Distance    float32
	MinDistance float32
	MaxDistance float32
	FOV         float32 // vertical, degrees
	Width       int
	Height      int

	rotationX float32 // azimuth
	rotationY float32 // elevation, clamped to ±1.5
}

// NewCamera places the camera on the +Z axis looking at the origin.
func NewCamera(distance, fov float32, width, height int) *Camera {
	return &Camera{
		Distance:    distance,
		MinDistance: distance * 0.4,
		MaxDistance: distance * 4,
		FOV:         fov,
		Width:       width,
		Height:      height,
		rotationX:   math.Pi / 2,
	}
}

// Position converts the orbit angles to a world position.
func (c *Camera) Position() mgl32.Vec3 {
	cx := float64(c.rotationX)
	cy := float64(c.rotationY)
	x := c.Distance * float32(math.Cos(cy)*math.Cos(cx))
	y := c.Distance * float32(math.Sin(cy))
	z := c.Distance * float32(math.Cos(cy)*math.Sin(cx))
	return mgl32.Vec3{x, y, z}
}

// View looks at the origin with +Y up.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, 1, c.MaxDistance*2)
}

// Orbit rotates by a mouse drag of (dx, dy) pixels.
func (c *Camera) Orbit(dx, dy float32) {
	const sensitivity = 0.008

	c.rotationX += dx * sensitivity
	c.rotationY += dy * sensitivity

	if c.rotationY > 1.5 {
		c.rotationY = 1.5
	}
	if c.rotationY < -1.5 {
		c.rotationY = -1.5
	}
}

// Zoom scales the distance by one scroll step.
func (c *Camera) Zoom(yoff float64) {
	c.Distance *= float32(1.0 - yoff*0.1)
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// Resize updates the viewport size.
func (c *Camera) Resize(width, height int) {
	c.Width = width
	c.Height = height
}
