package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SurfacePoint is a point on (or just above) a sphere in the engine frame.
// Origin at globe center, Y points to the north pole.
type SurfacePoint struct {
	X, Y, Z float64
}

func (p SurfacePoint) Add(other SurfacePoint) SurfacePoint {
	return SurfacePoint{p.X + other.X, p.Y + other.Y, p.Z + other.Z}
}

func (p SurfacePoint) Sub(other SurfacePoint) SurfacePoint {
	return SurfacePoint{p.X - other.X, p.Y - other.Y, p.Z - other.Z}
}

func (p SurfacePoint) Scale(s float64) SurfacePoint {
	return SurfacePoint{p.X * s, p.Y * s, p.Z * s}
}

func (p SurfacePoint) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

func (p SurfacePoint) Normalize() SurfacePoint {
	length := p.Length()
	if length == 0 {
		return SurfacePoint{0, 0, 0}
	}
	return SurfacePoint{p.X / length, p.Y / length, p.Z / length}
}

// Distance returns the straight-line distance between two points
func (p SurfacePoint) Distance(other SurfacePoint) float64 {
	return p.Sub(other).Length()
}

// Vec3 converts to the float32 vector type used for GPU buffers
func (p SurfacePoint) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}
