package territory

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// pointEpsilon is the distance under which two shape points are merged.
const pointEpsilon = 1e-9

// Shape is a planar outline built with move-to / line-to commands.
type Shape struct {
	points []mgl64.Vec2
}

// MoveTo starts a new outline, discarding any previous one.
func (s *Shape) MoveTo(x, y float64) {
	s.points = append(s.points[:0], mgl64.Vec2{x, y})
}

// LineTo extends the outline. Without a prior MoveTo it behaves like MoveTo.
func (s *Shape) LineTo(x, y float64) {
	s.points = append(s.points, mgl64.Vec2{x, y})
}

// Points returns the cleaned contour: consecutive duplicates are merged and a
// closing point equal to the first is dropped.
func (s *Shape) Points() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, 0, len(s.points))
	for _, p := range s.points {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && samePoint(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// SignedArea is the shoelace area of the cleaned contour; positive when the
// contour is counter-clockwise.
func (s *Shape) SignedArea() float64 {
	return signedArea(s.Points())
}

func signedArea(pts []mgl64.Vec2) float64 {
	area := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X()*pts[j].Y() - pts[j].X()*pts[i].Y()
	}
	return area / 2
}

func samePoint(a, b mgl64.Vec2) bool {
	return math.Abs(a.X()-b.X()) <= pointEpsilon && math.Abs(a.Y()-b.Y()) <= pointEpsilon
}
