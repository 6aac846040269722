package territory

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func vecs(coords ...float64) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, mgl64.Vec2{coords[i], coords[i+1]})
	}
	return out
}

func totalArea(pts []mgl64.Vec2, tris [][3]int) float64 {
	sum := 0.0
	for _, t := range tris {
		sum += triangleArea(pts[t[0]], pts[t[1]], pts[t[2]]) / 2
	}
	return sum
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name     string
		pts      []mgl64.Vec2
		wantTris int
		wantArea float64
	}{
		{"triangle", vecs(0, 0, 1, 0, 0, 1), 1, 0.5},
		{"square ccw", vecs(0, 0, 1, 0, 1, 1, 0, 1), 2, 1},
		{"square cw", vecs(0, 0, 0, 1, 1, 1, 1, 0), 2, 1},
		{"concave L", vecs(0, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2), 4, 3},
		{"collinear midpoint", vecs(0, 0, 1, 0, 2, 0, 2, 2, 0, 2), 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tris := Triangulate(tc.pts)
			if tc.wantTris > 0 {
				assert.Len(t, tris, tc.wantTris)
			} else {
				// Collinear vertices may or may not get a triangle of their own.
				assert.NotEmpty(t, tris)
				assert.LessOrEqual(t, len(tris), len(tc.pts)-2)
			}
			assert.InDelta(t, tc.wantArea, totalArea(tc.pts, tris), 1e-9)
			for _, tri := range tris {
				area := triangleArea(tc.pts[tri[0]], tc.pts[tri[1]], tc.pts[tri[2]])
				assert.Greater(t, area, 0.0, "triangle %v must be counter-clockwise", tri)
			}
		})
	}
}

func TestTriangulateDegenerate(t *testing.T) {
	assert.Empty(t, Triangulate(nil))
	assert.Empty(t, Triangulate(vecs(0, 0, 1, 1)))
	assert.Empty(t, Triangulate(vecs(0, 0, 1, 1, 2, 2)))
}

func TestTriangulateCircle(t *testing.T) {
	const n = 64
	pts := make([]mgl64.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / n
		pts[i] = mgl64.Vec2{math.Cos(a), math.Sin(a)}
	}

	tris := Triangulate(pts)
	assert.Len(t, tris, n-2)
	assert.InDelta(t, signedArea(pts), totalArea(pts, tris), 1e-9)
}

func TestShapePoints(t *testing.T) {
	var s Shape
	s.MoveTo(0, 0)
	s.LineTo(1, 0)
	s.LineTo(1, 0)
	s.LineTo(1, 1)
	s.LineTo(0, 0)

	assert.Equal(t, vecs(0, 0, 1, 0, 1, 1), s.Points())
	assert.InDelta(t, 0.5, s.SignedArea(), 1e-12)

	s.MoveTo(5, 5)
	assert.Equal(t, vecs(5, 5), s.Points())
}
