package territory

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rclancey/earcut"

	"dynastyglobe/logging"
)

// Triangulate splits a simple polygon into triangles with earcut.
//
// The returned triangles index into pts and are always wound
// counter-clockwise, whatever the winding of the input. Polygons with fewer
// than three points or zero area yield no triangles, and zero-area slivers
// are dropped.
func Triangulate(pts []mgl64.Vec2) [][3]int {
	if len(pts) < 3 || signedArea(pts) == 0 {
		return nil
	}

	flat := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		flat = append(flat, p.X(), p.Y())
	}

	idx, err := earcut.Earcut(flat, nil, 2)
	if err != nil {
		logging.Debug().Err(err).Int("points", len(pts)).Msg("earcut failed")
		return nil
	}

	tris := make([][3]int, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		switch area := triangleArea(pts[a], pts[b], pts[c]); {
		case area > 0:
			tris = append(tris, [3]int{a, b, c})
		case area < 0:
			tris = append(tris, [3]int{a, c, b})
		}
	}
	return tris
}

// triangleArea is twice the signed area of abc; positive when CCW.
func triangleArea(a, b, c mgl64.Vec2) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}
