package territory

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle list ready for upload.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh positions.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	if m == nil || len(m.Positions) == 0 {
		return lo, hi
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < lo[k] {
				lo[k] = p[k]
			}
			if p[k] > hi[k] {
				hi[k] = p[k]
			}
		}
	}
	return lo, hi
}

func (m *Mesh) addVertex(p, n mgl32.Vec3) uint32 {
	m.Positions = append(m.Positions, p)
	m.Normals = append(m.Normals, n)
	return uint32(len(m.Positions) - 1)
}

// Extrude turns a shape into a solid of the given depth along +Z with no
// bevel: a back cap at z = 0, a front cap at z = depth and one flat-shaded
// quad per contour edge. It returns nil when the shape does not triangulate.
func Extrude(shape *Shape, depth float64) *Mesh {
	pts := shape.Points()
	tris := Triangulate(pts)
	if len(tris) == 0 {
		return nil
	}

	// Walk the contour counter-clockwise so wall normals point outward.
	contour := pts
	if signedArea(pts) < 0 {
		contour = make([]mgl64.Vec2, len(pts))
		for i, p := range pts {
			contour[len(pts)-1-i] = p
		}
	}

	d := float32(depth)
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, 2*len(pts)+4*len(contour)),
		Normals:   make([]mgl32.Vec3, 0, 2*len(pts)+4*len(contour)),
		Indices:   make([]uint32, 0, 6*len(tris)+6*len(contour)),
	}

	back := mgl32.Vec3{0, 0, -1}
	front := mgl32.Vec3{0, 0, 1}

	base := uint32(len(m.Positions))
	for _, p := range pts {
		m.addVertex(mgl32.Vec3{float32(p.X()), float32(p.Y()), 0}, back)
	}
	for _, t := range tris {
		m.Indices = append(m.Indices, base+uint32(t[2]), base+uint32(t[1]), base+uint32(t[0]))
	}

	base = uint32(len(m.Positions))
	for _, p := range pts {
		m.addVertex(mgl32.Vec3{float32(p.X()), float32(p.Y()), d}, front)
	}
	for _, t := range tris {
		m.Indices = append(m.Indices, base+uint32(t[0]), base+uint32(t[1]), base+uint32(t[2]))
	}

	for i := range contour {
		a := contour[i]
		b := contour[(i+1)%len(contour)]

		edge := b.Sub(a)
		if edge.Len() == 0 {
			continue
		}
		out := mgl64.Vec2{edge.Y(), -edge.X()}.Normalize()
		n := mgl32.Vec3{float32(out.X()), float32(out.Y()), 0}

		a0 := m.addVertex(mgl32.Vec3{float32(a.X()), float32(a.Y()), 0}, n)
		b0 := m.addVertex(mgl32.Vec3{float32(b.X()), float32(b.Y()), 0}, n)
		b1 := m.addVertex(mgl32.Vec3{float32(b.X()), float32(b.Y()), d}, n)
		a1 := m.addVertex(mgl32.Vec3{float32(a.X()), float32(a.Y()), d}, n)

		m.Indices = append(m.Indices, a0, b0, b1, a0, b1, a1)
	}

	return m
}
