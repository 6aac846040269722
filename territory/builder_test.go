package territory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynastyglobe/core"
)

func ring(coords ...[2]float64) Ring {
	r := make(Ring, len(coords))
	for i, c := range coords {
		r[i] = core.GeoPoint{Lng: c[0], Lat: c[1]}
	}
	return r
}

// square returns a lng/lat box with its south-west corner at (lng, lat).
func square(lng, lat, size float64) Ring {
	return ring(
		[2]float64{lng, lat},
		[2]float64{lng + size, lat},
		[2]float64{lng + size, lat + size},
		[2]float64{lng, lat + size},
	)
}

func TestBuildCardinality(t *testing.T) {
	ds := &Dataset{
		Name: "fixture",
		Features: []Feature{
			{Name: "guanzhong", Polygons: []Polygon{
				{Rings: []Ring{square(108, 34, 2)}},
			}},
			{Name: "lingnan", Polygons: []Polygon{
				{Rings: []Ring{square(112, 22, 3)}},
				{Rings: []Ring{square(109, 18, 1)}},
			}},
		},
	}

	g := NewBuilder(DefaultOptions()).Build("fixture", ds)

	require.Equal(t, 3, g.Len())
	assert.Equal(t, "fixture", g.Key)
	assert.Equal(t, "fixture", g.Name)
	assert.Equal(t, "guanzhong", g.Patches[0].Feature)
	assert.Equal(t, "lingnan", g.Patches[1].Feature)
	assert.Equal(t, "lingnan", g.Patches[2].Feature)
	for i, p := range g.Patches {
		assert.Equal(t, i, p.Index)
	}
}

func TestBuildSkipsDegenerateRings(t *testing.T) {
	ds := &Dataset{
		Features: []Feature{
			{Polygons: []Polygon{
				{Rings: []Ring{ring([2]float64{0, 0}, [2]float64{1, 1})}},
				{Rings: []Ring{square(100, 30, 2)}},
			}},
			{Polygons: []Polygon{
				{Rings: []Ring{ring([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{0, 0})}},
				{Rings: nil},
			}},
		},
	}

	var g *Group
	require.NotPanics(t, func() {
		g = NewBuilder(DefaultOptions()).Build("mixed", ds)
	})
	assert.Equal(t, 1, g.Len())
}

func TestBuildRingTwoPointsProducesNoPatch(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	assert.Nil(t, b.BuildRing(ring([2]float64{0, 0}, [2]float64{1, 1})))
	assert.Nil(t, b.BuildRing(nil))
}

func TestBuildEmptyDataset(t *testing.T) {
	b := NewBuilder(DefaultOptions())

	g := b.Build("qin", &Dataset{Name: "Qin"})
	assert.Zero(t, g.Len())
	assert.Equal(t, "qin", g.Key)

	g = b.Build("qin", nil)
	assert.Zero(t, g.Len())
}

func TestBuildIgnoresHoles(t *testing.T) {
	outer := square(100, 30, 4)
	hole := square(101, 31, 1)

	b := NewBuilder(DefaultOptions())
	withHole := b.Build("k", &Dataset{Features: []Feature{{Polygons: []Polygon{{Rings: []Ring{outer, hole}}}}}})
	without := b.Build("k", &Dataset{Features: []Feature{{Polygons: []Polygon{{Rings: []Ring{outer}}}}}})

	require.Equal(t, 1, withHole.Len())
	assert.Equal(t, without.Patches[0].Mesh.Positions, withHole.Patches[0].Mesh.Positions)
	assert.Equal(t, without.Patches[0].Mesh.Indices, withHole.Patches[0].Mesh.Indices)
}

func TestBuildRingGeometry(t *testing.T) {
	opts := DefaultOptions()
	opts.Program = ShaderProgram{Name: "heatmap", Vertex: "v", Fragment: "f"}
	b := NewBuilder(opts)

	r := square(108, 34, 2)
	p := b.BuildRing(r)
	require.NotNil(t, p)

	// Two caps of two triangles plus four wall quads.
	assert.Equal(t, 12, p.Mesh.TriangleCount())

	// Cap vertices come straight from the projected ring.
	lo, hi := p.Mesh.Bounds()
	assert.InDelta(t, 0, lo.Z(), 1e-6)
	assert.InDelta(t, opts.Depth, hi.Z(), 1e-6)
	for _, g := range r {
		sp := g.Project(opts.GroundRadius)
		assert.True(t, float64(lo.X())-1e-4 <= sp.X && sp.X <= float64(hi.X())+1e-4)
		assert.True(t, float64(lo.Y())-1e-4 <= sp.Y && sp.Y <= float64(hi.Y())+1e-4)
	}

	assert.InDelta(t, 153, p.Offset.Z(), 1e-6)
	assert.Zero(t, p.Offset.X())
	assert.Zero(t, p.Offset.Y())

	model := p.Model()
	assert.InDelta(t, 153, model.Col(3).Z(), 1e-6)

	assert.Equal(t, "heatmap", p.Material.Program.Name)
	assert.True(t, p.Material.Transparent)
	assert.True(t, p.Material.DoubleSided)
	assert.Zero(t, p.Time())
	assert.Equal(t, Uniforms{Time: 0, Intensity: 1.2}, p.Uniforms())
}

func TestBuildRingClosingDuplicateIgnored(t *testing.T) {
	b := NewBuilder(DefaultOptions())

	open := square(108, 34, 2)
	closed := append(append(Ring{}, open...), open[0])

	a := b.BuildRing(open)
	c := b.BuildRing(closed)
	require.NotNil(t, a)
	require.NotNil(t, c)
	assert.Equal(t, a.Mesh.TriangleCount(), c.Mesh.TriangleCount())
}

func TestPatchAdvanceIsExact(t *testing.T) {
	step := 0.02
	p := &Patch{Material: Material{Intensity: 1.2}}
	for i := 0; i < 1000; i++ {
		p.Advance(step)
	}
	assert.Equal(t, float64(1000)*step, p.Time())
	assert.Equal(t, uint64(1000), p.Ticks())
	assert.Equal(t, float32(1.2), p.Uniforms().Intensity)
}

func TestGroupAdvance(t *testing.T) {
	g := NewBuilder(DefaultOptions()).Build("k", &Dataset{Features: []Feature{{Polygons: []Polygon{
		{Rings: []Ring{square(100, 30, 2)}},
		{Rings: []Ring{square(110, 20, 2)}},
	}}}})

	step := 0.02
	g.Advance(step)
	g.Advance(step)
	for _, p := range g.Patches {
		assert.Equal(t, float64(2)*step, p.Time())
	}
	assert.Equal(t, 24, g.TriangleCount())
}
