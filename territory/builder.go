package territory

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"dynastyglobe/logging"
)

// Options controls patch construction.
type Options struct {
	GroundRadius  float64 // radius the ring points are projected at
	SurfaceMargin float64 // outward offset above GroundRadius
	Depth         float64 // extrusion depth
	Intensity     float64 // value of the intensity uniform
	Program       ShaderProgram
}

// DefaultOptions returns the dimensions used against a globe of radius 150.
func DefaultOptions() Options {
	return Options{
		GroundRadius:  152,
		SurfaceMargin: 1,
		Depth:         4,
		Intensity:     1.2,
	}
}

// SurfaceRadius is where patches are placed: GroundRadius + SurfaceMargin.
func (o Options) SurfaceRadius() float64 {
	return o.GroundRadius + o.SurfaceMargin
}

// Builder converts datasets into territory groups.
type Builder struct {
	opts Options
}

// NewBuilder returns a builder using opts.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Options returns the builder configuration.
func (b *Builder) Options() Options {
	return b.opts
}

// Build creates one patch for the outer ring of every polygon in ds.
// Degenerate rings are skipped; an empty dataset gives an empty group.
func (b *Builder) Build(key string, ds *Dataset) *Group {
	g := &Group{Key: key, BuiltAt: time.Now()}
	if ds == nil {
		return g
	}
	g.Name = ds.Name

	skipped := 0
	for _, f := range ds.Features {
		for _, poly := range f.Polygons {
			p := b.BuildRing(poly.Outer())
			if p == nil {
				skipped++
				continue
			}
			p.Feature = f.Name
			p.Index = len(g.Patches)
			g.Patches = append(g.Patches, p)
		}
	}

	if skipped > 0 {
		logging.Debug().
			Str("dynasty", key).
			Int("skipped", skipped).
			Int("patches", len(g.Patches)).
			Msg("skipped degenerate rings")
	}
	return g
}

// BuildRing projects ring at the ground radius, traces it as a flat shape in
// the projected x/y plane and extrudes it. Returns nil for degenerate rings.
func (b *Builder) BuildRing(ring Ring) *Patch {
	if len(ring) < 3 {
		return nil
	}

	var shape Shape
	for i, pt := range ring {
		p := pt.Project(b.opts.GroundRadius)
		if i == 0 {
			shape.MoveTo(p.X, p.Y)
		} else {
			shape.LineTo(p.X, p.Y)
		}
	}

	mesh := Extrude(&shape, b.opts.Depth)
	if mesh == nil {
		return nil
	}

	return &Patch{
		Mesh:   mesh,
		Offset: mgl32.Vec3{0, 0, float32(b.opts.SurfaceRadius())},
		Material: Material{
			Program:     b.opts.Program,
			Intensity:   b.opts.Intensity,
			Transparent: true,
			DoubleSided: true,
		},
	}
}
