package territory

import "time"

// Group holds every patch of one dynasty selection.
type Group struct {
	Key     string
	Name    string
	Patches []*Patch
	BuiltAt time.Time
}

// Len returns the number of patches.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Patches)
}

// Advance steps every patch's time uniform by the same increment.
func (g *Group) Advance(step float64) {
	for _, p := range g.Patches {
		p.Advance(step)
	}
}

// TriangleCount returns the total triangle count across patches.
func (g *Group) TriangleCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, p := range g.Patches {
		n += p.Mesh.TriangleCount()
	}
	return n
}
