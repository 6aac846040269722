// Package territory turns dynasty polygon datasets into extruded, shader
// animated patches that sit just above the globe surface.
package territory

import "dynastyglobe/core"

// Ring is one polygon boundary. The ring is implicitly closed; a trailing
// point equal to the first is tolerated.
type Ring []core.GeoPoint

// Polygon is an outer ring followed by optional holes. Only Rings[0] is
// extruded; holes are carried but ignored.
type Polygon struct {
	Rings []Ring
}

// Outer returns the first ring, or nil for an empty polygon.
func (p Polygon) Outer() Ring {
	if len(p.Rings) == 0 {
		return nil
	}
	return p.Rings[0]
}

// Feature is one named territory made of one or more polygons.
type Feature struct {
	Name     string
	Polygons []Polygon
}

// Dataset is one dynasty's full set of features as loaded from its source.
type Dataset struct {
	Name     string
	Features []Feature
}

// PolygonCount returns the number of polygons across all features.
func (d *Dataset) PolygonCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, f := range d.Features {
		n += len(f.Polygons)
	}
	return n
}
