package dataset

import (
	"errors"
	"fmt"
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"dynastyglobe/core"
	"dynastyglobe/territory"
)

var (
	// ErrUnknownKey is returned for keys outside the registry.
	ErrUnknownKey = errors.New("unknown dynasty key")

	// ErrFetch covers transport errors, bad status codes and an open breaker.
	ErrFetch = errors.New("dataset fetch failed")

	// ErrParse is returned when a resource is not usable territory data.
	ErrParse = errors.New("dataset parse failed")
)

// Parse decodes a GeoJSON FeatureCollection into a territory dataset.
//
// Polygon and MultiPolygon geometries are accepted; other geometry types are
// skipped. A feature without geometry, or a position with fewer than two
// coordinates, makes the whole document invalid.
func Parse(name string, data []byte) (*territory.Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: %s: type %q is not a FeatureCollection", ErrParse, name, fc.Type)
	}

	ds := &territory.Dataset{
		Name:     name,
		Features: make([]territory.Feature, 0, len(fc.Features)),
	}

	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			return nil, fmt.Errorf("%w: %s: feature %d has no geometry", ErrParse, name, i)
		}

		var polys [][][][]float64
		switch {
		case f.Geometry.IsMultiPolygon():
			polys = f.Geometry.MultiPolygon
		case f.Geometry.IsPolygon():
			polys = [][][][]float64{f.Geometry.Polygon}
		default:
			continue
		}

		feature := territory.Feature{
			Name:     featureName(f, i),
			Polygons: make([]territory.Polygon, 0, len(polys)),
		}
		for _, poly := range polys {
			p, err := convertPolygon(poly)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: feature %d: %v", ErrParse, name, i, err)
			}
			feature.Polygons = append(feature.Polygons, p)
		}
		ds.Features = append(ds.Features, feature)
	}

	return ds, nil
}

func convertPolygon(rings [][][]float64) (territory.Polygon, error) {
	p := territory.Polygon{Rings: make([]territory.Ring, 0, len(rings))}
	for _, coords := range rings {
		r := make(territory.Ring, 0, len(coords))
		for _, c := range coords {
			if len(c) < 2 {
				return p, fmt.Errorf("position with %d coordinates", len(c))
			}
			// GeoJSON positions are [lng, lat].
			r = append(r, core.GeoPoint{Lng: c[0], Lat: c[1]})
		}
		p.Rings = append(p.Rings, r)
	}
	return p, nil
}

func featureName(f *geojson.Feature, i int) string {
	for _, key := range []string{"name", "NAME", "title"} {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	if id, ok := f.ID.(string); ok && id != "" {
		return id
	}
	return fmt.Sprintf("feature-%d", i)
}
