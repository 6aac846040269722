package core

// GenerateGlobeData generates vertex and index data for the globe UV sphere.
// Returns interleaved vertices (position, normal, texcoord) and indices.
//
// Vertices are placed with LatLngToSurface so that u = 0 and u = 1 both sit
// on the antimeridian, the same seam the territory overlays use.
func GenerateGlobeData(radius float32, segments, rings int) ([]float32, []uint32) {
	// Use default values if not specified
	if segments <= 0 {
		segments = 64
	}
	if rings <= 0 {
		rings = 64
	}

	vertices := make([]float32, 0, (rings+1)*(segments+1)*8)
	indices := make([]uint32, 0, rings*segments*6)

	for ring := 0; ring <= rings; ring++ {
		v := float64(ring) / float64(rings)
		lat := 90 - v*180

		for seg := 0; seg <= segments; seg++ {
			u := float64(seg) / float64(segments)
			lng := u*360 - 180

			n := LatLngToSurface(lat, lng, 1)
			p := n.Scale(float64(radius)).Vec3()
			nv := n.Vec3()

			vertices = append(vertices, p[:]...)
			vertices = append(vertices, nv[:]...)
			vertices = append(vertices, float32(u), float32(v))
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments) + 1

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return vertices, indices
}
