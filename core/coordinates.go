package core

import (
	"math"
)

// GeoPoint is a position in geographic coordinates, in degrees
type GeoPoint struct {
	Lat float64 // Latitude in degrees [-90, 90], positive = north
	Lng float64 // Longitude in degrees [-180, 180], positive = east
}

// DegreesToRadians converts degrees to radians
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// RadiansToDegrees converts radians to degrees
func RadiansToDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// LatLngToSurface projects a geographic position onto a sphere of the given radius.
//
// Y is the polar axis. The azimuth is offset by 180° so the seam of the globe
// texture lines up with the antimeridian of the territory datasets. Inputs are
// not validated; values outside the geographic range go straight through the
// trigonometry. At lat = ±90 every longitude maps to the same pole.
func LatLngToSurface(lat, lng, radius float64) SurfacePoint {
	phi := DegreesToRadians(90 - lat)    // polar angle from +Y
	theta := DegreesToRadians(lng + 180) // azimuth

	sinPhi := math.Sin(phi)

	return SurfacePoint{
		X: -radius * sinPhi * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * sinPhi * math.Sin(theta),
	}
}

// Project is LatLngToSurface for a GeoPoint
func (g GeoPoint) Project(radius float64) SurfacePoint {
	return LatLngToSurface(g.Lat, g.Lng, radius)
}

// SurfaceToLatLng inverts LatLngToSurface. The radius of the point is returned
// alongside; the origin maps to (0, 0) with radius 0.
func SurfaceToLatLng(p SurfacePoint) (GeoPoint, float64) {
	r := p.Length()

	// Handle special case of origin
	if r < 1e-10 {
		return GeoPoint{}, 0
	}

	phi := math.Acos(clamp(p.Y/r, -1, 1))
	theta := math.Atan2(p.Z, -p.X)

	lng := RadiansToDegrees(theta) - 180
	if lng < -180 {
		lng += 360
	}

	return GeoPoint{
		Lat: 90 - RadiansToDegrees(phi),
		Lng: lng,
	}, r
}

// ValidateGeoPoint checks if coordinates are within valid ranges
func ValidateGeoPoint(g GeoPoint) bool {
	return g.Lat >= -90 && g.Lat <= 90 &&
		g.Lng >= -180 && g.Lng <= 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
