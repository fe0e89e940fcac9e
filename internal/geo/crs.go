package geo

import "math"

const (
	// earthRadius is the sphere radius used by spherical Web Mercator.
	earthRadius = 6378137.0

	// MaxLatitude is the latitude at which Web Mercator becomes square.
	MaxLatitude = 85.0511287798

	// TileSize is the pixel width of the world at zoom 0.
	TileSize = 256.0
)

// CRS converts geographic positions to absolute pixel coordinates at a
// fractional zoom level and back.
type CRS interface {
	// Project returns the absolute pixel position of p at zoom.
	Project(p LatLng, zoom float64) Point

	// Unproject returns the geographic position of the absolute pixel
	// point at zoom.
	Unproject(pt Point, zoom float64) LatLng

	// Scale returns the world size in pixels at zoom.
	Scale(zoom float64) float64
}

// WebMercator is the spherical Mercator projection used by slippy maps
// (EPSG:3857) with a 256px world at zoom 0.
type WebMercator struct{}

// Scale returns 256 * 2^zoom.
func (WebMercator) Scale(zoom float64) float64 {
	return TileSize * math.Pow(2, zoom)
}

// Project returns the absolute pixel position of p at zoom. Latitudes
// beyond MaxLatitude are clamped.
func (m WebMercator) Project(p LatLng, zoom float64) Point {
	scale := m.Scale(zoom)
	lat := clamp(p.Lat(), -MaxLatitude, MaxLatitude)
	sin := math.Sin(lat * math.Pi / 180)

	x := (p.Lng() + 180) / 360
	y := 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)

	return Point{X: x * scale, Y: y * scale}
}

// Unproject returns the geographic position of pt at zoom.
func (m WebMercator) Unproject(pt Point, zoom float64) LatLng {
	scale := m.Scale(zoom)

	lng := pt.X/scale*360 - 180
	n := math.Pi * (1 - 2*pt.Y/scale)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi

	return NewLatLng(lat, lng)
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
