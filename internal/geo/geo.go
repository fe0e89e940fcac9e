// Package geo provides the coordinate types shared by the map view and the
// zoom handler: geographic positions, container pixel points and the
// spherical Web Mercator projection used to convert between them.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

// equalMargin is the tolerance, in degrees, used by LatLng.Equal.
const equalMargin = 1e-9

// LatLng is a geographic position in degrees.
type LatLng struct {
	ll s2.LatLng
}

// NewLatLng creates a position from latitude and longitude in degrees.
func NewLatLng(lat, lng float64) LatLng {
	return LatLng{ll: s2.LatLngFromDegrees(lat, lng)}
}

// Lat returns the latitude in degrees.
func (p LatLng) Lat() float64 {
	return p.ll.Lat.Degrees()
}

// Lng returns the longitude in degrees.
func (p LatLng) Lng() float64 {
	return p.ll.Lng.Degrees()
}

// S2 returns the underlying s2 representation.
func (p LatLng) S2() s2.LatLng {
	return p.ll
}

// IsValid reports whether the latitude is within [-90, 90] and the
// longitude within [-180, 180].
func (p LatLng) IsValid() bool {
	return p.ll.IsValid()
}

// Equal reports whether two positions are the same within a small margin.
func (p LatLng) Equal(o LatLng) bool {
	return math.Abs(p.Lat()-o.Lat()) <= equalMargin &&
		math.Abs(p.Lng()-o.Lng()) <= equalMargin
}

// Distance returns the great-circle distance to o in meters.
func (p LatLng) Distance(o LatLng) float64 {
	return p.ll.Distance(o.ll).Radians() * earthRadius
}

// String returns the position as "lat,lng" with six decimals.
func (p LatLng) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat(), p.Lng())
}

// Point is a position in pixel space. Depending on context it is either a
// container point (relative to the top-left of the view) or an absolute
// projected point at some zoom level.
type Point = r2.Point

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// IsZeroPoint reports whether both coordinates are exactly zero.
func IsZeroPoint(p Point) bool {
	return p.X == 0 && p.Y == 0
}

// RoundPoint rounds both coordinates to the nearest integer.
func RoundPoint(p Point) Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}
