// Package policy provides zoom-limiting policies for the map view.
//
// A policy maps a requested zoom level onto the zoom level the view is
// actually willing to show. Policies may be non-linear, for example
// snapping to fractional steps, and are applied by the view whenever a
// zoom value must be brought back inside its limits.
package policy

import "math"

// Func limits zoom to the range [min, max] according to some rule.
type Func func(zoom, min, max float64) float64

// Clamp limits zoom to [min, max] without any rounding.
func Clamp(zoom, min, max float64) float64 {
	if math.IsNaN(zoom) {
		return min
	}
	return math.Max(min, math.Min(max, zoom))
}

// Snap returns a policy that first rounds zoom to the nearest multiple of
// step and then clamps it. A step of zero or less disables rounding.
func Snap(step float64) Func {
	return func(zoom, min, max float64) float64 {
		if step > 0 && !math.IsNaN(zoom) && !math.IsInf(zoom, 0) {
			zoom = math.Round(zoom/step) * step
		}
		return Clamp(zoom, min, max)
	}
}
