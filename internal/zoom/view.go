package zoom

import (
	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/mapview"
)

// View is the map view a Handler drives. *mapview.View implements it.
type View interface {
	Zoom() float64
	Center() geo.LatLng
	MinZoom() float64
	MaxZoom() float64

	// LimitZoom applies the view's zoom-limiting policy.
	LimitZoom(zoom float64) float64

	Project(p geo.LatLng, zoom float64) geo.Point
	Unproject(pt geo.Point, zoom float64) geo.LatLng

	// Size returns the container size in pixels.
	Size() geo.Point

	// MoveStart, Move and MoveEnd bracket a combined pan-and-zoom
	// transaction.
	MoveStart()
	Move(center geo.LatLng, zoom float64)
	MoveEnd()

	OnWheel(fn mapview.WheelFunc) mapview.ListenerID
	OffWheel(id mapview.ListenerID)
}

// ContainerPointConverter is implemented by views that convert between
// geographic and container coordinates themselves.
type ContainerPointConverter interface {
	LatLngToContainerPoint(p geo.LatLng) geo.Point
	ContainerPointToLatLng(pt geo.Point) geo.LatLng
}

// EventLocator is implemented by views whose container is offset from the
// screen origin.
type EventLocator interface {
	MouseEventToContainerPoint(ev *mapview.WheelEvent) geo.Point
}

// Stopper is implemented by views that run their own animations.
type Stopper interface {
	Stop()
}

// eventContainerPoint returns the container position of ev, falling back
// to the raw client position when the view cannot locate events.
func eventContainerPoint(v View, ev *mapview.WheelEvent) geo.Point {
	if loc, ok := v.(EventLocator); ok {
		return loc.MouseEventToContainerPoint(ev)
	}
	return ev.Client
}

// containerPointToLatLng converts a container point at the current zoom,
// computing it from the projection when the view has no converter.
func containerPointToLatLng(v View, pt geo.Point) geo.LatLng {
	if conv, ok := v.(ContainerPointConverter); ok {
		return conv.ContainerPointToLatLng(pt)
	}
	zoom := v.Zoom()
	origin := v.Project(v.Center(), zoom).Sub(v.Size().Mul(0.5))
	return v.Unproject(origin.Add(pt), zoom)
}

// latLngToContainerPoint is the inverse of containerPointToLatLng.
func latLngToContainerPoint(v View, p geo.LatLng) geo.Point {
	if conv, ok := v.(ContainerPointConverter); ok {
		return conv.LatLngToContainerPoint(p)
	}
	zoom := v.Zoom()
	origin := v.Project(v.Center(), zoom).Sub(v.Size().Mul(0.5))
	return v.Project(p, zoom).Sub(origin)
}

func stopView(v View) {
	if s, ok := v.(Stopper); ok {
		s.Stop()
	}
}
