// Package mapview provides an in-memory interactive map view: the host
// object that zoom handlers and renderers operate on.
//
// The view owns the zoom level, the geographic center, the pixel size of
// its container and the zoom limits. It converts between geographic and
// container coordinates, dispatches wheel events to registered listeners
// and notifies observers of every movement.
package mapview

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/policy"
)

// Options configures a View.
type Options struct {
	Center  geo.LatLng
	Zoom    float64
	MinZoom float64
	MaxZoom float64

	// Size is the container size in pixels.
	Size geo.Point

	// Origin is the container's top-left corner in screen coordinates.
	Origin geo.Point

	// Policy limits zoom values. Defaults to policy.Clamp.
	Policy policy.Func

	// CRS defaults to geo.WebMercator.
	CRS geo.CRS
}

// DefaultOptions returns a world view of 800x600 pixels.
func DefaultOptions() Options {
	return Options{
		Center:  geo.NewLatLng(0, 0),
		Zoom:    2,
		MinZoom: 0,
		MaxZoom: 18,
		Size:    geo.Pt(800, 600),
	}
}

// Stats counts the movement notifications a view has emitted.
type Stats struct {
	MoveStarts int
	Moves      int
	MoveEnds   int
	Resets     int
}

type wheelListener struct {
	id ListenerID
	fn WheelFunc
}

type moveObserver struct {
	id ListenerID
	fn MoveFunc
}

// View is an interactive map view.
type View struct {
	mu sync.RWMutex

	id  uuid.UUID
	crs geo.CRS

	zoom    float64
	center  geo.LatLng
	minZoom float64
	maxZoom float64
	limit   policy.Func

	size   geo.Point
	origin geo.Point

	moving bool
	pan    *panAnimation
	stats  Stats

	nextID    ListenerID
	wheels    []wheelListener
	observers []moveObserver
}

// New creates a view. MaxZoom below MinZoom is raised to MinZoom.
func New(opts Options) *View {
	if opts.CRS == nil {
		opts.CRS = geo.WebMercator{}
	}
	if opts.Policy == nil {
		opts.Policy = policy.Clamp
	}
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = opts.MinZoom
	}

	v := &View{
		id:      uuid.New(),
		crs:     opts.CRS,
		center:  opts.Center,
		minZoom: opts.MinZoom,
		maxZoom: opts.MaxZoom,
		limit:   opts.Policy,
		size:    opts.Size,
		origin:  opts.Origin,
	}
	v.zoom = v.limit(opts.Zoom, v.minZoom, v.maxZoom)
	return v
}

// ID returns the view's unique identifier.
func (v *View) ID() uuid.UUID {
	return v.id
}

// Zoom returns the current zoom level.
func (v *View) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

// Center returns the geographic center.
func (v *View) Center() geo.LatLng {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.center
}

// MinZoom returns the minimum zoom level.
func (v *View) MinZoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.minZoom
}

// MaxZoom returns the maximum zoom level.
func (v *View) MaxZoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.maxZoom
}

// SetZoomLimits changes the zoom range. The current zoom is not changed.
func (v *View) SetZoomLimits(min, max float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if max < min {
		max = min
	}
	v.minZoom = min
	v.maxZoom = max
}

// SetPolicy replaces the zoom-limiting policy. A nil policy restores
// policy.Clamp.
func (v *View) SetPolicy(fn policy.Func) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if fn == nil {
		fn = policy.Clamp
	}
	v.limit = fn
}

// LimitZoom applies the zoom-limiting policy to zoom.
func (v *View) LimitZoom(zoom float64) float64 {
	v.mu.RLock()
	limit, min, max := v.limit, v.minZoom, v.maxZoom
	v.mu.RUnlock()

	return limit(zoom, min, max)
}

// Project returns the absolute pixel position of p at zoom.
func (v *View) Project(p geo.LatLng, zoom float64) geo.Point {
	return v.crs.Project(p, zoom)
}

// Unproject returns the geographic position of an absolute pixel point.
func (v *View) Unproject(pt geo.Point, zoom float64) geo.LatLng {
	return v.crs.Unproject(pt, zoom)
}

// Size returns the container size in pixels.
func (v *View) Size() geo.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size
}

// Resize changes the container size. The center is preserved.
func (v *View) Resize(size geo.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.size = size
}

// Origin returns the container's top-left corner in screen coordinates.
func (v *View) Origin() geo.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.origin
}

// SetOrigin moves the container within the screen.
func (v *View) SetOrigin(origin geo.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.origin = origin
}

// pixelOrigin returns the absolute pixel position of the container's
// top-left corner. Callers hold mu.
func (v *View) pixelOrigin() geo.Point {
	return v.crs.Project(v.center, v.zoom).Sub(v.size.Mul(0.5))
}

// LatLngToContainerPoint returns the container position of p.
func (v *View) LatLngToContainerPoint(p geo.LatLng) geo.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.crs.Project(p, v.zoom).Sub(v.pixelOrigin())
}

// ContainerPointToLatLng returns the geographic position under a
// container point.
func (v *View) ContainerPointToLatLng(pt geo.Point) geo.LatLng {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.crs.Unproject(v.pixelOrigin().Add(pt), v.zoom)
}

// MouseEventToContainerPoint converts an event's screen position into
// container coordinates.
func (v *View) MouseEventToContainerPoint(ev *WheelEvent) geo.Point {
	return ev.Client.Sub(v.Origin())
}

// IsMoving reports whether a move transaction is open.
func (v *View) IsMoving() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.moving
}

// Stats returns the movement counters.
func (v *View) Stats() Stats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stats
}

// MoveStart opens a move transaction.
func (v *View) MoveStart() {
	v.mu.Lock()
	v.moving = true
	v.stats.MoveStarts++
	ev := MoveEvent{Type: MoveStarted, Zoom: v.zoom, Center: v.center}
	v.mu.Unlock()

	v.notify(ev)
}

// Move sets the center and zoom together as one visual update. The zoom is
// applied as given; callers are responsible for keeping it in range.
func (v *View) Move(center geo.LatLng, zoom float64) {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return
	}

	v.mu.Lock()
	v.center = center
	v.zoom = zoom
	v.stats.Moves++
	ev := MoveEvent{Type: Moved, Zoom: zoom, Center: center}
	v.mu.Unlock()

	v.notify(ev)
}

// MoveEnd closes a move transaction.
func (v *View) MoveEnd() {
	v.mu.Lock()
	v.moving = false
	v.stats.MoveEnds++
	ev := MoveEvent{Type: MoveEnded, Zoom: v.zoom, Center: v.center}
	v.mu.Unlock()

	v.notify(ev)
}

// SetView sets the center and zoom immediately, stopping any running
// animation. The zoom passes through the zoom-limiting policy. A move
// transaction still open afterwards is abandoned without a MoveEnded event.
func (v *View) SetView(center geo.LatLng, zoom float64) {
	v.Stop()
	zoom = v.LimitZoom(zoom)

	v.mu.Lock()
	v.center = center
	v.zoom = zoom
	v.moving = false
	v.stats.Resets++
	ev := MoveEvent{Type: ViewReset, Zoom: zoom, Center: center}
	v.mu.Unlock()

	v.notify(ev)
}

// SetZoom changes the zoom around the current center.
func (v *View) SetZoom(zoom float64) {
	v.SetView(v.Center(), zoom)
}

// OnWheel registers a wheel listener. Listeners run in registration order.
func (v *View) OnWheel(fn WheelFunc) ListenerID {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	v.wheels = append(v.wheels, wheelListener{id: v.nextID, fn: fn})
	return v.nextID
}

// OffWheel removes a wheel listener. Unknown ids are ignored.
func (v *View) OffWheel(id ListenerID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, l := range v.wheels {
		if l.id == id {
			v.wheels = append(v.wheels[:i], v.wheels[i+1:]...)
			return
		}
	}
}

// WheelListeners returns the number of registered wheel listeners.
func (v *View) WheelListeners() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.wheels)
}

// DispatchWheel delivers ev to the wheel listeners until one of them stops
// propagation. It reports whether the default action was prevented.
func (v *View) DispatchWheel(ev *WheelEvent) bool {
	v.mu.RLock()
	listeners := make([]wheelListener, len(v.wheels))
	copy(listeners, v.wheels)
	v.mu.RUnlock()

	for _, l := range listeners {
		l.fn(ev)
		if ev.PropagationStopped() {
			break
		}
	}
	return ev.DefaultPrevented()
}

// OnMove registers a movement observer.
func (v *View) OnMove(fn MoveFunc) ListenerID {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.nextID++
	v.observers = append(v.observers, moveObserver{id: v.nextID, fn: fn})
	return v.nextID
}

// OffMove removes a movement observer.
func (v *View) OffMove(id ListenerID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, o := range v.observers {
		if o.id == id {
			v.observers = append(v.observers[:i], v.observers[i+1:]...)
			return
		}
	}
}

func (v *View) notify(ev MoveEvent) {
	v.mu.RLock()
	observers := make([]moveObserver, len(v.observers))
	copy(observers, v.observers)
	v.mu.RUnlock()

	for _, o := range observers {
		o.fn(ev)
	}
}
