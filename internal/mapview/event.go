package mapview

import "github.com/dshills/smoothzoom/internal/geo"

// DeltaMode is the unit of a wheel event's delta values.
type DeltaMode uint8

const (
	// DeltaPixel means deltas are in device pixels (trackpads).
	DeltaPixel DeltaMode = iota
	// DeltaLine means deltas are in lines (classic mouse wheels).
	DeltaLine
	// DeltaPage means deltas are in pages.
	DeltaPage
)

// String returns the mode name.
func (m DeltaMode) String() string {
	switch m {
	case DeltaPixel:
		return "pixel"
	case DeltaLine:
		return "line"
	case DeltaPage:
		return "page"
	default:
		return "unknown"
	}
}

// WheelEvent is a wheel input event delivered to the view's container.
type WheelEvent struct {
	// Client is the pointer position in screen coordinates.
	Client geo.Point

	// DeltaX and DeltaY are the scroll amounts in DeltaMode units.
	// Positive DeltaY scrolls down (zooms out).
	DeltaX, DeltaY float64
	DeltaMode      DeltaMode

	// WheelDelta is the legacy delta reported by older input sources, in
	// 120ths of a notch with the opposite sign of DeltaY. Zero if absent.
	WheelDelta float64

	// PixelRatio is the device pixel ratio. Zero is treated as 1.
	PixelRatio float64

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault suppresses the host's default handling of the event.
func (e *WheelEvent) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *WheelEvent) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents later listeners from receiving the event.
func (e *WheelEvent) StopPropagation() {
	e.propagationStopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *WheelEvent) PropagationStopped() bool {
	return e.propagationStopped
}

// MoveEventType identifies a view movement notification.
type MoveEventType uint8

const (
	// MoveStarted is sent when a move transaction opens.
	MoveStarted MoveEventType = iota
	// Moved is sent for every committed zoom/center change.
	Moved
	// MoveEnded is sent when a move transaction closes.
	MoveEnded
	// ViewReset is sent when the view is set externally.
	ViewReset
)

// String returns the event type name.
func (t MoveEventType) String() string {
	switch t {
	case MoveStarted:
		return "movestart"
	case Moved:
		return "move"
	case MoveEnded:
		return "moveend"
	case ViewReset:
		return "viewreset"
	default:
		return "unknown"
	}
}

// MoveEvent describes a change of the view state.
type MoveEvent struct {
	Type   MoveEventType
	Zoom   float64
	Center geo.LatLng
}

// ListenerID identifies a registered listener.
type ListenerID uint64

// WheelFunc receives wheel events.
type WheelFunc func(ev *WheelEvent)

// MoveFunc receives move notifications.
type MoveFunc func(ev MoveEvent)
