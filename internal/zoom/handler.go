package zoom

import (
	"time"

	"github.com/dshills/smoothzoom/internal/frame"
	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/mapview"
)

// State is the handler's position in the gesture lifecycle.
type State uint8

const (
	// StateIdle means no gesture and no animation.
	StateIdle State = iota
	// StateGestureActive means a gesture started but no frame has run yet.
	StateGestureActive
	// StateAnimating means wheel input is arriving and frames are running.
	StateAnimating
	// StateConverging means the gesture ended and the view is settling.
	StateConverging
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGestureActive:
		return "gesture"
	case StateAnimating:
		return "animating"
	case StateConverging:
		return "converging"
	default:
		return "unknown"
	}
}

// Handler turns wheel input into smooth zoom animation on one view.
type Handler struct {
	view  View
	sched frame.Scheduler
	log   Logger

	mode        Mode
	sensitivity float64
	debounce    time.Duration

	enabled  bool
	listener mapview.ListenerID

	// Gesture.
	wheeling bool
	timer    frame.Timer
	goalZoom float64

	// Anchors, in container pixels and geographic coordinates.
	cursorPoint  geo.Point
	centerPoint  geo.Point
	centerLatLng geo.LatLng
	cursorLatLng geo.LatLng

	// Animation.
	running    bool
	frame      frame.FrameID
	moved      bool
	prevZoom   float64
	prevCenter geo.LatLng

	// Diagnostics.
	frames   int
	gestures int
	lastStop stopReason
}

// New creates a handler for view, scheduling frames and timers on sched.
// The handler is enabled immediately unless the mode is ModeOff.
func New(view View, sched frame.Scheduler, opts ...Option) *Handler {
	h := &Handler{
		view:        view,
		sched:       sched,
		log:         nopLogger{},
		mode:        ModeCursor,
		sensitivity: DefaultSensitivity,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.mode != ModeOff {
		h.Enable()
	}
	return h
}

// Enable attaches the wheel listener. Enabling an enabled handler is a
// no-op. A handler created with ModeOff switches to ModeCursor.
func (h *Handler) Enable() {
	if h.enabled {
		return
	}
	if h.mode == ModeOff {
		h.mode = ModeCursor
	}

	h.listener = h.view.OnWheel(h.OnWheel)
	h.enabled = true
	h.log.Debug("smooth zoom enabled mode=%s sensitivity=%.2f", h.mode, h.sensitivity)
}

// Disable detaches the wheel listener, cancels the pending frame and
// timer, and closes an open move transaction. Disabling a disabled
// handler is a no-op.
func (h *Handler) Disable() {
	if !h.enabled {
		return
	}

	h.view.OffWheel(h.listener)
	h.listener = 0
	h.enabled = false

	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.wheeling = false

	if h.running {
		if h.moved {
			h.view.MoveEnd()
		}
		h.halt(stopDisabled)
	}
	h.log.Debug("smooth zoom disabled")
}

// Enabled reports whether the wheel listener is attached.
func (h *Handler) Enabled() bool {
	return h.enabled
}

// Mode returns the anchoring mode.
func (h *Handler) Mode() Mode {
	return h.mode
}

// SetMode changes the anchoring mode. ModeOff disables the handler; any
// other mode enables it. A running animation picks up the new mode on its
// next frame.
func (h *Handler) SetMode(m Mode) {
	if m == ModeOff {
		h.Disable()
		return
	}
	h.mode = m
	h.Enable()
}

// Sensitivity returns the wheel multiplier.
func (h *Handler) Sensitivity() float64 {
	return h.sensitivity
}

// SetSensitivity changes the wheel multiplier for subsequent events.
// Non-positive and non-finite values are ignored.
func (h *Handler) SetSensitivity(s float64) {
	if validSensitivity(s) {
		h.sensitivity = s
	}
}

// State returns the lifecycle state.
func (h *Handler) State() State {
	switch {
	case h.running && h.wheeling && h.frames == 0:
		return StateGestureActive
	case h.running && h.wheeling:
		return StateAnimating
	case h.running:
		return StateConverging
	default:
		return StateIdle
	}
}

// Goal returns the accumulated goal zoom.
func (h *Handler) Goal() float64 {
	return h.goalZoom
}

// Wheeling reports whether a wheel event arrived within the debounce
// window.
func (h *Handler) Wheeling() bool {
	return h.wheeling
}

// Anchor returns the geographic point the current gesture keeps fixed and
// its position in container pixels. ok is false when no gesture has been
// started.
func (h *Handler) Anchor() (anchor geo.LatLng, pt geo.Point, ok bool) {
	if h.gestures == 0 {
		return geo.LatLng{}, geo.Point{}, false
	}
	anchor = h.cursorLatLng
	if h.mode == ModeCenter {
		anchor = h.centerLatLng
	}
	return anchor, latLngToContainerPoint(h.view, anchor), true
}

// Stats is a snapshot of handler counters.
type Stats struct {
	Gestures int
	Frames   int
	LastStop string
}

// Stats returns gesture and frame counters. Frames counts the frames of
// the current or most recent gesture.
func (h *Handler) Stats() Stats {
	return Stats{
		Gestures: h.gestures,
		Frames:   h.frames,
		LastStop: h.lastStop.String(),
	}
}
