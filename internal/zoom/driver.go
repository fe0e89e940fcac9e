package zoom

import (
	"math"

	"github.com/dshills/smoothzoom/internal/geo"
)

// stopReason records why the frame loop ended.
type stopReason uint8

const (
	stopNone stopReason = iota
	stopConverged
	stopInterfered
	stopDisabled
)

func (r stopReason) String() string {
	switch r {
	case stopConverged:
		return "converged"
	case stopInterfered:
		return "interfered"
	case stopDisabled:
		return "disabled"
	default:
		return "none"
	}
}

// tick advances the view by one easing step.
func (h *Handler) tick() {
	h.frame = 0
	if !h.running {
		return
	}

	zoom := h.view.Zoom()
	center := h.view.Center()

	// Someone else moved the view; it is theirs now.
	if zoom != h.prevZoom || !center.Equal(h.prevCenter) {
		h.halt(stopInterfered)
		return
	}

	// Limits can move under a running gesture.
	if h.goalZoom < h.view.MinZoom() || h.goalZoom > h.view.MaxZoom() {
		h.goalZoom = h.view.LimitZoom(h.goalZoom)
	}

	diff := h.goalZoom - zoom
	delta := h.cursorPoint.Sub(h.centerPoint)
	zeroOffset := geo.IsZeroPoint(delta)

	if !h.wheeling && (math.Abs(diff) < convergeEpsilon || zeroOffset) {
		if h.moved {
			h.view.MoveEnd()
		}
		h.halt(stopConverged)
		return
	}

	h.frames++

	if !zeroOffset {
		next := h.nextZoom(zoom)

		var target geo.LatLng
		if h.mode == ModeCenter {
			target = h.centerLatLng
		} else {
			pt := h.view.Project(h.cursorLatLng, next).Sub(delta)
			target = h.view.Unproject(pt, next)
		}

		if !h.moved {
			h.view.MoveStart()
			h.moved = true
		}
		h.view.Move(target, next)

		h.prevZoom = h.view.Zoom()
		h.prevCenter = h.view.Center()
	}

	h.frame = h.sched.RequestFrame(h.tick)
}

// nextZoom returns the zoom level for the next frame: 30% of the remaining
// gap, truncated to hundredths. When truncation would swallow the step the
// zoom moves one hundredth toward the goal instead, or lands on the goal
// when it is less than a hundredth away, so the gap always shrinks.
func (h *Handler) nextZoom(zoom float64) float64 {
	diff := h.goalZoom - zoom
	if math.Abs(diff) < convergeEpsilon {
		return zoom
	}

	next := truncate(zoom + diff*easing)
	stalled := (diff > 0 && next <= zoom) || (diff < 0 && next >= zoom)
	switch {
	case stalled && math.Abs(diff) <= zoomStep:
		next = h.goalZoom
	case diff > 0 && next <= zoom:
		next = round(truncate(zoom) + zoomStep)
	case diff < 0 && next >= zoom:
		next = round(truncate(zoom) - zoomStep)
	}

	return math.Max(h.view.MinZoom(), math.Min(h.view.MaxZoom(), next))
}

// truncate floors z to hundredths. The small bias absorbs representation
// error such as 10.03*100 == 1002.9999999999999.
func truncate(z float64) float64 {
	return math.Floor(z/zoomStep+1e-6) * zoomStep
}

func round(z float64) float64 {
	return math.Round(z/zoomStep) * zoomStep
}

// halt stops the frame loop and returns the handler to idle.
func (h *Handler) halt(reason stopReason) {
	if h.frame != 0 {
		h.sched.CancelFrame(h.frame)
		h.frame = 0
	}
	h.running = false
	h.moved = false
	h.lastStop = reason

	if reason == stopInterfered {
		// A new wheel event must start a fresh gesture with new anchors.
		if h.timer != nil {
			h.timer.Stop()
			h.timer = nil
		}
		h.wheeling = false
	}

	h.log.Debug("zoom loop stopped reason=%s zoom=%.2f goal=%.3f frames=%d",
		reason, h.view.Zoom(), h.goalZoom, h.frames)
}
