package zoom

import (
	"math"

	"github.com/dshills/smoothzoom/internal/mapview"
)

// Normalization factors for non-pixel delta modes.
const (
	linePixels = 20
	pagePixels = 60
)

// NormalizeDelta converts a wheel event into device-independent units,
// positive meaning zoom in. A trackpad pixel is one unit; a line is 20 and
// a page 60. Events without a usable delta yield 0.
func NormalizeDelta(ev *mapview.WheelEvent) float64 {
	if ev == nil {
		return 0
	}

	var d float64
	switch {
	case ev.DeltaY != 0:
		switch ev.DeltaMode {
		case mapview.DeltaLine:
			d = -ev.DeltaY * linePixels
		case mapview.DeltaPage:
			d = -ev.DeltaY * pagePixels
		default:
			ratio := ev.PixelRatio
			if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
				ratio = 1
			}
			d = -ev.DeltaY / ratio
		}
	case ev.WheelDelta != 0:
		d = ev.WheelDelta / 2
	}

	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// OnWheel accumulates a wheel event into the goal zoom. It is registered
// on the view by Enable and may also be called directly.
func (h *Handler) OnWheel(ev *mapview.WheelEvent) {
	if !h.enabled || ev == nil {
		return
	}

	if !h.wheeling {
		h.startGesture(ev)
	}

	h.goalZoom += NormalizeDelta(ev) * h.sensitivity * wheelScale
	if h.goalZoom < h.view.MinZoom() || h.goalZoom > h.view.MaxZoom() {
		h.goalZoom = h.view.LimitZoom(h.goalZoom)
	}

	h.cursorPoint = eventContainerPoint(h.view, ev)
	h.armTimer()

	ev.PreventDefault()
	ev.StopPropagation()
}

// startGesture captures the anchors and starts the frame loop if it is not
// already running.
func (h *Handler) startGesture(ev *mapview.WheelEvent) {
	stopView(h.view)

	h.wheeling = true
	h.gestures++
	h.frames = 0

	zoom := h.view.Zoom()
	center := h.view.Center()

	h.cursorPoint = eventContainerPoint(h.view, ev)
	h.centerPoint = h.view.Size().Mul(0.5)
	h.centerLatLng = center
	h.cursorLatLng = containerPointToLatLng(h.view, h.cursorPoint)

	h.goalZoom = zoom
	h.prevZoom = zoom
	h.prevCenter = center

	h.log.Debug("zoom gesture start zoom=%.2f center=%s cursor=%.0f,%.0f",
		zoom, center, h.cursorPoint.X, h.cursorPoint.Y)

	if !h.running {
		h.moved = false
		h.running = true
		h.frame = h.sched.RequestFrame(h.tick)
	}
}

// armTimer cancels any pending end-of-gesture timer and schedules a new one.
func (h *Handler) armTimer() {
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = h.sched.AfterFunc(h.debounce, h.endGesture)
}

// endGesture runs when the debounce timer fires. The loop keeps running
// until the goal is reached.
func (h *Handler) endGesture() {
	h.timer = nil
	h.wheeling = false
	h.log.Debug("zoom gesture end goal=%.3f", h.goalZoom)
}
