package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks frame pacing, render cost and input volume. Frames are
// recorded on the loop goroutine but snapshots may be taken from any
// goroutine.
type Metrics struct {
	// Frame intervals
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lateFrames   atomic.Uint64

	// Render timing
	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64

	// Input
	inputCount atomic.Uint64
	wheelCount atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so first frame will be smaller
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records the interval since the previous frame. An interval
// longer than twice target counts as a late frame.
func (m *Metrics) RecordFrame(interval, target time.Duration) {
	ns := interval.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	if target > 0 && interval > 2*target {
		m.lateFrames.Add(1)
	}

	for {
		old := m.frameMinNs.Load()
		if ns >= old || m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRender records how long a redraw took.
func (m *Metrics) RecordRender(d time.Duration) {
	m.renderCount.Add(1)
	m.renderTotalNs.Add(d.Nanoseconds())
}

// RecordInput records one terminal event; wheel notches are also counted
// separately.
func (m *Metrics) RecordInput(wheel bool) {
	m.inputCount.Add(1)
	if wheel {
		m.wheelCount.Add(1)
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime      time.Duration
	Frames      uint64
	LateFrames  uint64
	AvgFrame    time.Duration
	MinFrame    time.Duration
	MaxFrame    time.Duration
	Renders     uint64
	AvgRender   time.Duration
	InputEvents uint64
	WheelEvents uint64
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frames := m.frameCount.Load()
	renders := m.renderCount.Load()

	s := MetricsSnapshot{
		Uptime:      time.Since(m.startTime),
		Frames:      frames,
		LateFrames:  m.lateFrames.Load(),
		MaxFrame:    time.Duration(m.frameMaxNs.Load()),
		Renders:     renders,
		InputEvents: m.inputCount.Load(),
		WheelEvents: m.wheelCount.Load(),
	}
	if frames > 0 {
		s.AvgFrame = time.Duration(m.frameTotalNs.Load() / int64(frames))
		s.MinFrame = time.Duration(m.frameMinNs.Load())
	}
	if renders > 0 {
		s.AvgRender = time.Duration(m.renderTotalNs.Load() / int64(renders))
	}
	return s
}

// AvgFPS returns the average frames per second.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.AvgFrame == 0 {
		return 0
	}
	return float64(time.Second) / float64(s.AvgFrame)
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
