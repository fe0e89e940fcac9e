// Package frame provides cooperative, single-threaded scheduling of
// animation-frame callbacks and timers.
//
// All callbacks scheduled through a Scheduler run one at a time on the
// scheduler's own goroutine, so code driven exclusively by a Scheduler
// needs no locking. Two implementations are provided:
//
//   - Loop: a real-time scheduler driven by a frame ticker.
//   - Manual: a deterministic scheduler stepped explicitly, for tests.
package frame

import "time"

// FrameID identifies a pending frame request. The zero value never
// identifies a request.
type FrameID uint64

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks on a single logical thread.
type Scheduler interface {
	// RequestFrame schedules fn to run once at the next frame.
	RequestFrame(fn func()) FrameID

	// CancelFrame cancels a pending frame request. Unknown or already
	// executed ids are ignored.
	CancelFrame(id FrameID)

	// AfterFunc schedules fn to run once after d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// DefaultFPS is the frame rate used by NewLoop when none is given.
const DefaultFPS = 60
