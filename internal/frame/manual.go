package frame

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler. Frames run only when Step is called
// and timers fire only when Advance moves the virtual clock past their
// deadline. It is not safe for concurrent use.
type Manual struct {
	nextID  FrameID
	frames  []pendingFrame
	timers  []*manualTimer
	now     time.Duration
	seq     uint64
	stepped int
}

type pendingFrame struct {
	id FrameID
	fn func()
}

type manualTimer struct {
	owner    *Manual
	deadline time.Duration
	seq      uint64
	fn       func()
	done     bool
}

// NewManual creates a manual scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// RequestFrame queues fn for the next Step.
func (m *Manual) RequestFrame(fn func()) FrameID {
	m.nextID++
	m.frames = append(m.frames, pendingFrame{id: m.nextID, fn: fn})
	return m.nextID
}

// CancelFrame removes a queued frame request.
func (m *Manual) CancelFrame(id FrameID) {
	for i, f := range m.frames {
		if f.id == id {
			m.frames = append(m.frames[:i], m.frames[i+1:]...)
			return
		}
	}
}

// AfterFunc schedules fn to run when the virtual clock reaches now+d.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{owner: m, deadline: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.owner.removeTimer(t)
	return true
}

func (m *Manual) removeTimer(t *manualTimer) {
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Step runs every frame callback queued before the call. Callbacks
// requested while stepping are deferred to the next Step. It returns the
// number of callbacks run.
func (m *Manual) Step() int {
	frames := m.frames
	m.frames = nil
	for _, f := range frames {
		f.fn()
	}
	m.stepped++
	return len(frames)
}

// RunFrames steps until no frame is pending or max steps have run, and
// returns the number of steps taken.
func (m *Manual) RunFrames(max int) int {
	n := 0
	for n < max && len(m.frames) > 0 {
		m.Step()
		n++
	}
	return n
}

// Advance moves the virtual clock forward by d, firing due timers in
// deadline order.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		due := m.dueTimers(target)
		if len(due) == 0 {
			break
		}
		t := due[0]
		m.now = t.deadline
		t.done = true
		m.removeTimer(t)
		t.fn()
	}
	m.now = target
}

func (m *Manual) dueTimers(target time.Duration) []*manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if t.deadline <= target {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline == due[j].deadline {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline < due[j].deadline
	})
	return due
}

// Now returns the virtual clock.
func (m *Manual) Now() time.Duration {
	return m.now
}

// PendingFrames returns the number of queued frame callbacks.
func (m *Manual) PendingFrames() int {
	return len(m.frames)
}

// PendingTimers returns the number of timers that have not fired or been
// stopped.
func (m *Manual) PendingTimers() int {
	return len(m.timers)
}

// Steps returns how many times Step has been called.
func (m *Manual) Steps() int {
	return m.stepped
}
