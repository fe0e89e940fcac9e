package frame

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a real-time Scheduler. Frame callbacks run on each tick of a
// frame ticker; timers and posted functions are funneled into the same
// goroutine, so every callback runs serialized with every other.
type Loop struct {
	mu     sync.Mutex
	nextID FrameID
	frames []pendingFrame
	hooks  []func(dt time.Duration)

	fps    int
	posted chan func()
	done   chan struct{}

	running atomic.Bool
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFPS sets the frame rate. Non-positive values are ignored.
func WithFPS(fps int) LoopOption {
	return func(l *Loop) {
		if fps > 0 {
			l.fps = fps
		}
	}
}

// WithQueueSize sets the capacity of the posted-function queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.posted = make(chan func(), n)
		}
	}
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		fps:    DefaultFPS,
		posted: make(chan func(), 256),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FPS returns the configured frame rate.
func (l *Loop) FPS() int {
	return l.fps
}

// RequestFrame schedules fn for the next tick. Safe to call from any
// goroutine.
func (l *Loop) RequestFrame(fn func()) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	l.frames = append(l.frames, pendingFrame{id: l.nextID, fn: fn})
	return l.nextID
}

// CancelFrame cancels a pending frame request.
func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

// OnFrame registers a hook that runs on every tick after the frame
// callbacks, with the time elapsed since the previous tick.
func (l *Loop) OnFrame(hook func(dt time.Duration)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, hook)
}

type loopTimer struct {
	timer *time.Timer
	fired atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if !t.fired.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	return true
}

// AfterFunc schedules fn to run on the loop goroutine after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			// Stop may have won the race after the timer fired.
			if t.fired.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Post queues fn to run on the loop goroutine. It blocks while the queue
// is full and returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.posted <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run processes ticks and posted functions until ctx is cancelled.
// Returns ErrLoopRunning if the loop is already running.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	ticker := time.NewTicker(time.Second / time.Duration(l.fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil

		case fn := <-l.posted:
			fn()

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			l.tick(dt)
		}
	}
}

// tick runs the frame callbacks queued before the tick, then the hooks.
func (l *Loop) tick(dt time.Duration) {
	l.mu.Lock()
	frames := l.frames
	l.frames = nil
	hooks := l.hooks
	l.mu.Unlock()

	for _, f := range frames {
		f.fn()
	}
	for _, h := range hooks {
		h(dt)
	}
}

// IsRunning reports whether Run is active. A loop cannot be restarted
// once Run has returned.
func (l *Loop) IsRunning() bool {
	select {
	case <-l.done:
		return false
	default:
		return l.running.Load()
	}
}
