package mapview

import (
	"math"

	"github.com/dshills/smoothzoom/internal/frame"
	"github.com/dshills/smoothzoom/internal/geo"
)

// DefaultPanFrames is the length of an animated pan.
const DefaultPanFrames = 15

type panAnimation struct {
	sched  frame.Scheduler
	id     frame.FrameID
	from   geo.Point
	to     geo.Point
	zoom   float64
	step   int
	frames int
}

// PanBy pans the view by offset container pixels. With frames > 1 the pan
// is animated over that many frames of sched; otherwise it is applied
// immediately through SetView. A running pan is replaced.
func (v *View) PanBy(offset geo.Point, sched frame.Scheduler, frames int) {
	if geo.IsZeroPoint(offset) {
		return
	}

	v.Stop()

	v.mu.RLock()
	zoom := v.zoom
	from := v.crs.Project(v.center, zoom)
	v.mu.RUnlock()
	to := from.Add(offset)

	if sched == nil || frames <= 1 {
		v.SetView(v.crs.Unproject(to, zoom), zoom)
		return
	}

	anim := &panAnimation{
		sched:  sched,
		from:   from,
		to:     to,
		zoom:   zoom,
		frames: frames,
	}

	v.mu.Lock()
	v.pan = anim
	v.mu.Unlock()

	v.MoveStart()
	anim.id = sched.RequestFrame(func() { v.panStep(anim) })
}

func (v *View) panStep(anim *panAnimation) {
	v.mu.RLock()
	current := v.pan == anim
	v.mu.RUnlock()
	if !current {
		return
	}

	anim.step++
	t := float64(anim.step) / float64(anim.frames)
	// Ease-out cubic.
	k := 1 - math.Pow(1-t, 3)
	pt := anim.from.Add(anim.to.Sub(anim.from).Mul(k))
	v.Move(v.crs.Unproject(pt, anim.zoom), anim.zoom)

	if anim.step >= anim.frames {
		v.mu.Lock()
		v.pan = nil
		v.mu.Unlock()
		v.MoveEnd()
		return
	}
	anim.id = anim.sched.RequestFrame(func() { v.panStep(anim) })
}

// IsAnimating reports whether a pan animation is running.
func (v *View) IsAnimating() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pan != nil
}

// Stop halts a running pan animation where it is and closes its move
// transaction. It is a no-op when nothing is animating.
func (v *View) Stop() {
	v.mu.Lock()
	anim := v.pan
	v.pan = nil
	v.mu.Unlock()

	if anim == nil {
		return
	}
	anim.sched.CancelFrame(anim.id)
	v.MoveEnd()
}
