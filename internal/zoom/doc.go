// Package zoom implements smooth, continuous wheel zooming for a map view.
//
// A Handler replaces stepped zoom-level jumps with an animated transition.
// Wheel events are accumulated into a goal zoom level and a frame loop
// eases the view's zoom and center toward it, one step per frame.
//
// # Components
//
// The input accumulator (Handler.OnWheel) normalizes each wheel delta,
// adds it to the goal zoom and rearms a 200ms end-of-gesture timer. The
// first event after a quiet period starts a gesture: it captures the
// anchors (the geographic points under the cursor and under the view
// center) and starts the frame loop.
//
// The animation driver runs once per frame. It closes 30% of the
// remaining gap between the view's zoom and the goal, then re-centers the
// view so that the anchor stays fixed:
//
//   - ModeCursor keeps the point under the cursor under the cursor.
//   - ModeCenter keeps the view center fixed.
//
// The loop stops when the goal is reached and the gesture has ended, or
// as soon as something other than the handler changes the view.
//
// # Usage
//
//	view := mapview.New(mapview.DefaultOptions())
//	loop := frame.NewLoop()
//	h := zoom.New(view, loop, zoom.WithSensitivity(1.5))
//	defer h.Disable()
//
// # Threading
//
// A Handler is not safe for concurrent use. Wheel events, frame callbacks
// and timer callbacks must all run on the scheduler's goroutine; a
// frame.Loop guarantees that when events are delivered through Post.
package zoom
