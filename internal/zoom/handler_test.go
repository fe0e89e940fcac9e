package zoom

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/smoothzoom/internal/frame"
	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/mapview"
	"github.com/dshills/smoothzoom/internal/policy"
)

const maxFrames = 500

func newView() *mapview.View {
	return mapview.New(mapview.Options{
		Center:  geo.NewLatLng(48.8566, 2.3522),
		Zoom:    10,
		MinZoom: 0,
		MaxZoom: 18,
		Size:    geo.Pt(800, 600),
	})
}

func setup(t *testing.T, opts ...Option) (*mapview.View, *frame.Manual, *Handler) {
	t.Helper()
	view := newView()
	sched := frame.NewManual()
	return view, sched, New(view, sched, opts...)
}

// notch returns a pixel-mode event whose normalized magnitude is mag.
func notch(x, y, mag float64) *mapview.WheelEvent {
	return &mapview.WheelEvent{Client: geo.Pt(x, y), DeltaY: -mag, DeltaMode: mapview.DeltaPixel}
}

// endGestureAndSettle lets the debounce timer fire and runs frames until
// the loop stops.
func endGestureAndSettle(t *testing.T, sched *frame.Manual) int {
	t.Helper()
	sched.Advance(DefaultDebounce)
	n := sched.RunFrames(maxFrames)
	require.Less(t, n, maxFrames, "loop did not terminate")
	return n
}

func TestNormalizeDelta(t *testing.T) {
	tests := []struct {
		name string
		ev   *mapview.WheelEvent
		want float64
	}{
		{"nil event", nil, 0},
		{"empty event", &mapview.WheelEvent{}, 0},
		{"pixel down", &mapview.WheelEvent{DeltaY: 4, DeltaMode: mapview.DeltaPixel}, -4},
		{"pixel up hidpi", &mapview.WheelEvent{DeltaY: -4, PixelRatio: 2}, 2},
		{"line up", &mapview.WheelEvent{DeltaY: -3, DeltaMode: mapview.DeltaLine}, 60},
		{"page down", &mapview.WheelEvent{DeltaY: 1, DeltaMode: mapview.DeltaPage}, -60},
		{"legacy wheel delta", &mapview.WheelEvent{WheelDelta: 120}, 60},
		{"nan delta", &mapview.WheelEvent{DeltaY: math.NaN()}, 0},
		{"infinite delta", &mapview.WheelEvent{DeltaY: math.Inf(1), DeltaMode: mapview.DeltaLine}, 0},
		{"bad pixel ratio", &mapview.WheelEvent{DeltaY: -5, PixelRatio: math.NaN()}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDelta(tt.ev))
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      any
		want    Mode
		wantErr bool
	}{
		{true, ModeCursor, false},
		{false, ModeOff, false},
		{"center", ModeCenter, false},
		{"Center", ModeCenter, false},
		{"true", ModeCursor, false},
		{"false", ModeOff, false},
		{"cursor", ModeCursor, false},
		{"off", ModeOff, false},
		{ModeCenter, ModeCenter, false},
		{"sideways", ModeOff, true},
		{42, ModeOff, true},
		{Mode(9), ModeOff, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSingleNotchScenario(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(600, 200, 1))
	assert.InDelta(t, 10.003, h.Goal(), 1e-12)

	endGestureAndSettle(t, sched)

	assert.Equal(t, "10.00", fmt.Sprintf("%.2f", view.Zoom()))
	assert.Equal(t, StateIdle, h.State())
	assert.False(t, view.IsMoving())
	assert.Zero(t, sched.PendingFrames())
	assert.Zero(t, sched.PendingTimers())
}

func TestTenNotchScenario(t *testing.T) {
	view, sched, h := setup(t)

	for i := 0; i < 10; i++ {
		h.OnWheel(notch(600, 200, 1))
	}
	assert.InDelta(t, 10.03, h.Goal(), 1e-9)
	assert.Equal(t, 10.0, view.Zoom(), "no frame has run yet")

	endGestureAndSettle(t, sched)

	assert.InDelta(t, 10.03, view.Zoom(), 1e-9)
	assert.False(t, view.IsMoving())
	stats := view.Stats()
	assert.Equal(t, 1, stats.MoveStarts)
	assert.Equal(t, 1, stats.MoveEnds)
	assert.Equal(t, "converged", h.Stats().LastStop)
}

func TestEventsAccumulateBetweenFrames(t *testing.T) {
	view, sched, h := setup(t, WithSensitivity(2))

	h.OnWheel(notch(500, 300, 100))
	h.OnWheel(notch(500, 300, 100))
	h.OnWheel(notch(500, 300, 50))

	assert.InDelta(t, 10+250*2*0.003, h.Goal(), 1e-9)
	assert.Equal(t, 1, sched.PendingFrames())

	sched.Step()
	// 30% of the 1.5 gap, truncated to hundredths.
	assert.InDelta(t, 10.45, view.Zoom(), 1e-9)
}

func TestConvergenceIsMonotonic(t *testing.T) {
	sequences := []struct {
		name  string
		start float64
		mags  []float64
	}{
		{"zoom in", 10, []float64{100, 100, 100}},
		{"zoom out", 10, []float64{-120, -60}},
		{"tiny in", 10, []float64{2, 2, 1}},
		{"tiny out", 10, []float64{-3, -2}},
		{"off grid start", 7.3333, []float64{100}},
		{"off grid out", 7.3333, []float64{-100}},
		{"mixed", 12, []float64{300, -50, -400, 20}},
	}

	for _, seq := range sequences {
		t.Run(seq.name, func(t *testing.T) {
			view, sched, h := setup(t)
			view.SetZoom(seq.start)

			for _, m := range seq.mags {
				h.OnWheel(notch(620, 180, m))
				sched.Step()
			}
			sched.Advance(DefaultDebounce)

			prev := math.Abs(h.Goal() - view.Zoom())
			frames := 0
			for sched.PendingFrames() > 0 {
				sched.Step()
				frames++
				require.Less(t, frames, maxFrames, "loop did not terminate")

				gap := math.Abs(h.Goal() - view.Zoom())
				assert.LessOrEqual(t, gap, prev+1e-9, "gap grew at frame %d", frames)
				prev = gap
			}
			assert.Less(t, math.Abs(h.Goal()-view.Zoom()), convergeEpsilon)
		})
	}
}

func TestHalfHundredthGoalsSettle(t *testing.T) {
	goals := []float64{10.195, 9.865}
	for i := 1; i <= 100; i++ {
		goals = append(goals, 10+float64(i)*0.005, 10-float64(i)*0.005)
	}

	for _, goal := range goals {
		view, sched, h := setup(t)
		h.OnWheel(notch(620, 180, (goal-10)/wheelScale))
		h.goalZoom = goal

		sched.Advance(DefaultDebounce)
		n := sched.RunFrames(maxFrames)
		require.Less(t, n, maxFrames, "goal %v never settled, zoom %v", goal, view.Zoom())

		assert.Equal(t, StateIdle, h.State(), "goal %v", goal)
		assert.Equal(t, "converged", h.Stats().LastStop, "goal %v", goal)
		assert.Less(t, math.Abs(goal-view.Zoom()), convergeEpsilon, "goal %v", goal)
		assert.False(t, view.IsMoving())
	}
}

func TestLimitsLoweredMidGesture(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(600, 200, 1000))
	require.InDelta(t, 13.0, h.Goal(), 1e-9)
	sched.Step()
	require.Greater(t, view.Zoom(), 10.5)

	view.SetZoomLimits(0, 10.5)
	endGestureAndSettle(t, sched)

	assert.InDelta(t, 10.5, view.Zoom(), 1e-9)
	assert.InDelta(t, 10.5, h.Goal(), 1e-9)
	assert.Equal(t, StateIdle, h.State())
	assert.Equal(t, "converged", h.Stats().LastStop)
}

func TestLimitsRaisedMidGesture(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(600, 200, -1000))
	require.InDelta(t, 7.0, h.Goal(), 1e-9)
	sched.Step()

	view.SetZoomLimits(9.5, 18)
	endGestureAndSettle(t, sched)

	assert.InDelta(t, 9.5, view.Zoom(), 1e-9)
	assert.Equal(t, StateIdle, h.State())
}

func TestCursorAnchorInvariance(t *testing.T) {
	view, sched, h := setup(t)

	cursor := geo.Pt(650, 140)
	anchor := view.ContainerPointToLatLng(cursor)

	for i := 0; i < 5; i++ {
		h.OnWheel(notch(cursor.X, cursor.Y, 120))
		sched.Step()
		assertUnderCursor(t, view, anchor, cursor)
	}

	sched.Advance(DefaultDebounce)
	for sched.PendingFrames() > 0 {
		sched.Step()
		assertUnderCursor(t, view, anchor, cursor)
	}

	assert.Greater(t, view.Zoom(), 11.0)
}

func TestCursorAnchorInvarianceZoomingOut(t *testing.T) {
	view, sched, h := setup(t)

	cursor := geo.Pt(90, 520)
	anchor := view.ContainerPointToLatLng(cursor)

	h.OnWheel(notch(cursor.X, cursor.Y, -500))
	for sched.PendingFrames() > 0 {
		sched.Step()
		if sched.Steps() == 3 {
			sched.Advance(DefaultDebounce)
		}
		assertUnderCursor(t, view, anchor, cursor)
	}

	assert.Less(t, view.Zoom(), 9.0)
}

func assertUnderCursor(t *testing.T, view *mapview.View, anchor geo.LatLng, cursor geo.Point) {
	t.Helper()
	pt := view.LatLngToContainerPoint(anchor)
	assert.InDelta(t, cursor.X, pt.X, 1, "anchor drifted horizontally at zoom %.2f", view.Zoom())
	assert.InDelta(t, cursor.Y, pt.Y, 1, "anchor drifted vertically at zoom %.2f", view.Zoom())
}

func TestCenterModeKeepsCenter(t *testing.T) {
	view, sched, h := setup(t, WithMode(ModeCenter))
	start := view.Center()

	for i := 0; i < 4; i++ {
		h.OnWheel(notch(100, 100, 150))
		sched.Step()
		assert.True(t, view.Center().Equal(start), "center moved at zoom %.2f", view.Zoom())
	}

	sched.Advance(DefaultDebounce)
	for sched.PendingFrames() > 0 {
		sched.Step()
		assert.True(t, view.Center().Equal(start))
	}

	assert.InDelta(t, h.Goal(), view.Zoom(), convergeEpsilon)
	assert.Greater(t, view.Zoom(), 11.0)

	anchor, pt, ok := h.Anchor()
	require.True(t, ok)
	assert.True(t, anchor.Equal(start))
	assert.InDelta(t, 400, pt.X, 1e-6)
	assert.InDelta(t, 300, pt.Y, 1e-6)
}

func TestGoalClamping(t *testing.T) {
	view, sched, h := setup(t)

	for i := 0; i < 20; i++ {
		h.OnWheel(notch(500, 200, 10000))
		assert.LessOrEqual(t, h.Goal(), view.MaxZoom())
		assert.GreaterOrEqual(t, h.Goal(), view.MinZoom())
	}
	assert.Equal(t, 18.0, h.Goal())

	for i := 0; i < 20; i++ {
		h.OnWheel(notch(500, 200, -10000))
		assert.LessOrEqual(t, h.Goal(), view.MaxZoom())
		assert.GreaterOrEqual(t, h.Goal(), view.MinZoom())
	}
	assert.Equal(t, 0.0, h.Goal())

	endGestureAndSettle(t, sched)
	assert.GreaterOrEqual(t, view.Zoom(), 0.0)
	assert.Less(t, view.Zoom(), convergeEpsilon)
}

func TestClampUsesViewPolicyOnlyOutOfRange(t *testing.T) {
	view, _, h := setup(t)

	calls := 0
	view.SetPolicy(func(zoom, min, max float64) float64 {
		calls++
		return policy.Snap(0.25)(zoom, min, max)
	})
	view.SetZoomLimits(0, 12)

	h.OnWheel(notch(500, 200, 1))
	assert.InDelta(t, 10.003, h.Goal(), 1e-12, "in-range goal must not be snapped")
	assert.Zero(t, calls)

	h.OnWheel(notch(500, 200, 1000))
	assert.Equal(t, 12.0, h.Goal())
	assert.Equal(t, 1, calls, "out-of-range goal goes through the view policy")
}

func TestZeroOffsetSkipsUpdate(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(400, 300, 200))
	sched.Step()

	assert.Zero(t, view.Stats().Moves, "cursor at center must not move the view")
	assert.Equal(t, 10.0, view.Zoom())
	assert.Equal(t, 1, sched.PendingFrames(), "loop must stay alive")

	h.OnWheel(notch(500, 300, 1))
	sched.Step()
	assert.Equal(t, 1, view.Stats().Moves)
	assert.Greater(t, view.Zoom(), 10.0)

	endGestureAndSettle(t, sched)
	assert.InDelta(t, h.Goal(), view.Zoom(), convergeEpsilon)
}

func TestZeroOffsetStopsAfterGestureEnds(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(400, 300, 200))
	sched.Step()
	endGestureAndSettle(t, sched)

	assert.Equal(t, StateIdle, h.State())
	assert.Equal(t, 10.0, view.Zoom())
	assert.Zero(t, view.Stats().MoveStarts)
}

func TestInterferenceAbortsLoop(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(600, 200, 300))
	sched.Step()
	sched.Step()
	require.Equal(t, 2, view.Stats().Moves)

	other := geo.NewLatLng(40.7128, -74.006)
	view.SetView(other, 5)
	sched.Step()

	assert.Zero(t, sched.PendingFrames())
	assert.Zero(t, sched.PendingTimers())
	assert.Equal(t, 2, view.Stats().Moves, "no commit after interference")
	assert.Zero(t, view.Stats().MoveEnds, "abandoned transaction is not closed")
	assert.False(t, view.IsMoving(), "reset view drops the abandoned transaction")
	assert.Equal(t, 5.0, view.Zoom())
	assert.True(t, view.Center().Equal(other))
	assert.Equal(t, StateIdle, h.State())
	assert.False(t, h.Wheeling())
	assert.Equal(t, "interfered", h.Stats().LastStop)

	// The next wheel event starts a fresh gesture from the new view.
	h.OnWheel(notch(600, 200, 1))
	assert.InDelta(t, 5.003, h.Goal(), 1e-12)
	assert.Equal(t, 2, h.Stats().Gestures)
}

func TestPanAnimationIsStoppedAtGestureStart(t *testing.T) {
	view, sched, h := setup(t)

	view.PanBy(geo.Pt(100, 0), sched, 10)
	sched.Step()
	require.True(t, view.IsAnimating())

	h.OnWheel(notch(600, 200, 100))
	assert.False(t, view.IsAnimating())

	endGestureAndSettle(t, sched)
	assert.Equal(t, "converged", h.Stats().LastStop)
	assert.InDelta(t, h.Goal(), view.Zoom(), convergeEpsilon)
}

func TestNewGestureFeedsRunningLoop(t *testing.T) {
	view, sched, h := setup(t)

	h.OnWheel(notch(600, 200, 300))
	sched.Step()
	sched.Advance(DefaultDebounce)
	require.Equal(t, StateConverging, h.State())

	h.OnWheel(notch(600, 200, 300))
	assert.Equal(t, 1, sched.PendingFrames(), "a second loop must not start")
	assert.Equal(t, StateGestureActive, h.State())
	assert.Equal(t, 2, h.Stats().Gestures)

	endGestureAndSettle(t, sched)
	assert.Equal(t, 1, view.Stats().MoveStarts)
	assert.Equal(t, 1, view.Stats().MoveEnds)
}

func TestStateTransitions(t *testing.T) {
	_, sched, h := setup(t)
	assert.Equal(t, StateIdle, h.State())

	h.OnWheel(notch(600, 200, 300))
	assert.Equal(t, StateGestureActive, h.State())

	sched.Step()
	assert.Equal(t, StateAnimating, h.State())

	sched.Advance(DefaultDebounce)
	assert.Equal(t, StateConverging, h.State())

	sched.RunFrames(maxFrames)
	assert.Equal(t, StateIdle, h.State())
}

func TestDebounceIsRearmed(t *testing.T) {
	_, sched, h := setup(t)

	h.OnWheel(notch(600, 200, 1))
	sched.Advance(150 * time.Millisecond)
	h.OnWheel(notch(600, 200, 1))
	sched.Advance(150 * time.Millisecond)
	assert.True(t, h.Wheeling())
	assert.Equal(t, 1, sched.PendingTimers())

	sched.Advance(50 * time.Millisecond)
	assert.False(t, h.Wheeling())
	assert.Zero(t, sched.PendingTimers())
	assert.InDelta(t, 10.006, h.Goal(), 1e-12, "timer must not touch the goal")
}

func TestCustomDebounce(t *testing.T) {
	_, sched, h := setup(t, WithDebounce(50*time.Millisecond))

	h.OnWheel(notch(600, 200, 1))
	sched.Advance(49 * time.Millisecond)
	assert.True(t, h.Wheeling())
	sched.Advance(time.Millisecond)
	assert.False(t, h.Wheeling())
}

func TestWheelEventIsConsumed(t *testing.T) {
	view, _, h := setup(t)

	later := 0
	view.OnWheel(func(*mapview.WheelEvent) { later++ })

	ev := notch(600, 200, 1)
	assert.True(t, view.DispatchWheel(ev))
	assert.True(t, ev.PropagationStopped())
	assert.Zero(t, later)
	assert.True(t, h.Wheeling())
}

func TestMalformedEventHasNoEffect(t *testing.T) {
	_, _, h := setup(t)

	h.OnWheel(&mapview.WheelEvent{Client: geo.Pt(600, 200), DeltaY: math.NaN()})
	assert.Equal(t, 10.0, h.Goal())
	assert.True(t, h.Wheeling())

	h.OnWheel(nil)
	assert.Equal(t, 10.0, h.Goal())
}

func TestDisableIsIdempotent(t *testing.T) {
	view, sched, h := setup(t)

	h.Disable()
	h.Disable()
	assert.False(t, h.Enabled())
	assert.Zero(t, view.WheelListeners())

	h.Enable()
	h.Enable()
	assert.True(t, h.Enabled())
	assert.Equal(t, 1, view.WheelListeners())

	h.OnWheel(notch(600, 200, 300))
	sched.Step()
	require.True(t, view.IsMoving())

	h.Disable()
	assert.Zero(t, sched.PendingFrames())
	assert.Zero(t, sched.PendingTimers())
	assert.Zero(t, view.WheelListeners())
	assert.False(t, view.IsMoving(), "open transaction is closed on disable")
	assert.Equal(t, StateIdle, h.State())

	h.Disable()
	assert.Zero(t, sched.PendingFrames())

	// Events delivered directly to a disabled handler are ignored.
	goal := h.Goal()
	h.OnWheel(notch(600, 200, 300))
	assert.Equal(t, goal, h.Goal())
}

func TestModeOffStartsDisabled(t *testing.T) {
	view, sched, h := setup(t, WithMode(ModeOff))
	assert.False(t, h.Enabled())
	assert.Zero(t, view.WheelListeners())

	view.DispatchWheel(notch(600, 200, 100))
	assert.Zero(t, sched.PendingFrames())

	h.SetMode(ModeCenter)
	assert.True(t, h.Enabled())
	assert.Equal(t, ModeCenter, h.Mode())

	h.SetMode(ModeOff)
	assert.False(t, h.Enabled())

	h.Enable()
	assert.Equal(t, ModeCenter, h.Mode())
}

func TestSetSensitivity(t *testing.T) {
	_, _, h := setup(t, WithSensitivity(-1))
	assert.Equal(t, DefaultSensitivity, h.Sensitivity())

	h.SetSensitivity(3)
	h.SetSensitivity(0)
	h.SetSensitivity(math.NaN())
	assert.Equal(t, 3.0, h.Sensitivity())

	h.OnWheel(notch(600, 200, 1))
	assert.InDelta(t, 10.009, h.Goal(), 1e-12)
}

// bareView exposes only the required View methods, hiding the optional
// converter, locator and stopper capabilities of *mapview.View.
type bareView struct {
	v *mapview.View
}

func (b bareView) Zoom() float64                               { return b.v.Zoom() }
func (b bareView) Center() geo.LatLng                          { return b.v.Center() }
func (b bareView) MinZoom() float64                            { return b.v.MinZoom() }
func (b bareView) MaxZoom() float64                            { return b.v.MaxZoom() }
func (b bareView) LimitZoom(z float64) float64                 { return b.v.LimitZoom(z) }
func (b bareView) Project(p geo.LatLng, z float64) geo.Point   { return b.v.Project(p, z) }
func (b bareView) Unproject(p geo.Point, z float64) geo.LatLng { return b.v.Unproject(p, z) }
func (b bareView) Size() geo.Point                             { return b.v.Size() }
func (b bareView) MoveStart()                                  { b.v.MoveStart() }
func (b bareView) Move(c geo.LatLng, z float64)                { b.v.Move(c, z) }
func (b bareView) MoveEnd()                                    { b.v.MoveEnd() }
func (b bareView) OnWheel(fn mapview.WheelFunc) mapview.ListenerID {
	return b.v.OnWheel(fn)
}
func (b bareView) OffWheel(id mapview.ListenerID) { b.v.OffWheel(id) }

func TestFallbackWithoutOptionalCapabilities(t *testing.T) {
	view := newView()
	sched := frame.NewManual()
	h := New(bareView{v: view}, sched)

	cursor := geo.Pt(700, 50)
	anchor := view.ContainerPointToLatLng(cursor)

	for i := 0; i < 3; i++ {
		h.OnWheel(notch(cursor.X, cursor.Y, 200))
		sched.Step()
		assertUnderCursor(t, view, anchor, cursor)
	}
	endGestureAndSettle(t, sched)
	assertUnderCursor(t, view, anchor, cursor)

	_, pt, ok := h.Anchor()
	require.True(t, ok)
	assert.InDelta(t, cursor.X, pt.X, 1)
	assert.InDelta(t, cursor.Y, pt.Y, 1)
}

func TestEventLocatorOffset(t *testing.T) {
	view, sched, h := setup(t)
	view.SetOrigin(geo.Pt(0, 1))

	// Client (400, 301) is the container center once the origin is applied.
	h.OnWheel(notch(400, 301, 200))
	sched.Step()
	assert.Zero(t, view.Stats().Moves)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(msg, args...))
}

func TestLoggerReceivesLifecycle(t *testing.T) {
	log := &recordingLogger{}
	_, sched, h := setup(t, WithLogger(log))

	h.OnWheel(notch(600, 200, 100))
	endGestureAndSettle(t, sched)
	h.Disable()

	require.GreaterOrEqual(t, len(log.lines), 4)
	assert.Contains(t, log.lines[0], "enabled")
	assert.Contains(t, log.lines[1], "gesture start")
	assert.Contains(t, log.lines[len(log.lines)-1], "disabled")
}

func TestAnchorBeforeGesture(t *testing.T) {
	_, _, h := setup(t)

	_, _, ok := h.Anchor()
	assert.False(t, ok)
}
