package app

import (
	"fmt"

	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/mapview"
	"github.com/dshills/smoothzoom/internal/renderer"
	"github.com/dshills/smoothzoom/internal/renderer/backend"
	"github.com/dshills/smoothzoom/internal/zoom"
)

// A terminal reports one event per wheel notch. Browsers report a notch
// as three lines, and so do we.
const wheelLinesPerNotch = 3

// Sensitivity adjustment per keypress, and its lower bound.
const (
	sensitivityStep = 0.25
	minSensitivity  = 0.25
)

// panFraction is the share of the view size an arrow key pans.
const panFraction = 0.25

// handleBackendEvent processes a backend event and routes it appropriately.
// Returns ErrQuit if the application should exit.
func (app *Application) handleBackendEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		return app.handleResize(ev)
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventMouse:
		return app.handleMouseEvent(ev)
	default:
		return nil
	}
}

// handleResize processes terminal resize events.
func (app *Application) handleResize(ev backend.Event) error {
	if app.renderer != nil {
		app.renderer.Resize(ev.Width, ev.Height)
		app.dirty = true
	}
	return nil
}

// handleMouseEvent turns wheel notches into wheel events on the view.
// Other mouse input is ignored.
func (app *Application) handleMouseEvent(ev backend.Event) error {
	if !ev.MouseButton.IsWheel() {
		return nil
	}

	we := wheelEvent(ev)
	app.view.DispatchWheel(we)
	return nil
}

// wheelEvent converts a wheel notch at a terminal cell into a line-mode
// wheel event positioned at the cell's center pixel.
func wheelEvent(ev backend.Event) *mapview.WheelEvent {
	dy := float64(wheelLinesPerNotch)
	if ev.MouseButton == backend.MouseWheelUp {
		dy = -dy
	}
	return &mapview.WheelEvent{
		Client:    renderer.CellToContainer(ev.MouseX, ev.MouseY),
		DeltaY:    dy,
		DeltaMode: mapview.DeltaLine,
	}
}

// handleKeyEvent processes keyboard input.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyEscape, backend.KeyCtrlC:
		return ErrQuit
	case backend.KeyUp:
		app.pan(0, -1)
	case backend.KeyDown:
		app.pan(0, 1)
	case backend.KeyLeft:
		app.pan(-1, 0)
	case backend.KeyRight:
		app.pan(1, 0)
	case backend.KeyRune:
		return app.handleRune(ev.Rune)
	}
	return nil
}

func (app *Application) handleRune(r rune) error {
	switch r {
	case 'q', 'Q':
		return ErrQuit
	case 'c':
		app.toggleCenterMode()
	case 's':
		app.toggleSmoothZoom()
	case '+', '=':
		app.adjustSensitivity(sensitivityStep)
	case '-', '_':
		app.adjustSensitivity(-sensitivityStep)
	case 'r':
		app.resetView()
	}
	return nil
}

// pan starts an animated pan of a quarter view in direction (dx, dy). A
// running zoom animation sees the move and yields.
func (app *Application) pan(dx, dy float64) {
	size := app.view.Size()
	offset := geo.Pt(dx*size.X*panFraction, dy*size.Y*panFraction)
	app.view.PanBy(offset, app.loop, mapview.DefaultPanFrames)
}

// toggleCenterMode switches the zoom anchor between cursor and center.
// While smooth zoom is off only the mode to restore changes.
func (app *Application) toggleCenterMode() {
	mode := zoom.ModeCenter
	if app.lastMode == zoom.ModeCenter {
		mode = zoom.ModeCursor
	}
	app.lastMode = mode
	if !app.handler.Enabled() {
		app.notify("zoom anchor: %s (smooth zoom off)", anchorName(mode))
		return
	}
	app.handler.SetMode(mode)
	app.notify("zoom anchor: %s", anchorName(mode))
}

// toggleSmoothZoom disables or re-enables the handler.
func (app *Application) toggleSmoothZoom() {
	if app.handler.Enabled() {
		app.handler.SetMode(zoom.ModeOff)
		app.notify("smooth zoom off")
		return
	}
	app.handler.SetMode(app.lastMode)
	app.notify("smooth zoom on")
}

func (app *Application) adjustSensitivity(delta float64) {
	s := app.handler.Sensitivity() + delta
	if s < minSensitivity {
		s = minSensitivity
	}
	app.handler.SetSensitivity(s)
	app.notify("sensitivity %.2f", app.handler.Sensitivity())
}

// resetView returns to the configured center and zoom.
func (app *Application) resetView() {
	app.view.SetView(app.cfg.Center(), app.cfg.Map.Zoom)
	app.notify("view reset")
}

// notify shows a status message and logs it.
func (app *Application) notify(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	app.log.Debug("%s", msg)
	if app.renderer != nil {
		app.renderer.SetMessage(msg)
	}
	app.dirty = true
}

func anchorName(m zoom.Mode) string {
	if m == zoom.ModeCenter {
		return "center"
	}
	return "cursor"
}
