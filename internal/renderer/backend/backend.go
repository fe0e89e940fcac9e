// Package backend abstracts the display the map is drawn on and the input
// events it produces.
package backend

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	// EventInterrupt wakes a blocked PollEvent, e.g. during shutdown.
	EventInterrupt
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse event fields, in cells
	MouseX, MouseY int
	MouseButton    MouseButton

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for the keys the viewer handles.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton represents mouse button state.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// IsWheel reports whether b is a wheel notch.
func (b MouseButton) IsWheel() bool {
	return b == MouseWheelUp || b == MouseWheelDown
}

// Color is a named terminal palette color.
type Color int

const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray
)

// Style is the foreground, background and emphasis of a cell.
type Style struct {
	Fg, Bg  Color
	Bold    bool
	Reverse bool
}

// DefaultStyle uses the terminal's colors.
var DefaultStyle = Style{}

// Cell is one character position on screen.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell is a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// Backend defines the interface for display backends.
type Backend interface {
	// Init prepares the display. It must be called before any other method.
	Init() error

	// Shutdown releases the display and restores terminal state.
	Shutdown()

	// Size returns the display size in cells.
	Size() (width, height int)

	// SetCell sets a single cell. Positions outside the display are ignored.
	SetCell(x, y int, cell Cell)

	// Clear clears the display with the default style.
	Clear()

	// Show flushes pending changes to the display.
	Show()

	// PollEvent waits for and returns the next event.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)
}

// DrawText writes s starting at (x, y) and returns the x after the last
// rune written.
func DrawText(b Backend, x, y int, s string, style Style) int {
	for _, r := range s {
		b.SetCell(x, y, Cell{Rune: r, Style: style})
		x++
	}
	return x
}
