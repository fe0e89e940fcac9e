package backend

import "sync"

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	cells         [][]Cell
	shows         int
	events        chan Event
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	b := &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
	b.cells = newCells(width, height)
	return b
}

func newCells(width, height int) [][]Cell {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = EmptyCell()
		}
	}
	return cells
}

func (b *NullBackend) Init() error { return nil }
func (b *NullBackend) Shutdown()   {}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

// GetCell returns the cell at (x, y), or an empty cell off screen.
func (b *NullBackend) GetCell(x, y int) Cell {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return EmptyCell()
}

func (b *NullBackend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = newCells(b.width, b.height)
}

func (b *NullBackend) Show() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows++
}

// Shows returns how many times Show was called.
func (b *NullBackend) Shows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shows
}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Dropped when the queue is full.
	}
}

// Line returns row y as a string.
func (b *NullBackend) Line(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.height {
		return ""
	}
	runes := make([]rune, b.width)
	for x, c := range b.cells[y] {
		runes[x] = c.Rune
	}
	return string(runes)
}

// Resize simulates a terminal resize and queues an EventResize.
func (b *NullBackend) Resize(width, height int) {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.cells = newCells(width, height)
	b.mu.Unlock()

	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
