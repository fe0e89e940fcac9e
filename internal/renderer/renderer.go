package renderer

import (
	"math"
	"sync"

	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/renderer/backend"
	"github.com/dshills/smoothzoom/internal/zoom"
)

// Pixel size of one terminal cell. Cells are about twice as tall as wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

// MapView is the view state the renderer reads. *mapview.View implements
// it.
type MapView interface {
	Zoom() float64
	Center() geo.LatLng
	Size() geo.Point
	Resize(size geo.Point)
	ContainerPointToLatLng(pt geo.Point) geo.LatLng
	LatLngToContainerPoint(p geo.LatLng) geo.Point
}

// ZoomStatus is the handler state shown in the status line.
// *zoom.Handler implements it.
type ZoomStatus interface {
	Goal() float64
	Mode() zoom.Mode
	Enabled() bool
	Sensitivity() float64
	State() zoom.State
	Anchor() (geo.LatLng, geo.Point, bool)
}

// Styles used by the renderer.
var (
	gridStyle    = backend.Style{Fg: backend.ColorGray}
	axisStyle    = backend.Style{Fg: backend.ColorCyan}
	centerStyle  = backend.Style{Fg: backend.ColorYellow, Bold: true}
	anchorStyle  = backend.Style{Fg: backend.ColorMagenta, Bold: true}
	statusStyle  = backend.Style{Reverse: true}
	messageStyle = backend.Style{Fg: backend.ColorGreen, Reverse: true}
)

// Renderer draws a MapView and its zoom status into a backend.
type Renderer struct {
	mu sync.Mutex

	backend backend.Backend
	view    MapView
	status  ZoomStatus

	width, height int
	message       string
	frames        int
}

// New creates a renderer and sizes view to the backend.
func New(b backend.Backend, view MapView, status ZoomStatus) *Renderer {
	r := &Renderer{
		backend: b,
		view:    view,
		status:  status,
	}
	w, h := b.Size()
	r.Resize(w, h)
	return r
}

// Resize updates the screen size and the view's container size. The
// bottom row is reserved for the status line.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	r.view.Resize(geo.Pt(float64(width*CellWidth), float64(mapRows(height)*CellHeight)))
}

// CellToContainer returns the container pixel at the center of a cell.
func CellToContainer(x, y int) geo.Point {
	return geo.Pt(float64(x*CellWidth)+CellWidth/2, float64(y*CellHeight)+CellHeight/2)
}

// ContainerToCell returns the cell containing a container pixel.
func ContainerToCell(pt geo.Point) (x, y int) {
	return floorDiv(pt.X, CellWidth), floorDiv(pt.Y, CellHeight)
}

// SetMessage shows msg in the status line until it is replaced.
func (r *Renderer) SetMessage(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.message = msg
}

// Frames returns how many times Render has run.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Render redraws the whole screen.
func (r *Renderer) Render() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.Clear()
	rows := mapRows(r.height)
	r.drawGraticule(rows)
	r.drawMarkers(rows)
	r.drawStatus()
	r.backend.Show()
	r.frames++
}

func (r *Renderer) drawMarkers(rows int) {
	cx, cy := ContainerToCell(r.view.LatLngToContainerPoint(r.view.Center()))
	r.setMapCell(cx, cy, rows, '+', centerStyle)

	if r.status == nil || r.status.State() == zoom.StateIdle {
		return
	}
	if _, pt, ok := r.status.Anchor(); ok {
		ax, ay := ContainerToCell(pt)
		if ax != cx || ay != cy {
			r.setMapCell(ax, ay, rows, '◎', anchorStyle)
		}
	}
}

func (r *Renderer) setMapCell(x, y, rows int, ch rune, style backend.Style) {
	if x < 0 || x >= r.width || y < 0 || y >= rows {
		return
	}
	r.backend.SetCell(x, y, backend.Cell{Rune: ch, Style: style})
}

func mapRows(height int) int {
	if height <= 1 {
		return 0
	}
	return height - 1
}

func floorDiv(v float64, d int) int {
	return int(math.Floor(v / float64(d)))
}
