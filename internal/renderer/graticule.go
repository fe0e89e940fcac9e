package renderer

import (
	"math"

	"github.com/dshills/smoothzoom/internal/geo"
	"github.com/dshills/smoothzoom/internal/renderer/backend"
)

// gridSteps are graticule spacings in degrees, coarse to fine.
var gridSteps = []float64{
	90, 45, 30, 15, 10, 5, 2, 1,
	0.5, 0.25, 0.1, 0.05, 0.025, 0.01,
	0.005, 0.0025, 0.001, 0.0005, 0.00025, 0.0001,
}

// minGridCells is the minimum horizontal distance between meridians.
const minGridCells = 6

// GridStep returns the graticule spacing in degrees for zoom: the finest
// step that keeps meridians at least minGridCells cells apart.
func GridStep(zoom float64) float64 {
	degPerCell := 360 / (geo.TileSize * math.Pow(2, zoom)) * CellWidth
	step := gridSteps[0]
	for _, s := range gridSteps {
		if s < degPerCell*minGridCells {
			break
		}
		step = s
	}
	return step
}

// gridLine reports whether a graticule line lies in [lo, hi) and whether it
// is the zero line.
func gridLine(a, b, step float64) (crosses, zero bool) {
	lo, hi := math.Min(a, b), math.Max(a, b)
	k := math.Floor(hi / step)
	if k == math.Floor(lo/step) {
		return false, false
	}
	return true, k == 0
}

// drawGraticule draws parallels and meridians. Web Mercator keeps
// longitude a function of x and latitude a function of y, so one lookup
// per column and per row is enough.
func (r *Renderer) drawGraticule(rows int) {
	if rows == 0 || r.width == 0 {
		return
	}
	step := GridStep(r.view.Zoom())

	lngs := make([]float64, r.width+1)
	for x := range lngs {
		lngs[x] = r.view.ContainerPointToLatLng(geo.Pt(float64(x*CellWidth), 0)).Lng()
	}
	lats := make([]float64, rows+1)
	for y := range lats {
		lats[y] = r.view.ContainerPointToLatLng(geo.Pt(0, float64(y*CellHeight))).Lat()
	}

	for y := 0; y < rows; y++ {
		parallel, equator := gridLine(lats[y], lats[y+1], step)
		for x := 0; x < r.width; x++ {
			meridian, prime := gridLine(lngs[x], lngs[x+1], step)

			var ch rune
			style := gridStyle
			switch {
			case parallel && meridian:
				ch = '┼'
				if equator || prime {
					style = axisStyle
				}
			case parallel:
				ch = '─'
				if equator {
					style = axisStyle
				}
			case meridian:
				ch = '│'
				if prime {
					style = axisStyle
				}
			default:
				continue
			}
			r.backend.SetCell(x, y, backend.Cell{Rune: ch, Style: style})
		}
	}
}
