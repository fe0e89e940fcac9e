package renderer

import (
	"fmt"

	"github.com/dshills/smoothzoom/internal/renderer/backend"
)

// StatusText returns the status line for the current view and handler.
func (r *Renderer) StatusText() string {
	center := r.view.Center()
	text := fmt.Sprintf(" z %.2f", r.view.Zoom())

	if r.status != nil {
		mode := "off"
		if r.status.Enabled() {
			mode = r.status.Mode().String()
		}
		text += fmt.Sprintf(" → %.3f  smooth=%s ×%.2f  %s",
			r.status.Goal(), mode, r.status.Sensitivity(), r.status.State())
	}
	text += fmt.Sprintf("  %s", center)
	return text
}

func (r *Renderer) drawStatus() {
	if r.height == 0 {
		return
	}
	y := r.height - 1

	for x := 0; x < r.width; x++ {
		r.backend.SetCell(x, y, backend.Cell{Rune: ' ', Style: statusStyle})
	}
	x := backend.DrawText(r.backend, 0, y, clip(r.StatusText(), r.width), statusStyle)

	if r.message != "" && x+2 < r.width {
		backend.DrawText(r.backend, x+2, y, clip(r.message, r.width-x-2), messageStyle)
	}
}

func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
