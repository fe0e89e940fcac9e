// Package renderer draws a map view into a display backend.
//
// The map is drawn as a latitude/longitude graticule so that zoom and
// pan are visible without tiles. Each terminal cell stands for a block of
// container pixels (CellWidth by CellHeight), which keeps the view's
// pixel math identical to a graphical map.
//
// Layout:
//
//	┌──────────────────────────────────────┐
//	│   │       │       │       │          │
//	│───┼───────┼───────┼───────┼───────── │  graticule
//	│   │       │   +   │  ◎    │          │  center, anchor
//	│───┼───────┼───────┼───────┼───────── │
//	├──────────────────────────────────────┤
//	│ z 10.03 → 10.45  cursor ×1.00  anim  │  status line
//	└──────────────────────────────────────┘
//
// Usage:
//
//	r := renderer.New(b, view, handler)
//	r.Render()
package renderer
