package layout

import (
	"github.com/KevinKickass/OpenPanelCore/internal/types"
)

// ApplyLayoutChange commits a layout proposal from the rendering surface
// back into the widget collection. Each cell is clamped so it cannot
// slide off the 12-column grid; collision handling is the rendering
// surface's packing job, not ours. Cells whose key matches no widget are
// ignored. The input slice is not mutated.
func ApplyLayoutChange(widgets []types.Widget, raw []types.GridCell) []types.Widget {
	byKey := make(map[string]types.GridCell, len(raw))
	for _, cell := range raw {
		byKey[cell.I] = Clamp(cell)
	}

	out := make([]types.Widget, len(widgets))
	copy(out, widgets)
	for i := range out {
		if cell, ok := byKey[out[i].ID]; ok {
			out[i].Layout.X = cell.X
			out[i].Layout.Y = cell.Y
			out[i].Layout.W = cell.W
			out[i].Layout.H = cell.H
		}
	}
	return out
}

// Clamp forces a cell inside the grid: w,h at least 1, w at most the grid
// width, x pulled back so x+w fits, y floored at 0.
func Clamp(cell types.GridCell) types.GridCell {
	if cell.W < 1 {
		cell.W = 1
	}
	if cell.W > types.GridColumns {
		cell.W = types.GridColumns
	}
	if cell.H < 1 {
		cell.H = 1
	}
	if cell.X < 0 {
		cell.X = 0
	}
	if cell.X+cell.W > types.GridColumns {
		cell.X = types.GridColumns - cell.W
	}
	if cell.Y < 0 {
		cell.Y = 0
	}
	return cell
}

// NextRow returns the first free row below all existing widgets. New
// widgets are appended here so they never overlap prior content.
func NextRow(widgets []types.Widget) int {
	bottom := 0
	for _, w := range widgets {
		if b := w.Layout.Y + w.Layout.H; b > bottom {
			bottom = b
		}
	}
	return bottom
}

// Append places a new widget below all existing content and returns the
// extended collection.
func Append(widgets []types.Widget, w types.Widget) []types.Widget {
	w.Layout.Y = NextRow(widgets)
	w.Layout = Clamp(w.Layout)
	return append(widgets, w)
}

// Remove deletes the widget with the given id. Widget and layout cell
// live in the same record, so both leave together; the id sets of the
// two collections cannot drift.
func Remove(widgets []types.Widget, id string) ([]types.Widget, bool) {
	for i := range widgets {
		if widgets[i].ID == id {
			out := make([]types.Widget, 0, len(widgets)-1)
			out = append(out, widgets[:i]...)
			out = append(out, widgets[i+1:]...)
			return out, true
		}
	}
	return widgets, false
}
