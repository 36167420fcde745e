package layout

import (
	"math"
	"time"

	"github.com/1broseidon/viewwall/internal/geom"
)

// CalculateGrid determines the grid dimensions for n panels.
func CalculateGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}

	// Columns first (ceiling of square root)
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))

	return rows, cols
}

// GridCells splits area into n equal cells separated by gap.
func GridCells(n int, area geom.Rect, gap float64) []geom.Rect {
	if n <= 0 {
		return nil
	}

	rows, cols := CalculateGrid(n)

	// One gap before each column and one after the last.
	cellWidth := (area.Width - float64(cols+1)*gap) / float64(cols)
	cellHeight := (area.Height - float64(rows+1)*gap) / float64(rows)

	cells := make([]geom.Rect, n)
	for i := 0; i < n; i++ {
		row := i / cols
		col := i % cols
		cells[i] = geom.Rect{
			X:      area.X + gap + float64(col)*(cellWidth+gap),
			Y:      area.Y + gap + float64(row)*(cellHeight+gap),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}
	return cells
}

// Grid fits each item into its grid cell, keeping the item's aspect and
// centering it in the cell. It is the fallback when bin packing fails.
func Grid(items []Item, area geom.Rect, gap float64, duration time.Duration) []Placement {
	cells := GridCells(len(items), area, gap)
	if len(cells) == 0 {
		return nil
	}
	step := duration / time.Duration(len(items))
	out := make([]Placement, 0, len(items))
	for i, it := range items {
		cell := cells[i]
		aspect := it.aspect()
		w := cell.Width
		h := w / aspect
		if h > cell.Height {
			h = cell.Height
			w = h * aspect
		}
		if w < 1 || h < 1 {
			continue
		}
		out = append(out, Placement{
			Index: i,
			Rect: geom.Rect{
				X:      cell.X + (cell.Width-w)/2,
				Y:      cell.Y + (cell.Height-h)/2,
				Width:  w,
				Height: h,
			},
			Delay: step * time.Duration(len(out)),
		})
	}
	return out
}
