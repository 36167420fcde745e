package layout

import (
	"math"
	"sort"
	"time"

	"github.com/1broseidon/viewwall/internal/geom"
)

const (
	fillLow       = 0.75
	fillHigh      = 0.9
	growFactor    = 1.05
	shrinkFactor  = 0.95
	maxPackTries  = 100
	maxScaleSteps = 1000
)

// Item is one panel to pack: its current on-screen size and content aspect.
type Item struct {
	Width  float64
	Height float64
	Aspect float64
}

func (it Item) aspect() float64 {
	if it.Aspect > 0 {
		return it.Aspect
	}
	if it.Width > 0 && it.Height > 0 {
		return it.Width / it.Height
	}
	return 1
}

// Placement is where an item ended up. Rect excludes padding.
type Placement struct {
	Index int
	Rect  geom.Rect
	Delay time.Duration
}

type packItem struct {
	index  int
	aspect float64
	width  float64 // content width before padding
}

func (p packItem) packSize(padding float64) (w, h float64) {
	return math.Floor(p.width + padding), math.Floor(p.width/p.aspect + padding)
}

func scaleItems(items []packItem, factor, padding float64) float64 {
	total := 0.0
	for i := range items {
		items[i].width *= factor
		w, h := items[i].packSize(padding)
		total += w * h
	}
	return total
}

// BinPack lays items out inside area. Sizes are first scaled so the packed
// panels cover between 75% and 90% of the area, then packed with MaxRects,
// shrinking 5% after every failed attempt. The result is centered in the
// area and each placement is staggered by duration/n. It reports false when
// no layout was found.
func BinPack(items []Item, area geom.Rect, padding float64, duration time.Duration) ([]Placement, bool) {
	if len(items) == 0 || area.Width < 1 || area.Height < 1 {
		return nil, false
	}

	var packs []packItem
	for i, it := range items {
		w, h := it.Width, it.Height
		if w < 1 || h < 1 {
			continue
		}
		a := it.aspect()
		if w > area.Width {
			w = area.Width
			h = w / a
		}
		if h > area.Height {
			h = area.Height
			w = h * a
		}
		if w > area.Width {
			w = area.Width
		}
		packs = append(packs, packItem{index: i, aspect: a, width: w})
	}
	if len(packs) == 0 {
		return nil, false
	}

	target := area.Width * area.Height
	covered := scaleItems(packs, 1, padding)
	for step := 0; covered < target*fillLow && step < maxScaleSteps; step++ {
		covered = scaleItems(packs, growFactor, padding)
	}
	for step := 0; covered > target*fillHigh && step < maxScaleSteps; step++ {
		covered = scaleItems(packs, shrinkFactor, padding)
	}

	var placed []Placement
	for try := 0; try < maxPackTries; try++ {
		if rects, ok := packAll(packs, area.Width, area.Height, padding); ok {
			placed = rects
			break
		}
		scaleItems(packs, shrinkFactor, padding)
	}
	if len(placed) == 0 {
		return nil, false
	}

	var right, bottom float64
	for _, p := range placed {
		right = math.Max(right, p.Rect.Right())
		bottom = math.Max(bottom, p.Rect.Bottom())
	}
	offX := (area.Width - right) / 2
	offY := (area.Height - bottom) / 2
	step := duration / time.Duration(len(placed))

	for i := range placed {
		r := placed[i].Rect
		placed[i].Rect = geom.Rect{
			X:      area.X + r.X + offX,
			Y:      area.Y + r.Y + offY,
			Width:  r.Width - padding,
			Height: r.Height - padding,
		}
		placed[i].Delay = step * time.Duration(i)
	}
	return placed, true
}

// packAll packs biggest first and returns placements in input order.
func packAll(items []packItem, w, h, padding float64) ([]Placement, bool) {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		aw, ah := items[order[a]].packSize(padding)
		bw, bh := items[order[b]].packSize(padding)
		return aw*ah > bw*bh
	})

	bin := newMaxRects(w, h)
	rects := make([]geom.Rect, len(items))
	for _, i := range order {
		pw, ph := items[i].packSize(padding)
		r, ok := bin.insert(pw, ph)
		if !ok {
			return nil, false
		}
		rects[i] = r
	}

	out := make([]Placement, len(items))
	for i, it := range items {
		out[i] = Placement{Index: it.index, Rect: rects[i]}
	}
	return out, true
}

// maxRects is a MaxRects bin using the best-short-side-fit heuristic.
type maxRects struct {
	free []geom.Rect
}

func newMaxRects(w, h float64) *maxRects {
	return &maxRects{free: []geom.Rect{{Width: w, Height: h}}}
}

func (m *maxRects) insert(w, h float64) (geom.Rect, bool) {
	bestShort, bestLong := math.MaxFloat64, math.MaxFloat64
	var best geom.Rect
	found := false
	for _, f := range m.free {
		if f.Width < w || f.Height < h {
			continue
		}
		leftW, leftH := f.Width-w, f.Height-h
		short, long := math.Min(leftW, leftH), math.Max(leftW, leftH)
		if short < bestShort || (short == bestShort && long < bestLong) {
			best = geom.Rect{X: f.X, Y: f.Y, Width: w, Height: h}
			bestShort, bestLong = short, long
			found = true
		}
	}
	if !found {
		return geom.Rect{}, false
	}

	var next []geom.Rect
	for _, f := range m.free {
		next = append(next, splitFree(f, best)...)
	}
	m.free = prune(next)
	return best, true
}

// splitFree returns the parts of free not covered by used.
func splitFree(free, used geom.Rect) []geom.Rect {
	if used.X >= free.Right() || used.Right() <= free.X ||
		used.Y >= free.Bottom() || used.Bottom() <= free.Y {
		return []geom.Rect{free}
	}

	var out []geom.Rect
	if used.X < free.Right() && used.Right() > free.X {
		if used.Y > free.Y && used.Y < free.Bottom() {
			out = append(out, geom.Rect{X: free.X, Y: free.Y, Width: free.Width, Height: used.Y - free.Y})
		}
		if used.Bottom() < free.Bottom() {
			out = append(out, geom.Rect{X: free.X, Y: used.Bottom(), Width: free.Width, Height: free.Bottom() - used.Bottom()})
		}
	}
	if used.Y < free.Bottom() && used.Bottom() > free.Y {
		if used.X > free.X && used.X < free.Right() {
			out = append(out, geom.Rect{X: free.X, Y: free.Y, Width: used.X - free.X, Height: free.Height})
		}
		if used.Right() < free.Right() {
			out = append(out, geom.Rect{X: used.Right(), Y: free.Y, Width: free.Right() - used.Right(), Height: free.Height})
		}
	}
	return out
}

func contains(outer, inner geom.Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() && inner.Bottom() <= outer.Bottom()
}

// prune drops free rectangles contained in another.
func prune(rects []geom.Rect) []geom.Rect {
	out := rects[:0:0]
	for i, r := range rects {
		redundant := false
		for j, o := range rects {
			if i == j {
				continue
			}
			if contains(o, r) && (!contains(r, o) || j < i) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, r)
		}
	}
	return out
}
