package layout

import (
	"math"
	"testing"
	"time"

	"github.com/1broseidon/viewwall/internal/geom"
)

func TestCalculateGrid(t *testing.T) {
	cases := []struct{ n, rows, cols int }{
		{0, 0, 0}, {1, 1, 1}, {2, 1, 2}, {3, 2, 2}, {5, 2, 3}, {10, 3, 4},
	}
	for _, c := range cases {
		rows, cols := CalculateGrid(c.n)
		if rows != c.rows || cols != c.cols {
			t.Fatalf("expected CalculateGrid(%d)=%dx%d, got %dx%d", c.n, c.rows, c.cols, rows, cols)
		}
	}
}

func TestGridCellsWithGaps(t *testing.T) {
	cells := GridCells(2, geom.Rect{Width: 210, Height: 100}, 10)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	// (210 - 3*10) / 2 = 90
	if cells[0].X != 10 || cells[1].X != 110 || cells[0].Width != 90 {
		t.Fatalf("expected x=10,110 width=90, got %+v", cells)
	}
}

func TestApplyRegionCustomClampsToMinimumSize(t *testing.T) {
	display := geom.Rect{Width: 10, Height: 10}
	got := ApplyRegion(display, Region{Type: RegionCustom, WidthPercent: 1, HeightPercent: 1})
	if got.Width != 1 || got.Height != 1 {
		t.Fatalf("expected 1x1, got %vx%v", got.Width, got.Height)
	}

	right := ApplyRegion(geom.Rect{Width: 1920, Height: 1080}, Region{Type: RegionRightHalf})
	if right.X != 960 || right.Width != 960 {
		t.Fatalf("expected right half at 960, got %+v", right)
	}
}

func TestRegionValidate(t *testing.T) {
	if err := (Region{Type: RegionCustom, XPercent: 50, WidthPercent: 60, HeightPercent: 10}).Validate(); err == nil {
		t.Fatalf("expected overflow error")
	}
	if err := (Region{Type: "diagonal"}).Validate(); err == nil {
		t.Fatalf("expected invalid type error")
	}
	if err := (Region{}).Validate(); err != nil {
		t.Fatalf("expected empty region to be valid, got %v", err)
	}
}

func overlaps(a, b geom.Rect) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}

func TestBinPackFitsWithoutOverlap(t *testing.T) {
	area := geom.Rect{Width: 1920, Height: 1080}
	items := []Item{
		{Width: 400, Height: 300, Aspect: 4.0 / 3.0},
		{Width: 400, Height: 225, Aspect: 16.0 / 9.0},
		{Width: 300, Height: 400, Aspect: 0.75},
		{Width: 500, Height: 500, Aspect: 1},
	}
	placed, ok := BinPack(items, area, 5, 400*time.Millisecond)
	if !ok {
		t.Fatalf("expected BinPack to succeed")
	}
	if len(placed) != len(items) {
		t.Fatalf("expected %d placements, got %d", len(items), len(placed))
	}

	seen := map[int]bool{}
	covered := 0.0
	for i, p := range placed {
		seen[p.Index] = true
		r := p.Rect
		if r.X < area.X-1e-6 || r.Y < area.Y-1e-6 || r.Right() > area.Right()+1e-6 || r.Bottom() > area.Bottom()+1e-6 {
			t.Fatalf("expected placement %d inside area, got %+v", i, r)
		}
		a := items[p.Index].Aspect
		if math.Abs(r.Width/r.Height-a) > 0.05 {
			t.Fatalf("expected placement %d aspect ~%f, got %f", i, a, r.Width/r.Height)
		}
		for j := i + 1; j < len(placed); j++ {
			if overlaps(r, placed[j].Rect) {
				t.Fatalf("expected no overlap between %d and %d", i, j)
			}
		}
		covered += r.Width * r.Height
	}
	if len(seen) != len(items) {
		t.Fatalf("expected every item placed once, got %v", seen)
	}
	if covered < area.Width*area.Height*0.5 {
		t.Fatalf("expected the packing to grow into the area, covered %f", covered)
	}
	if placed[0].Delay != 0 || placed[1].Delay != 100*time.Millisecond {
		t.Fatalf("expected staggered delays, got %v %v", placed[0].Delay, placed[1].Delay)
	}
}

func TestBinPackEmpty(t *testing.T) {
	if _, ok := BinPack(nil, geom.Rect{Width: 100, Height: 100}, 5, 0); ok {
		t.Fatalf("expected empty input to fail")
	}
	if _, ok := BinPack([]Item{{Width: 0, Height: 0}}, geom.Rect{Width: 100, Height: 100}, 5, 0); ok {
		t.Fatalf("expected degenerate items to fail")
	}
}

func TestGridFallbackKeepsAspect(t *testing.T) {
	items := []Item{{Width: 100, Height: 50}, {Width: 50, Height: 100}, {Width: 10, Height: 10}}
	placed := Grid(items, geom.Rect{Width: 1000, Height: 1000}, 10, 0)
	if len(placed) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(placed))
	}
	if got := placed[0].Rect.Width / placed[0].Rect.Height; math.Abs(got-2) > 1e-9 {
		t.Fatalf("expected aspect 2, got %f", got)
	}
}

func TestCompositeLetterboxWideDisplay(t *testing.T) {
	// 32:9 display holding a 16:9 slide: authored area is 1920 wide, centered.
	c := NewComposite(geom.Size{Width: 3840, Height: 1080}, 16, 9)
	if c.Area.Width != 1920 || c.FillX != 2 || c.OffsetX != 960 {
		t.Fatalf("expected area 1920 fillX 2 offset 960, got %+v", c)
	}
	pos, w := c.Place(StyleLetterbox, 0.5, 0.5, 0, 1)
	if w != 480 {
		t.Fatalf("expected default width 0.25*1920=480, got %f", w)
	}
	if pos.X != 0.5*1920+960 || pos.Y != 540 {
		t.Fatalf("expected (1920,540), got (%f,%f)", pos.X, pos.Y)
	}
}

func TestCompositeTallDisplayUsesFillY(t *testing.T) {
	c := NewComposite(geom.Size{Width: 1920, Height: 2160}, 16, 9)
	if c.Area.Height != 1080 || c.FillY != 2 || c.OffsetY != 540 {
		t.Fatalf("expected area height 1080 fillY 2 offset 540, got %+v", c)
	}
}

func TestCompositeFillAndExpand(t *testing.T) {
	c := NewComposite(geom.Size{Width: 3840, Height: 1080}, 16, 9)

	// Square media at w=0.25: dest 960x480, so the media is height-bound.
	pos, w := c.Place(StyleFill, 0, 0, 0.25, 1)
	if w != 480 {
		t.Fatalf("expected fill width 480, got %f", w)
	}
	if pos.X != 480-240 || pos.Y != 0 {
		t.Fatalf("expected fill pos (240,0), got (%f,%f)", pos.X, pos.Y)
	}

	_, w = c.Place(StyleExpand, 0, 0, 0.25, 1)
	if w != 960 {
		t.Fatalf("expected expand width 0.25*3840=960, got %f", w)
	}
}

func TestParseCompositeStyle(t *testing.T) {
	if ParseCompositeStyle("") != StyleLetterbox || ParseCompositeStyle("none") != StyleLetterbox {
		t.Fatalf("expected empty and none to mean letterbox")
	}
	if ParseCompositeStyle("Fill") != StyleFill {
		t.Fatalf("expected Fill to parse")
	}
}
