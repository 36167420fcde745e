// Package platform describes the displays the wall is drawn on.
package platform

import "fmt"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int
	Name    string
	Bounds  Rect
	Usable  Rect
	Primary bool
}

// Backend abstracts display-server queries.
type Backend interface {
	Displays() ([]Display, error)
	PrimaryDisplay() (Display, error)
}

// WallBounds returns the smallest rectangle covering every display.
func WallBounds(displays []Display) (Rect, error) {
	if len(displays) == 0 {
		return Rect{}, fmt.Errorf("no displays")
	}
	b := displays[0].Bounds
	x1, y1 := b.X, b.Y
	x2, y2 := b.X+b.Width, b.Y+b.Height
	for _, d := range displays[1:] {
		r := d.Bounds
		x1 = min(x1, r.X)
		y1 = min(y1, r.Y)
		x2 = max(x2, r.X+r.Width)
		y2 = max(y2, r.Y+r.Height)
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, nil
}

// Static is a Backend with a fixed set of displays, used when no display
// server is reachable.
type Static struct {
	List []Display
}

var _ Backend = Static{}

// NewStatic returns a single-display backend of the given size.
func NewStatic(width, height int) Static {
	r := Rect{Width: width, Height: height}
	return Static{List: []Display{{Name: "static", Bounds: r, Usable: r, Primary: true}}}
}

func (s Static) Displays() ([]Display, error) {
	out := make([]Display, len(s.List))
	copy(out, s.List)
	return out, nil
}

func (s Static) PrimaryDisplay() (Display, error) {
	for _, d := range s.List {
		if d.Primary {
			return d, nil
		}
	}
	if len(s.List) == 0 {
		return Display{}, fmt.Errorf("no displays")
	}
	return s.List[0], nil
}
