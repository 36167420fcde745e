package layout

import (
	"strings"

	"github.com/1broseidon/viewwall/internal/geom"
)

// CompositeStyle controls how slide children map onto the display.
type CompositeStyle string

const (
	StyleLetterbox CompositeStyle = "letterbox"
	StyleFill      CompositeStyle = "fill"
	StyleExpand    CompositeStyle = "expand"
	StyleAuto      CompositeStyle = "auto"
)

// ParseCompositeStyle maps a stored layout option to a style. Empty and
// "none" mean letterbox; unknown values are kept as-is and treated like
// letterbox by Place.
func ParseCompositeStyle(s string) CompositeStyle {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return StyleLetterbox
	}
	return CompositeStyle(s)
}

// Composite is the authored slide area fitted inside a display region.
// Slides are authored for a fixed aspect; when the region is wider or
// taller, the authored area is centered and Fill* record the stretch.
type Composite struct {
	World   geom.Size
	Area    geom.Size
	FillX   float64
	FillY   float64
	OffsetX float64
	OffsetY float64
}

// NewComposite fits the aspect ratio ax:ay into world.
func NewComposite(world geom.Size, ax, ay float64) Composite {
	if ax <= 0 || ay <= 0 {
		ax, ay = 16, 9
	}
	c := Composite{World: world, Area: world, FillX: 1, FillY: 1}
	if world.Height <= 0 || world.Width <= 0 {
		return c
	}
	slide := ax / ay
	if world.Width/world.Height > slide {
		c.Area.Width = world.Height * slide
		c.FillX = world.Width / c.Area.Width
	} else {
		c.Area.Height = world.Width * ay / ax
		c.FillY = world.Height / c.Area.Height
	}
	c.OffsetX = world.Width/2 - c.Area.Width/2
	c.OffsetY = world.Height/2 - c.Area.Height/2
	return c
}

// Place returns the top-left position and width of a child authored at
// relative (x, y) with relative width w. mediaAspect is the child's media
// aspect, used by fill and expand.
func (c Composite) Place(style CompositeStyle, x, y, w, mediaAspect float64) (geom.Vec3, float64) {
	if w <= 0 {
		w = 0.25
	}
	if mediaAspect <= 0 {
		mediaAspect = 1
	}
	ew, eh := c.Area.Width, c.Area.Height
	ww, wh := c.World.Width, c.World.Height

	switch style {
	case StyleFill:
		destW := w * ew * c.FillX
		destH := (w * ew / mediaAspect) * c.FillY
		cx := x*ww + destW/2
		cy := y*wh + destH/2
		width := destH * mediaAspect
		if mediaAspect > destW/destH {
			width = destW
		}
		return geom.Vec3{X: cx - width/2, Y: cy - (width/mediaAspect)/2}, width

	case StyleExpand:
		destW := w * ew * c.FillX
		destH := (w * ew / mediaAspect) * c.FillY
		cx := x*ww + destW/2
		cy := y*wh + destH/2
		width := w * ww
		return geom.Vec3{X: cx - width/2, Y: cy - (width/mediaAspect)/2}, width

	default:
		return geom.Vec3{X: x*ew + c.OffsetX, Y: y*eh + c.OffsetY}, w * ew
	}
}
