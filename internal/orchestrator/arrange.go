package orchestrator

import (
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/layout"
	"github.com/1broseidon/viewwall/internal/tween"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// skipsGrouping reports whether v stays put during arrange and gather.
func skipsGrouping(v viewer.Viewer) bool {
	tag := v.Type()
	return viewer.IsLauncher(tag) || tag == viewer.TypeSearch || v.Request().SlideContent
}

// ArrangeViewers packs the arrangeable Normal-layer viewers into the layer.
// Viewers that cannot be arranged fade off. A lone fullscreenable
// candidate goes fullscreen instead.
func (c *Controller) ArrangeViewers() {
	var grid []viewer.Viewer
	for _, v := range c.Viewers() {
		if skipsGrouping(v) {
			continue
		}
		c.RemoveFullscreenDarkener(v)

		if v.Layer() != viewer.LayerNormal || v.AboutToBeRemoved() {
			continue
		}
		if v.Capabilities().Arrange && !v.FatalError() {
			v.HideTitle()
			grid = append(grid, v)
		} else {
			c.AnimateViewerOff(v, 0, viewer.OffFade)
		}
	}

	if len(grid) == 0 {
		return
	}
	if len(grid) == 1 && grid[0].Capabilities().Fullscreen {
		c.FullscreenViewer(grid[0], false, true)
		return
	}

	items := make([]layout.Item, len(grid))
	for i, v := range grid {
		p := v.Panel()
		f := p.Frame()
		items[i] = layout.Item{Width: f.Width, Height: f.Height, Aspect: p.ContentAspect()}
	}
	area := c.LayerBounds(viewer.LayerNormal).Local()
	dur := c.settings.AnimDuration

	placed, ok := layout.BinPack(items, area, c.settings.Padding, dur)
	if !ok {
		c.log.Warn("bin packing found no layout, falling back to grid", "viewers", len(grid))
		placed = layout.Grid(items, area, c.settings.Padding, dur)
	}
	for _, pl := range placed {
		grid[pl.Index].Panel().TweenFrame(pl.Rect, pl.Delay, dur, nil)
	}
}

// GatherViewers pulls every eligible viewer below the Top layer toward
// location, shrinking resizable ones to their minimum width. NoPosition
// gathers at the center of the Normal layer.
func (c *Controller) GatherViewers(location geom.Vec3) {
	if !(viewer.Request{Location: location}).HasPosition() {
		cx, cy := c.LayerBounds(viewer.LayerNormal).Center()
		location = geom.Vec3{X: cx, Y: cy}
	}
	local := c.toLocal(viewer.LayerNormal, location)
	for _, v := range c.Viewers() {
		if v.Layer() == viewer.LayerTop || skipsGrouping(v) {
			continue
		}
		if v.AboutToBeRemoved() || v.FatalError() {
			continue
		}
		c.gatherOne(v, local)
	}
}

func (c *Controller) gatherOne(v viewer.Viewer, at geom.Vec3) {
	c.RemoveFullscreenDarkener(v)

	p := v.Panel()
	scale := p.Scale()
	destWidth := p.Width()
	if v.Capabilities().Resize {
		destWidth = p.MinSize().Width
		p.AnimateWidthTo(destWidth)
	}
	aspect := p.Width() / p.Height()
	if aspect <= 0 {
		aspect = 1
	}
	destHeight := destWidth / aspect

	jitter := c.settings.GatherJitter
	dest := geom.Vec3{
		X: at.X + c.jitter(jitter) - destWidth*scale/2,
		Y: at.Y + c.jitter(jitter) - destHeight*scale/2,
	}
	p.TweenPosition(dest, 0, c.settings.AnimDuration, tween.InOutQuad, nil)
}

// jitter returns a random offset in [-r, r).
func (c *Controller) jitter(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return c.rand.Float64()*2*r - r
}
