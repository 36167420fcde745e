package orchestrator

import (
	"fmt"

	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Darkener is the translucent overlay behind a fullscreen viewer. It covers
// the Top layer's area and sits in the viewer's own layer.
type Darkener struct {
	ViewerID string
	Layer    viewer.Layer
	Bounds   geom.Rect
	Opacity  float64
	Enabled  bool

	owner    string
	released bool
}

// Released reports whether the darkener finished fading out.
func (d *Darkener) Released() bool { return d.released }

func (c *Controller) fade(d *Darkener, to float64, done func()) {
	from := d.Opacity
	c.anim.Start(d.owner, tween.ChannelOpacity, 0, c.settings.AnimDuration, tween.Linear, func(p float64) {
		d.Opacity = from + (to-from)*p
	}, done)
}

// Darkeners returns the darkener of every fullscreen viewer, keyed by id.
func (c *Controller) Darkeners() map[string]*Darkener {
	out := make(map[string]*Darkener, len(c.darkeners))
	for k, v := range c.darkeners {
		out[k] = v
	}
	return out
}

// FullscreenViewer fills v's layer with v, keeping its aspect, and puts a
// darkener behind it. With showController a fullscreen controller opens on
// the Top layer at v's center.
func (c *Controller) FullscreenViewer(v viewer.Viewer, immediate, showController bool) {
	if v == nil {
		return
	}
	l := v.Layer()
	if l != viewer.LayerNormal && l != viewer.LayerBackground {
		c.log.Warn("cannot fullscreen a viewer on this layer", "id", v.ID(), "layer", l.String())
		return
	}

	lb := c.LayerBounds(l)
	sw, sh := lb.Width, lb.Height
	screenAsp := sw / sh

	p := v.Panel()
	f := p.Frame()
	v.SetUnfullscreenRect(f)
	cx, cy := f.Center()
	controllerAt := c.toGlobal(l, geom.Vec3{X: cx, Y: cy, Z: p.Position().Z})

	dur := c.settings.AnimDuration
	scale := p.Scale()
	if scale == 0 {
		scale = 0.001
	}

	// Immediate and animated paths land on the same clamped size.
	place := func(size geom.Size, pos geom.Vec3) {
		if immediate {
			p.SetViewerSize(size.Width, size.Height)
			p.SetPosition(pos)
			return
		}
		p.AnimateSizeTo(size)
		p.TweenPosition(pos, 0, dur, tween.InOutQuad, nil)
	}

	if v.Content().Media().PixelExact() {
		p.SetContentAspect(screenAsp)
		place(p.SizeForWidth(sw), geom.Vec3{})
	} else if viewerAsp := p.Width() / p.Height(); viewerAsp > screenAsp {
		size := p.SizeForWidth(sw / scale)
		place(size, geom.Vec3{X: 0, Y: sh/2 - size.Height*scale/2})
	} else {
		size := p.SizeForHeight(sh / scale)
		place(size, geom.Vec3{X: sw/2 - size.Width*scale/2, Y: 0})
	}

	v.SetFullscreen(true)

	d, ok := c.darkeners[v.ID()]
	if !ok {
		c.darkenerSeq++
		d = &Darkener{ViewerID: v.ID(), owner: fmt.Sprintf("darkener-%d", c.darkenerSeq)}
	}
	top := c.LayerBounds(viewer.LayerTop)
	d.Layer = l
	d.Bounds = geom.Rect{X: top.X - lb.X, Y: top.Y - lb.Y, Width: top.Width, Height: top.Height}
	d.Enabled = true
	c.darkeners[v.ID()] = d
	c.fade(d, c.settings.DarkenerOpacity, nil)

	v.Activate()

	if showController {
		c.openFullscreenController(v.ID(), controllerAt)
	}
}

// openFullscreenController launches the fullscreen controller at, in
// display coordinates, and links it to viewerID.
func (c *Controller) openFullscreenController(viewerID string, at geom.Vec3) {
	req := viewer.NewRequestAt(nil, viewer.TypeFullscreenController, at, viewer.LayerTop)
	fsc, err := c.AddViewer(req, 0)
	if err != nil {
		c.log.Warn("failed to open fullscreen controller", "error", err)
		return
	}
	if l, ok := fsc.(viewer.Linker); ok && !fsc.AboutToBeRemoved() {
		l.LinkViewer(viewerID)
	}
}

// UnfullscreenViewer returns v to the rectangle it had before fullscreen.
// A stored rectangle larger than half the layer in either axis is replaced
// by v's default size around the same center, or its min size when even the
// default is that large.
func (c *Controller) UnfullscreenViewer(v viewer.Viewer, immediate bool) {
	if v == nil {
		return
	}
	c.RemoveFullscreenDarkener(v)
	if v.UnfullscreenRect().Empty() {
		v.SetFullscreen(false)
		return
	}

	lb := c.LayerBounds(v.Layer())
	sw, sh := lb.Width, lb.Height
	p := v.Panel()
	scale := p.Scale()
	if scale == 0 {
		scale = 0.001
	}

	dest := v.UnfullscreenRect()
	if dest.Width > sw/2 || dest.Height > sh/2 {
		cx, cy := dest.Center()
		if c.settings.Mode == ModeSingle {
			cx, cy = sw/2, sh/2
		}
		size := p.DefaultSize()
		w, h := size.Width*scale, size.Height*scale
		if w > sw/2 || h > sh/2 {
			size = p.MinSize()
			w, h = size.Width*scale, size.Height*scale
		}
		dest = geom.RectFromCenter(cx, cy, w, h)
	}

	if v.Content().Media().PixelExact() {
		p.SetContentAspect(dest.Aspect())
	}
	v.ShowTitle()

	dur := c.settings.AnimDuration
	size := p.SizeForWidth(dest.Width / scale)
	if immediate {
		p.SetViewerSize(size.Width, size.Height)
		p.SetPosition(geom.Vec3{X: dest.X, Y: dest.Y})
		p.SetRotation(0)
	} else {
		p.AnimateSizeTo(size)
		p.TweenPosition(geom.Vec3{X: dest.X, Y: dest.Y}, 0, dur, tween.InOutQuad, nil)
		p.TweenRotation(0, 0, dur, tween.InOutQuad, nil)
	}

	v.SetFullscreen(false)
}

// FullscreenByID fullscreens the viewer with id.
func (c *Controller) FullscreenByID(id string) error {
	v, err := c.Viewer(id)
	if err != nil {
		return err
	}
	if !v.Capabilities().Fullscreen {
		return fmt.Errorf("viewer %s (%s) cannot go fullscreen", id, v.Type())
	}
	c.FullscreenViewer(v, false, true)
	return nil
}

// UnfullscreenByID restores the viewer with id.
func (c *Controller) UnfullscreenByID(id string) error {
	v, err := c.Viewer(id)
	if err != nil {
		return err
	}
	c.UnfullscreenViewer(v, false)
	return nil
}

// RemoveFullscreenDarkener clears v's fullscreen flag and fades its
// darkener out. Once no darkeners remain every fullscreen controller closes.
func (c *Controller) RemoveFullscreenDarkener(v viewer.Viewer) {
	if v == nil {
		return
	}
	d, ok := c.darkeners[v.ID()]
	if !ok {
		return
	}
	v.SetFullscreen(false)
	c.dropDarkener(d)

	if len(c.darkeners) == 0 {
		for _, fsc := range c.ViewersOfType(viewer.TypeFullscreenController) {
			c.AnimateViewerOff(fsc, 0, viewer.OffShrink)
		}
	}
}

func (c *Controller) dropDarkener(d *Darkener) {
	d.Enabled = false
	delete(c.darkeners, d.ViewerID)
	c.fade(d, 0, func() { d.released = true })
}

// TapDarkener opens the fullscreen controller at a tap on the darkener of
// viewerID. at is in display coordinates.
func (c *Controller) TapDarkener(viewerID string, at geom.Vec3) {
	if d, ok := c.darkeners[viewerID]; !ok || !d.Enabled {
		return
	}
	c.openFullscreenController(viewerID, at)
}

// DoubleTapDarkener restores the viewer behind the darkener.
func (c *Controller) DoubleTapDarkener(viewerID string) {
	if d, ok := c.darkeners[viewerID]; !ok || !d.Enabled {
		return
	}
	if v := c.find(viewerID); v != nil {
		c.UnfullscreenViewer(v, false)
	}
}
