package orchestrator

import (
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/layout"
	"github.com/1broseidon/viewwall/internal/tween"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// LoadSlideComposite lays out a slide's children as media viewers on the
// Normal layer. Live viewers already showing a child's media are morphed
// into place instead of being recreated; the rest fade off.
func (c *Controller) LoadSlideComposite(slide *content.Model) {
	var leftovers []viewer.Viewer
	for _, v := range c.viewers {
		if v.Layer() != viewer.LayerNormal {
			continue
		}
		if v.Type() == viewer.TypePresentationController || v.Type() == viewer.TypeLauncher {
			continue
		}
		leftovers = append(leftovers, v)
	}

	c.LoadSlideBackground(slide)

	style := layout.ParseCompositeStyle(slide.Prop(content.KeyLayoutOption))
	if slide.Type == content.TypeSlideGrid {
		style = layout.StyleAuto
	}

	dur := c.settings.AnimDuration
	half := dur / 2
	delay := half + half*time.Duration(len(slide.Children))

	normal := c.LayerBounds(viewer.LayerNormal)
	comp := layout.NewComposite(normal.Size(), c.settings.CompositeAspectX, c.settings.CompositeAspectY)
	key := c.settings.CompositeKey
	if key == "" {
		key = "composite"
	}

	for i := len(slide.Children) - 1; i >= 0; i-- {
		child := slide.Children[i]
		if child == nil {
			continue
		}
		res := child.Media()
		if res.Empty() {
			continue
		}

		pos, width := comp.Place(style, child.Float(key+"_x"), child.Float(key+"_y"), child.Float(key+"_w"), res.CroppedAspect())

		req := viewer.NewRequestAt(child, viewer.TypeMediaViewer, c.toGlobal(viewer.LayerNormal, pos), viewer.LayerNormal)
		req.FromCenter = false
		req.CheckBounds = false
		req.StartWidth = width
		req.EnforceMinSize = false
		req.Fullscreen = false
		req.ShowFullscreenController = false
		req.TouchEnabled = child.Bool("touch_events")
		req.StartLocked = req.TouchEnabled
		req.AutoStart = child.Bool("autoplay")
		req.Loop = child.Bool("loop")
		req.Volume = child.Int("volume")
		req.Page = 0
		req.UseHotspots = true
		req.SlideContent = true

		if idx := matchLeftover(leftovers, res); idx >= 0 {
			v := leftovers[idx]
			c.morph(v, req, pos)
			leftovers = append(leftovers[:idx], leftovers[idx+1:]...)
		} else if _, err := c.AddViewer(req, delay); err != nil {
			c.log.Warn("slide child failed to load", "child", child.ID, "error", err)
		}
		delay -= half
	}

	for _, v := range leftovers {
		c.AnimateViewerOff(v, dur, viewer.OffFade)
	}

	if style == layout.StyleAuto {
		c.ArrangeViewers()
	}
}

func matchLeftover(leftovers []viewer.Viewer, res content.Resource) int {
	for i, v := range leftovers {
		if v.AboutToBeRemoved() || v.FatalError() {
			continue
		}
		if v.Panel().Rotation() != 0 {
			continue
		}
		if v.Content().Media().Equal(res) {
			return i
		}
	}
	return -1
}

// morph moves an existing viewer into a slide child's slot.
func (c *Controller) morph(v viewer.Viewer, req viewer.Request, pos geom.Vec3) {
	p := v.Panel()
	p.SendToFront()
	v.HideTitle()
	v.SetRequest(req)

	if v.Fullscreen() != req.Fullscreen {
		if req.Fullscreen {
			c.FullscreenViewer(v, true, false)
		} else {
			c.UnfullscreenViewer(v, true)
		}
	}

	if !req.Fullscreen {
		scale := p.Scale()
		if scale == 0 {
			scale = 0.0001
		}
		p.AnimateWidthTo(req.StartWidth / scale)
		p.TweenPosition(pos, 0, c.settings.AnimDuration, tween.InOutQuad, nil)
	}
}

// slideBackground picks the background resource for a slide, falling back
// from the configured key to the slide's own media and then its parent
// presentation's background.
func (c *Controller) slideBackground(slide *content.Model) content.Resource {
	var res content.Resource
	if key := c.settings.BackgroundAppKey; key != "" {
		res = slide.Resource(key)
	}
	if res.Empty() {
		res = slide.Resource(content.KeyBackgroundMedia)
	}
	if res.Empty() {
		res = slide.Media()
	}
	if res.Empty() {
		res = c.catalog.Parent(slide).Resource(content.KeyBackgroundMedia)
	}
	return res
}

// LoadSlideBackground keeps a Background-layer viewer already showing the
// slide's background and fades every other one. When none matches a new
// Background viewer fills the display.
func (c *Controller) LoadSlideBackground(slide *content.Model) {
	res := c.slideBackground(slide)
	dur := c.settings.AnimDuration

	exists := false
	for _, v := range c.Viewers() {
		if v.Layer() != viewer.LayerBackground {
			continue
		}
		if !v.AboutToBeRemoved() && v.Content().Media().SameFrame(res) {
			exists = true
			continue
		}
		c.AnimateViewerOff(v, dur, viewer.OffFade)
	}

	if exists || res.Empty() {
		return
	}

	bg := &content.Model{Name: contentName(slide), Type: content.TypeMedia}
	bg.SetResource(content.KeyMedia, res)

	sw, sh := c.display.Width, c.display.Height
	width := sw
	if a := res.CroppedAspect(); a > sw/sh {
		width = sh * a
	}

	req := viewer.NewRequestAt(bg, viewer.TypeMediaViewer, geom.Vec3{X: sw / 2, Y: sh / 2}, viewer.LayerBackground)
	req.StartWidth = width
	req.FromCenter = true
	req.CheckBounds = false
	req.Fullscreen = false
	req.TouchEnabled = false
	req.Loop = true
	req.AutoStart = true
	req.Volume = 0
	req.SlideContent = true
	if _, err := c.AddViewer(req, 0); err != nil {
		c.log.Warn("slide background failed to load", "path", res.Path, "error", err)
	}
}

// LoadPresentationSlide shows a slide. Media slides replace the Normal
// layer with one fullscreen viewer; composite slides are laid out.
func (c *Controller) LoadPresentationSlide(slide *content.Model) {
	if slide == nil {
		return
	}
	switch slide.Type {
	case content.TypeSlideHotspots, content.TypeMedia:
		for _, v := range c.Viewers() {
			if v.Layer() == viewer.LayerNormal {
				c.AnimateViewerOff(v, 0, viewer.OffFade)
			}
		}
		c.LoadSlideBackground(slide)

		req := viewer.NewRequestAt(slide, viewer.TypeMediaViewer, geom.Vec3{X: c.display.Width / 2, Y: c.display.Height / 2}, viewer.LayerNormal)
		req.StartWidth = 0
		req.FromCenter = true
		req.Fullscreen = true
		req.ShowFullscreenController = false
		req.CheckBounds = false
		if _, err := c.AddViewer(req, 0); err != nil {
			c.log.Warn("media slide failed to load", "slide", slide.ID, "error", err)
		}

	case content.TypeSlideGrid, content.TypeCustomTemplate, content.TypeSlide:
		c.LoadSlideComposite(slide)
	}

	c.notifyPresentation()
}

func (c *Controller) notifyPresentation() {
	c.notify(events.PresentationStatusUpdated{State: c.catalog.Current()})
}

// StartPresentation makes pres current and shows its first slide. With
// showController a presentation controller opens on the Top layer.
func (c *Controller) StartPresentation(pres *content.Model, location geom.Vec3, showController bool) {
	if pres == nil {
		return
	}
	state := content.PresentationState{PresentationID: pres.ID}
	if len(pres.Children) > 0 && pres.Children[0] != nil {
		state.SlideID = pres.Children[0].ID
	}
	c.catalog.SetCurrent(state)

	c.SetPresentationSlide(state.SlideID)

	if showController {
		req := viewer.NewRequestAt(nil, viewer.TypePresentationController, location, viewer.LayerTop)
		if _, err := c.AddViewer(req, 0); err != nil {
			c.log.Warn("failed to open presentation controller", "error", err)
		}
	}
}

// StartPresentationByID looks up a presentation and starts it.
func (c *Controller) StartPresentationByID(id int, showController bool) error {
	pres := c.catalog.Lookup(id)
	if pres == nil {
		return errNotInCatalog(id)
	}
	c.StartPresentation(pres, viewer.NoPosition, showController)
	return nil
}

// EndPresentation clears the current presentation.
func (c *Controller) EndPresentation() {
	c.catalog.SetCurrent(content.PresentationState{})
	c.notifyPresentation()
}

// AdvancePresentation moves to the next or previous slide, wrapping at
// either end.
func (c *Controller) AdvancePresentation(forwards bool) {
	cur := c.catalog.Current()
	pres := c.catalog.Lookup(cur.PresentationID)
	if pres == nil || len(pres.Children) == 0 {
		c.log.Warn("tried to advance a presentation that has no slides", "presentation", cur.PresentationID)
		c.notifyPresentation()
		return
	}

	slides := pres.Children
	next := 0
	if forwards {
		found := false
		for _, s := range slides {
			if found {
				next = s.ID
				break
			}
			if s.ID == cur.SlideID {
				found = true
			}
		}
		if next == 0 {
			next = slides[0].ID
		}
	} else {
		for _, s := range slides {
			if s.ID == cur.SlideID {
				break
			}
			next = s.ID
		}
		if next == 0 {
			next = slides[len(slides)-1].ID
		}
	}

	c.SetPresentationSlide(next)
}

// SetPresentationSlide shows the slide with id inside its presentation.
func (c *Controller) SetPresentationSlide(id int) {
	slide := c.catalog.Lookup(id)
	if slide == nil {
		c.log.Warn("tried to set a presentation slide that does not exist", "slide", id)
		c.notifyPresentation()
		return
	}
	pres := c.catalog.Parent(slide)
	if pres == nil || len(pres.Children) == 0 {
		c.log.Warn("tried to set a presentation slide outside a presentation", "slide", id)
		c.notifyPresentation()
		return
	}

	c.catalog.SetCurrent(content.PresentationState{PresentationID: pres.ID, SlideID: slide.ID})
	c.LoadPresentationSlide(slide)
}
