package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// fullscreenControllerOffsetY keeps fullscreen controllers below the
// presentation controller in single mode.
const fullscreenControllerOffsetY = 250

const missingFileMessage = "We couldn't load this piece of media because the file couldn't be found."

// AddViewer creates a viewer for req, or re-targets the existing one when
// its type allows a single instance. delay staggers the appear transition.
// The returned viewer is nil when the request was dropped or replaced by an
// error panel.
func (c *Controller) AddViewer(req viewer.Request, delay time.Duration) (viewer.Viewer, error) {
	target := req.Layer
	if !target.Valid() {
		target = viewer.LayerNormal
	}
	lb := c.LayerBounds(target)

	var loc geom.Vec3
	if req.HasPosition() {
		loc = c.toLocal(target, req.Location)
	} else {
		loc = geom.Vec3{X: lb.Width / 2, Y: lb.Height / 2}
	}

	if existing := c.liveSingleton(req.ViewType); existing != nil {
		if req.ViewType == viewer.TypeFullscreenController {
			c.AnimateViewerOff(existing, 0, viewer.OffShrink)
			return existing, nil
		}
		c.retarget(existing, req, loc)
		return existing, nil
	}

	if req.ViewType != viewer.TypeMediaViewer && c.settings.Mode == ModeSingle {
		loc = geom.Vec3{X: c.display.Width / 2, Y: c.display.Height * c.settings.SingleYPercent}
		if req.ViewType == viewer.TypeFullscreenController {
			loc.Y += fullscreenControllerOffsetY
		}
	}

	v, err := c.registry.New(req, c.env)
	if err != nil {
		if errors.Is(err, viewer.ErrContentUnresolved) {
			c.log.Warn("content unresolved, showing error panel", "type", req.ViewType, "path", req.Content.Media().Path)
			c.launchErrorPanel(req)
			return nil, err
		}
		c.log.Warn("view type not recognized", "type", req.ViewType, "error", err)
		return nil, err
	}

	if !req.Layer.Valid() {
		c.log.Warn("invalid view layer for new viewer", "type", req.ViewType, "layer", int(req.Layer), "name", contentName(req.Content))
		v.Release()
		return nil, fmt.Errorf("%w: %d", viewer.ErrInvalidLayer, int(req.Layer))
	}

	if n, ok := c.settings.MaxPerType[req.ViewType]; ok {
		v.SetMaxInstances(n)
	}

	p := v.Panel()
	p.SetBoundingArea(c.boundsFor(req.Layer, req.ViewType))
	p.AnimDuration = c.settings.AnimDuration

	c.viewers = append(c.viewers, v)
	v.SetContent(req.Content)
	v.SetRequest(req)
	v.SetLayer(req.Layer)

	c.log.Info("launching viewer", "type", req.ViewType, "id", v.ID(), "layer", req.Layer.String(), "path", req.Content.Media().Path)

	scale := c.settings.scale()
	if v.Capabilities().Resize {
		if req.EnforceMinSize && req.StartWidth < c.settings.MinSize {
			p.SetViewerWidth(c.settings.DefaultSize / scale)
		} else {
			p.SetAbsoluteSizeLimits(geom.Size{Width: req.StartWidth / scale, Height: 200}, geom.Size{Width: 99999, Height: 99999})
			p.SetSizeLimits()
			p.SetViewerWidth(req.StartWidth / scale)
		}
	}

	pos := loc
	if req.FromCenter {
		pos.X -= p.Width() * scale / 2
		pos.Y -= p.Height() * scale / 2
	}
	p.SetPosition(geom.Vec3{X: pos.X, Y: pos.Y, Z: loc.Z})
	p.SetScale(scale)

	if req.CheckBounds {
		p.CheckBounds(true)
	}

	if req.Fullscreen && v.Capabilities().Fullscreen {
		c.FullscreenViewer(v, true, req.ShowFullscreenController)
		if req.Content.Media().PixelExact() && req.TouchEnabled {
			if l, ok := v.(viewer.Lockable); ok {
				l.SetInterfaceLocked(true)
			}
		}
	}

	v.AnimateOn(delay)

	v.SetCloseRequestedCallback(func() { c.AnimateViewerOff(v, 0, viewer.OffShrink) })
	v.SetActivatedCallback(func() { c.viewerActivated(v) })

	c.enforceLimits(v)

	c.notify(events.ViewerSetChanged{})
	c.notify(events.ViewerAdded{ViewerID: v.ID(), ViewType: v.Type(), Content: req.Content})
	return v, nil
}

// liveSingleton returns the first live viewer of tag when that type is
// limited to one instance.
func (c *Controller) liveSingleton(tag string) viewer.Viewer {
	for _, v := range c.viewers {
		if v.Type() != tag || v.AboutToBeRemoved() {
			continue
		}
		if v.MaxInstances() == 1 {
			return v
		}
		return nil
	}
	return nil
}

func (c *Controller) retarget(v viewer.Viewer, req viewer.Request, loc geom.Vec3) {
	p := v.Panel()
	if req.FromCenter {
		f := p.Frame()
		loc = geom.Vec3{X: loc.X - f.Width/2, Y: loc.Y - f.Height/2}
	}
	v.SetContent(req.Content)
	checkBounds := req.CheckBounds
	p.TweenPosition(loc, 0, c.settings.AnimDuration, tween.InOutQuad, func() {
		if checkBounds {
			p.CheckBounds(false)
		}
	})
	v.Activate()
}

// boundsFor returns the bounding area for a viewer of tag on layer l, in
// l's coordinates. Launchers on the Normal layer span the Top layer's width.
func (c *Controller) boundsFor(l viewer.Layer, tag string) geom.Rect {
	lb := c.LayerBounds(l)
	if l == viewer.LayerNormal && viewer.IsLauncher(tag) {
		top := c.LayerBounds(viewer.LayerTop)
		inset := (top.Width - lb.Width) / 2
		return geom.Rect{X: -inset, Y: 0, Width: top.Width, Height: top.Height}
	}
	return lb.Local()
}

func (c *Controller) launchErrorPanel(req viewer.Request) {
	model := content.NewErrorModel(req.Content, missingFileMessage)
	errReq := viewer.NewRequestAt(model, viewer.TypeError, req.Location, viewer.LayerTop)
	errReq.FromCenter = req.FromCenter
	if _, err := c.AddViewer(errReq, 0); err != nil {
		c.log.Error("failed to show error panel", "error", err)
	}
}

// enforceLimits closes the oldest live viewers of v's type beyond its max.
func (c *Controller) enforceLimits(v viewer.Viewer) {
	var live []viewer.Viewer
	for _, o := range c.viewers {
		if o.Type() == v.Type() && !o.AboutToBeRemoved() {
			live = append(live, o)
		}
	}
	overflow := len(live) - v.MaxInstances()
	for i := 0; i < overflow; i++ {
		c.AnimateViewerOff(live[i], 0, viewer.OffShrink)
	}
}

// viewerActivated moves v to the end of the live list.
func (c *Controller) viewerActivated(v viewer.Viewer) {
	i := c.indexOf(v)
	if i < 0 || i == len(c.viewers)-1 {
		return
	}
	c.viewers = append(c.viewers[:i], c.viewers[i+1:]...)
	c.viewers = append(c.viewers, v)
	c.notify(events.ViewerSetChanged{})
}

// AnimateViewerOff starts closing v. It does nothing if v is already being
// removed. The viewer is detached once its transition completes.
func (c *Controller) AnimateViewerOff(v viewer.Viewer, delay time.Duration, style viewer.OffStyle) {
	if v == nil || v.AboutToBeRemoved() {
		return
	}
	c.RemoveFullscreenDarkener(v)
	v.SetAboutToBeRemoved(true)
	c.removals[v.ID()] = &pendingRemoval{v: v, started: c.now()}

	c.notify(events.ViewerSetChanged{})
	c.notify(events.ViewerRemoved{ViewerID: v.ID(), ViewType: v.Type()})

	v.AnimateOff(style, delay, func() { c.removeViewer(v) })
}

// CloseViewer closes the viewer with id using the shrink transition.
func (c *Controller) CloseViewer(id string) error {
	v, err := c.Viewer(id)
	if err != nil {
		return err
	}
	c.AnimateViewerOff(v, 0, viewer.OffShrink)
	return nil
}

// removeViewer detaches and releases v. It runs at most once per viewer.
func (c *Controller) removeViewer(v viewer.Viewer) {
	i := c.indexOf(v)
	if i < 0 {
		return
	}
	forced := false
	if r, ok := c.removals[v.ID()]; ok {
		forced = r.forced
		delete(c.removals, v.ID())
	}
	c.RemoveFullscreenDarkener(v)
	c.viewers = append(c.viewers[:i], c.viewers[i+1:]...)
	v.Release()

	c.notify(events.ViewerSetChanged{})
	c.notify(events.ViewerReleased{ViewerID: v.ID(), ViewType: v.Type(), Forced: forced})
}
