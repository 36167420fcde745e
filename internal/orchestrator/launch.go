package orchestrator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// pinboardStep is the offset between fanned-out pinboard items.
var pinboardStep = geom.Vec3{X: 200, Y: 100}

func errNotInCatalog(id int) error {
	return fmt.Errorf("content %d is not in the catalog", id)
}

// HandleLaunch dispatches a launch request and logs failures.
func (c *Controller) HandleLaunch(ev events.LaunchViewer) {
	if _, err := c.Launch(ev); err != nil {
		c.log.Warn("launch failed", "type", ev.Request.ViewType, "input", ev.UserString, "error", err)
	}
}

// Launch dispatches a launch request by content type. A user string takes
// precedence over the request. The viewer is returned for plain launches;
// presentations, slides and pinboards open several and return nil.
func (c *Controller) Launch(ev events.LaunchViewer) (viewer.Viewer, error) {
	if ev.UserString != "" {
		return c.AddViewer(ParseUserString(ev.UserString, ev.Origin), 0)
	}

	req := ev.Request
	m := req.Content
	switch {
	case m != nil && m.Type == content.TypePresentation:
		c.StartPresentation(m, req.Location, req.ShowPresentationController)
		return nil, nil

	case m != nil && (m.Type == content.TypeSlideGrid || m.Type == content.TypeSlide || m.Type == content.TypeCustomTemplate):
		c.LoadPresentationSlide(m)
		return nil, nil

	case m != nil && m.Type == content.TypePinboard:
		c.launchPinboard(m, req.Location)
		return nil, nil
	}
	return c.AddViewer(req, 0)
}

// launchPinboard opens every pinboard item as a media viewer, stepping
// diagonally from location.
func (c *Controller) launchPinboard(board *content.Model, location geom.Vec3) {
	if !(viewer.Request{Location: location}).HasPosition() {
		location = c.LayerBounds(viewer.LayerNormal).Origin()
	}
	at := location.Add(pinboardStep)
	for _, item := range c.catalog.References(board, content.KeyPinboardItems) {
		req := viewer.NewRequestAt(item, viewer.TypeMediaViewer, at, viewer.LayerNormal)
		if _, err := c.AddViewer(req, 0); err != nil {
			c.log.Warn("pinboard item failed to launch", "item", item.ID, "error", err)
		}
		at = at.Add(pinboardStep)
	}
}

// ParseUserString builds a request from "key:value ! key:value" pairs.
// Unknown keys and pairs without a value are ignored.
func ParseUserString(s string, origin geom.Vec3) viewer.Request {
	req := viewer.NewRequestAt(nil, viewer.TypeMediaViewer, origin, viewer.LayerNormal)
	for _, tok := range strings.Split(s, " ! ") {
		key, value, ok := strings.Cut(strings.TrimSpace(tok), ":")
		if !ok || key == "" || value == "" {
			continue
		}
		switch key {
		case "fullscreen":
			req.Fullscreen = content.ParseBool(value)
		case "view_type":
			req.ViewType = value
		case "location":
			req.Location = parseVector(value)
		case "start_width":
			if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				req.StartWidth = f
			}
		case "from_center":
			req.FromCenter = content.ParseBool(value)
		case "view_layer":
			if l, err := viewer.ParseLayer(value); err == nil {
				req.Layer = l
			} else if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				// Out of range layers are rejected by AddViewer.
				req.Layer = viewer.Layer(n)
			}
		case "media_path":
			if req.Content == nil {
				req.Content = &content.Model{}
			}
			if req.ViewType == viewer.TypeMediaViewer {
				req.Content.SetResource(content.KeyMedia, content.NewResource(os.ExpandEnv(value)))
			} else {
				req.Content.SetProp("media_path", value)
			}
		case "drawing":
			if value == "on" {
				req.StartDrawing = true
			}
		}
	}
	return req
}

// parseVector reads "x, y[, z]". Missing or malformed components are zero.
func parseVector(s string) geom.Vec3 {
	var out [3]float64
	for i, part := range strings.SplitN(s, ",", 3) {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err == nil {
			out[i] = f
		}
	}
	return geom.Vec3{X: out[0], Y: out[1], Z: out[2]}
}

// AdvancePDF turns the page of the most recently activated media viewer
// when it shows a PDF. It reports whether a page was turned.
func (c *Controller) AdvancePDF(forwards bool) bool {
	for i := len(c.viewers) - 1; i >= 0; i-- {
		v := c.viewers[i]
		if v.Type() != viewer.TypeMediaViewer {
			continue
		}
		pg, ok := v.(viewer.Paginated)
		if !ok || v.Content().Media().Type != content.ResourcePDF {
			return false
		}
		if forwards {
			pg.NextPage()
		} else {
			pg.PrevPage()
		}
		return true
	}
	return false
}

// Advance turns a PDF page if one is showing, else moves the presentation.
func (c *Controller) Advance(forwards bool) {
	if !c.AdvancePDF(forwards) {
		c.AdvancePresentation(forwards)
	}
}

// CloseAll closes every viewer with a staggered transition. While the wall
// is idling the presentation controller, launcher and search stay and are
// raised instead. Slide content is kept unless closeSlideContent is set.
func (c *Controller) CloseAll(closeSlideContent bool) {
	all := c.Viewers()
	if len(all) == 0 {
		return
	}
	idle := c.idle()
	delta := c.settings.AnimDuration / time.Duration(len(all))
	delay := delta * time.Duration(len(all))

	for _, v := range all {
		tag := v.Type()
		if idle && (tag == viewer.TypePresentationController || tag == viewer.TypeLauncher || tag == viewer.TypeSearch) {
			v.Panel().SendToFront()
			continue
		}
		if !closeSlideContent && v.Request().SlideContent {
			continue
		}
		style := viewer.OffShrink
		if v.Layer() == viewer.LayerBackground {
			style = viewer.OffFade
		}
		c.AnimateViewerOff(v, delay, style)
		delay -= delta
	}
}

// Exit closes everything and quits once ExitDelay has passed on the
// animator clock.
func (c *Controller) Exit() {
	c.CloseAll(true)
	delay := c.settings.ExitDelay
	if delay <= 0 {
		delay = DefaultSettings().ExitDelay
	}
	c.anim.After("orchestrator-exit", delay, func() {
		c.notify(events.Quit{})
		c.exit()
	})
}

// Listen subscribes the controller to the inbound requests on bus.
func (c *Controller) Listen(bus *events.Bus) {
	events.Listen(bus, c.HandleLaunch)
	events.Listen(bus, func(e events.CloseAll) { c.CloseAll(e.CloseSlideContent) })
	events.Listen(bus, func(events.Arrange) { c.ArrangeViewers() })
	events.Listen(bus, func(e events.Gather) { c.GatherViewers(e.Origin) })
	events.Listen(bus, func(e events.Fullscreen) {
		if err := c.FullscreenByID(e.ViewerID); err != nil {
			c.log.Warn("fullscreen request failed", "error", err)
		}
	})
	events.Listen(bus, func(e events.Unfullscreen) {
		if err := c.UnfullscreenByID(e.ViewerID); err != nil {
			c.log.Warn("unfullscreen request failed", "error", err)
		}
	})
	events.Listen(bus, func(e events.Advance) { c.Advance(e.Forwards) })
	events.Listen(bus, func(e events.PDFPageChange) { c.AdvancePDF(e.Forwards) })
	events.Listen(bus, func(e events.PresentationSlide) { c.SetPresentationSlide(e.SlideID) })
	events.Listen(bus, func(e events.StartPresentation) {
		if err := c.StartPresentationByID(e.PresentationID, e.ShowController); err != nil {
			c.log.Warn("start presentation failed", "error", err)
		}
	})
	events.Listen(bus, func(events.EndPresentation) { c.EndPresentation() })
	events.Listen(bus, func(events.AppExit) { c.Exit() })
}
