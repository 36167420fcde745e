package panels

import (
	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// PresentationController steps through the current presentation.
type PresentationController struct {
	*viewer.Base
}

func NewPresentationController(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	p := &PresentationController{}
	p.Base = viewer.NewBase(env, control(viewer.TypePresentationController, controlSize), p)
	fixSize(p.Base, controlSize)
	return p, nil
}

// State returns the presentation and slide on screen.
func (p *PresentationController) State() content.PresentationState {
	return p.Env().Catalog.Current()
}

// Slides lists the slides of the current presentation.
func (p *PresentationController) Slides() []*content.Model {
	cat := p.Env().Catalog
	if pres := cat.Lookup(cat.Current().PresentationID); pres != nil {
		return pres.Children
	}
	return nil
}

// Position returns the 1-based index of the current slide and the count.
func (p *PresentationController) Position() (int, int) {
	slides := p.Slides()
	cur := p.State().SlideID
	for i, s := range slides {
		if s.ID == cur {
			return i + 1, len(slides)
		}
	}
	return 0, len(slides)
}

func (p *PresentationController) Next() { p.Env().Post(events.Advance{Forwards: true}) }
func (p *PresentationController) Prev() { p.Env().Post(events.Advance{Forwards: false}) }

// Jump shows the slide with id.
func (p *PresentationController) Jump(id int) {
	p.Env().Post(events.PresentationSlide{SlideID: id})
}

// End stops the presentation and closes the controller.
func (p *PresentationController) End() {
	p.Env().Post(events.EndPresentation{})
	p.RequestClose()
}

// FullscreenController offers exit-fullscreen and close for the viewer it
// is linked to.
type FullscreenController struct {
	*viewer.Base
	linked string
}

func NewFullscreenController(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	f := &FullscreenController{}
	f.Base = viewer.NewBase(env, control(viewer.TypeFullscreenController, controlSize), f)
	fixSize(f.Base, controlSize)
	return f, nil
}

func (f *FullscreenController) LinkViewer(id string) { f.linked = id }
func (f *FullscreenController) Linked() string       { return f.linked }

// ExitFullscreen restores the linked viewer and closes the controller.
func (f *FullscreenController) ExitFullscreen() {
	if f.linked != "" {
		f.Env().Post(events.Unfullscreen{ViewerID: f.linked})
	}
	f.RequestClose()
}

// SettingsPanel opens the media choosers and the diagnostic views.
type SettingsPanel struct {
	*viewer.Base
}

func NewSettingsPanel(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	s := &SettingsPanel{}
	s.Base = viewer.NewBase(env, control(viewer.TypeSettings, searchSize), s)
	fixSize(s.Base, searchSize)
	return s, nil
}

// Actions lists the view types the panel can open.
func (s *SettingsPanel) Actions() []string {
	return []string{
		viewer.TypeSelectMediaAmbient,
		viewer.TypeSelectMediaBackground,
		viewer.TypeDiagnostic,
		viewer.TypeStateViewer,
	}
}

// Open launches tag on the Top layer next to the panel.
func (s *SettingsPanel) Open(tag string) {
	f := s.Panel().Frame()
	req := viewer.NewRequest(nil, tag)
	req.Layer = viewer.LayerTop
	req.Location = f.Origin()
	req.Location.X += f.Width + 20
	req.FromCenter = false
	s.Env().Post(events.LaunchViewer{Request: req})
}
