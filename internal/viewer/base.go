package viewer

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
)

// Hooks a concrete viewer may implement to react to bookkeeping changes.
type (
	ContentSetHook    interface{ OnContentSet() }
	RequestSetHook    interface{ OnRequestSet() }
	LayerSetHook      interface{ OnLayerSet() }
	FullscreenSetHook interface{ OnFullscreenSet() }
)

// Spec declares the fixed traits of a viewer kind.
type Spec struct {
	Type         string
	Capabilities Capabilities
	MaxInstances int
	DefaultSize  geom.Size
}

// Base implements Viewer. Concrete kinds embed it and pass themselves as
// self so the On*Set hooks they define are called.
type Base struct {
	id   string
	spec Spec
	env  Env
	self any
	log  *slog.Logger

	panel *Panel

	content     *content.Model
	req         Request
	layer       Layer
	fullscreen  bool
	unfsRect    geom.Rect
	removing    bool
	fatal       error
	titleHidden bool
	released    bool

	onClose     func()
	onActivated func()
}

// NewBase returns a Base for spec. self is the embedding viewer.
func NewBase(env Env, spec Spec, self any) *Base {
	id := uuid.NewString()
	def := spec.DefaultSize
	if def.Width <= 0 || def.Height <= 0 {
		def = env.DefaultSize
	}
	if spec.MaxInstances <= 0 {
		spec.MaxInstances = 1
	}
	b := &Base{
		id:    id,
		spec:  spec,
		env:   env,
		self:  self,
		log:   env.logger().With("viewer", id[:8], "type", spec.Type),
		panel: NewPanel(id, env.Animator, def),
		layer: LayerNormal,
	}
	if env.AnimDuration > 0 {
		b.panel.AnimDuration = env.AnimDuration
	}
	return b
}

func (b *Base) ID() string                 { return b.id }
func (b *Base) Type() string               { return b.spec.Type }
func (b *Base) Capabilities() Capabilities { return b.spec.Capabilities }
func (b *Base) MaxInstances() int          { return b.spec.MaxInstances }
func (b *Base) Content() *content.Model    { return b.content }
func (b *Base) Request() Request           { return b.req }
func (b *Base) Layer() Layer               { return b.layer }
func (b *Base) Fullscreen() bool           { return b.fullscreen }
func (b *Base) UnfullscreenRect() geom.Rect {
	return b.unfsRect
}
func (b *Base) SetUnfullscreenRect(r geom.Rect) { b.unfsRect = r }
func (b *Base) AboutToBeRemoved() bool          { return b.removing }
func (b *Base) SetAboutToBeRemoved(on bool)     { b.removing = on }
func (b *Base) FatalError() bool                { return b.fatal != nil }
func (b *Base) Err() error                      { return b.fatal }
func (b *Base) Panel() *Panel                   { return b.panel }
func (b *Base) Env() Env                        { return b.env }
func (b *Base) Logger() *slog.Logger            { return b.log }
func (b *Base) Released() bool                  { return b.released }
func (b *Base) TitleHidden() bool               { return b.titleHidden }
func (b *Base) HideTitle()                      { b.titleHidden = true }
func (b *Base) ShowTitle()                      { b.titleHidden = false }

// SetMaxInstances overrides the declared limit. Values below 1 are ignored.
func (b *Base) SetMaxInstances(n int) {
	if n >= 1 {
		b.spec.MaxInstances = n
	}
}

// Fail marks the viewer fatally errored. It stays closable.
func (b *Base) Fail(err error) {
	if err == nil {
		return
	}
	b.fatal = err
	b.log.Warn("viewer failed", "error", err)
}

func (b *Base) SetContent(m *content.Model) {
	b.content = m
	if h, ok := b.self.(ContentSetHook); ok {
		h.OnContentSet()
	}
}

func (b *Base) SetRequest(r Request) {
	b.req = r
	if h, ok := b.self.(RequestSetHook); ok {
		h.OnRequestSet()
	}
}

func (b *Base) SetLayer(l Layer) {
	b.layer = l
	if h, ok := b.self.(LayerSetHook); ok {
		h.OnLayerSet()
	}
}

// SetFullscreen flips the flag only; it never moves or resizes the panel.
func (b *Base) SetFullscreen(on bool) {
	b.fullscreen = on
	if h, ok := b.self.(FullscreenSetHook); ok {
		h.OnFullscreenSet()
	}
}

func (b *Base) SetCloseRequestedCallback(fn func()) { b.onClose = fn }
func (b *Base) SetActivatedCallback(fn func())      { b.onActivated = fn }

func (b *Base) RequestClose() {
	if b.onClose != nil {
		b.onClose()
	}
}

func (b *Base) Activate() {
	b.panel.SendToFront()
	if b.onActivated != nil {
		b.onActivated()
	}
}

// AnimateOn fades the viewer in.
func (b *Base) AnimateOn(delay time.Duration) {
	p := b.panel
	p.SetOpacity(0)
	p.TweenOpacity(1, delay, p.AnimDuration, tween.InOutQuad, nil)
}

// AnimateOff plays style and calls done when the opacity reaches zero.
func (b *Base) AnimateOff(style OffStyle, delay time.Duration, done func()) {
	p := b.panel
	dur := p.AnimDuration
	switch style {
	case OffShrink:
		p.TweenScale(0.001, delay, dur, tween.InCubic, nil)
	case OffFall:
		drop := p.BoundingArea().Height
		if drop <= 0 {
			drop = p.Frame().Height * 2
		}
		pos := p.Position()
		pos.Y += drop
		p.TweenPosition(pos, delay, dur, tween.InCubic, nil)
	}
	p.TweenOpacity(0, delay, dur, tween.InOutQuad, done)
}

// Release is idempotent.
func (b *Base) Release() {
	if b.released {
		return
	}
	b.released = true
	b.onClose = nil
	b.onActivated = nil
	b.panel.CompleteTweens()
}
