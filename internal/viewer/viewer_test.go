package viewer

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
)

type hookViewer struct {
	*Base
	contentSets    int
	fullscreenSets int
	layerSets      int
}

func (h *hookViewer) OnContentSet()    { h.contentSets++ }
func (h *hookViewer) OnFullscreenSet() { h.fullscreenSets++ }
func (h *hookViewer) OnLayerSet()      { h.layerSets++ }

func newHookViewer(env Env) *hookViewer {
	h := &hookViewer{}
	h.Base = NewBase(env, Spec{Type: "hook", Capabilities: Capabilities{Resize: true}, MaxInstances: 3}, h)
	return h
}

func TestNewRequestDefaults(t *testing.T) {
	r := NewRequest(nil, TypeMediaViewer)
	if r.HasPosition() {
		t.Fatalf("expected sentinel position, got %+v", r.Location)
	}
	if !r.FromCenter || !r.CheckBounds || !r.EnforceMinSize || !r.TouchEnabled || !r.AutoStart {
		t.Fatalf("expected default flags on, got %+v", r)
	}
	if !r.ShowFullscreenController {
		t.Fatalf("expected companion controller shown by default")
	}
	if r.Fullscreen || r.StartLocked {
		t.Fatalf("expected fullscreen and locked off by default")
	}
	if r.Volume != 100 {
		t.Fatalf("expected Volume=100, got %d", r.Volume)
	}
	if r.Layer != LayerNormal {
		t.Fatalf("expected Layer=normal, got %s", r.Layer)
	}

	at := NewRequestAt(nil, TypeLauncher, geom.Vec3{X: 10, Y: 20}, LayerTop)
	if !at.HasPosition() || at.Layer != LayerTop {
		t.Fatalf("expected explicit position on top layer, got %+v", at)
	}
}

func TestParseLayer(t *testing.T) {
	cases := map[string]Layer{"background": LayerBackground, "Top": LayerTop, "1": LayerNormal, "": LayerNormal}
	for in, want := range cases {
		got, err := ParseLayer(in)
		if err != nil {
			t.Fatalf("ParseLayer(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("expected ParseLayer(%q)=%s, got %s", in, want, got)
		}
	}
	if _, err := ParseLayer("7"); !errors.Is(err, ErrInvalidLayer) {
		t.Fatalf("expected ErrInvalidLayer, got %v", err)
	}
}

func TestSetSizeLimitsPreservesArea(t *testing.T) {
	p := NewPanel("p", nil, geom.Size{Width: 400, Height: 400})
	p.SetContentAspect(2)

	min := p.MinSize()
	if math.Abs(min.Width/min.Height-2) > 1e-9 {
		t.Fatalf("expected min aspect 2, got %f", min.Width/min.Height)
	}
	if min.Width > DefaultAbsMinSize.Width+1e-9 || min.Height > DefaultAbsMinSize.Height+1e-9 {
		t.Fatalf("expected min within abs min, got %+v", min)
	}
	def := p.DefaultSize()
	if def.Width > 400+1e-9 || def.Height > 400+1e-9 {
		t.Fatalf("expected default within ideal, got %+v", def)
	}
}

func TestSetViewerSizeClamps(t *testing.T) {
	p := NewPanel("p", nil, geom.Size{Width: 400, Height: 400})
	p.SetViewerWidth(10)
	if p.Size() != p.MinSize() {
		t.Fatalf("expected clamp to min %+v, got %+v", p.MinSize(), p.Size())
	}
	p.SetViewerWidth(1e9)
	if p.Size() != p.MaxSize() {
		t.Fatalf("expected clamp to max %+v, got %+v", p.MaxSize(), p.Size())
	}
	p.SetViewerWidth(500)
	if p.Width() != 500 || p.Height() != 500 {
		t.Fatalf("expected 500x500, got %+v", p.Size())
	}
}

func TestCheckBoundsImmediate(t *testing.T) {
	p := NewPanel("p", nil, geom.Size{Width: 400, Height: 400})
	p.SetViewerWidth(400)
	p.SetBoundingArea(geom.Rect{Width: 1000, Height: 1000})

	p.SetPosition(geom.Vec3{X: -50, Y: 900})
	p.CheckBounds(true)
	if got := p.Position(); got.X != 0 || got.Y != 600 {
		t.Fatalf("expected (0,600), got (%v,%v)", got.X, got.Y)
	}

	// Larger than the area: keep it covering.
	p.SetViewerWidth(2000)
	p.SetPosition(geom.Vec3{X: 100, Y: 100})
	p.CheckBounds(true)
	f := p.Frame()
	if f.X > 0 || f.Right() < 1000 {
		t.Fatalf("expected oversize frame to cover area, got %+v", f)
	}
}

func TestCheckBoundsTweensWhenNotImmediate(t *testing.T) {
	anim := tween.New()
	p := NewPanel("p", anim, geom.Size{Width: 400, Height: 400})
	p.SetViewerWidth(400)
	p.SetBoundingArea(geom.Rect{Width: 1000, Height: 1000})
	p.SetPosition(geom.Vec3{X: 800, Y: 0})

	p.CheckBounds(false)
	if anim.Pending() != 1 {
		t.Fatalf("expected 1 pending tween, got %d", anim.Pending())
	}
	anim.Advance(time.Second)
	if got := p.Position().X; got != 600 {
		t.Fatalf("expected X=600 after tween, got %v", got)
	}
}

func TestTweenFrameOverRunningResize(t *testing.T) {
	anim := tween.New()
	p := NewPanel("p", anim, geom.Size{Width: 400, Height: 400})
	p.SetViewerWidth(400)
	p.SetBoundingArea(geom.Rect{Width: 1000, Height: 1000})

	// Landing at 900x900 from (600,600) would clamp back inside the area.
	p.AnimateSizeTo(geom.Size{Width: 900, Height: 900})
	p.TweenPosition(geom.Vec3{X: 600, Y: 600}, 0, p.AnimDuration, tween.InOutQuad, nil)
	anim.Advance(100 * time.Millisecond)

	want := geom.Rect{X: 500, Y: 500, Width: 300, Height: 300}
	p.TweenFrame(want, 0, p.AnimDuration, nil)
	anim.Advance(2 * time.Second)

	if got := p.Frame(); !got.ApproxEqual(want, 0.01) {
		t.Fatalf("expected frame %+v, got %+v", want, got)
	}
	if anim.Pending() != 0 {
		t.Fatalf("expected no pending tweens, got %d", anim.Pending())
	}
}

func TestAnimatedSizeMatchesImmediateClamp(t *testing.T) {
	p := NewPanel("p", tween.New(), geom.Size{Width: 400, Height: 400})
	p.SetAbsoluteSizeLimits(geom.Size{Width: 100, Height: 100}, geom.Size{Width: 600, Height: 600})
	p.SetSizeLimits()

	p.AnimateHeightTo(1080)
	p.CompleteTweens()
	animated := p.Size()

	p.SetViewerHeight(1080)
	if animated != p.Size() {
		t.Fatalf("expected animated size %+v to match immediate %+v", animated, p.Size())
	}
	if animated != p.MaxSize() {
		t.Fatalf("expected clamp to max %+v, got %+v", p.MaxSize(), animated)
	}
}

func TestBaseHooksAndCallbacks(t *testing.T) {
	h := newHookViewer(Env{})
	h.SetContent(&content.Model{ID: 1})
	h.SetFullscreen(true)
	h.SetLayer(LayerTop)
	if h.contentSets != 1 || h.fullscreenSets != 1 || h.layerSets != 1 {
		t.Fatalf("expected each hook once, got %d/%d/%d", h.contentSets, h.fullscreenSets, h.layerSets)
	}

	closed, activated := 0, 0
	h.SetCloseRequestedCallback(func() { closed++ })
	h.SetActivatedCallback(func() { activated++ })
	before := h.Panel().Z()
	h.Activate()
	h.RequestClose()
	if closed != 1 || activated != 1 {
		t.Fatalf("expected callbacks once, got closed=%d activated=%d", closed, activated)
	}
	if h.Panel().Z() <= before {
		t.Fatalf("expected Activate to raise z")
	}

	h.Release()
	h.RequestClose()
	if closed != 1 {
		t.Fatalf("expected released viewer to drop callbacks, got closed=%d", closed)
	}
}

func TestBaseFailKeepsViewerClosable(t *testing.T) {
	h := newHookViewer(Env{})
	h.Fail(errors.New("decoder crashed"))
	if !h.FatalError() {
		t.Fatalf("expected FatalError=true")
	}
	closed := false
	h.SetCloseRequestedCallback(func() { closed = true })
	h.RequestClose()
	if !closed {
		t.Fatalf("expected fatal viewer to remain closable")
	}
}

func TestAnimateOffCompletes(t *testing.T) {
	anim := tween.New()
	h := newHookViewer(Env{Animator: anim, AnimDuration: 100 * time.Millisecond})
	for _, style := range []OffStyle{OffShrink, OffFade, OffFall} {
		done := 0
		h.AnimateOff(style, 0, func() { done++ })
		anim.Advance(50 * time.Millisecond)
		if done != 0 {
			t.Fatalf("%s: expected not done mid-transition", style)
		}
		anim.Advance(100 * time.Millisecond)
		if done != 1 {
			t.Fatalf("%s: expected done once, got %d", style, done)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	ctor := func(req Request, env Env) (Viewer, error) { return newHookViewer(env), nil }
	if err := reg.Register("hook", ctor); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register("hook", ctor); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if _, err := reg.New(NewRequest(nil, "nope"), Env{}); !errors.Is(err, ErrUnknownViewType) {
		t.Fatalf("expected ErrUnknownViewType, got %v", err)
	}
	v, err := reg.New(NewRequest(nil, "hook"), Env{})
	if err != nil || v.Type() != "hook" {
		t.Fatalf("expected hook viewer, got %v, %v", v, err)
	}
	if reg.Count() != 1 || !reg.Has("hook") {
		t.Fatalf("expected one registered type")
	}
	reg.Unregister("hook")
	if reg.Has("hook") {
		t.Fatalf("expected hook to be unregistered")
	}
}
