package orchestrator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
	"github.com/1broseidon/viewwall/internal/viewer"
)

type fakeViewer struct {
	*viewer.Base
	stuck    bool
	offCalls int
	page     int
}

func (f *fakeViewer) AnimateOff(style viewer.OffStyle, delay time.Duration, done func()) {
	f.offCalls++
	if f.stuck {
		return
	}
	f.Base.AnimateOff(style, delay, done)
}

func (f *fakeViewer) NextPage() { f.page++ }
func (f *fakeViewer) PrevPage() { f.page-- }
func (f *fakeViewer) Page() int { return f.page }

// missing reports the listed paths as unreachable.
type missing map[string]bool

func (m missing) Exists(r content.Resource) bool { return !m[r.Path] }

const typeStuck = "stuck"

func fakeKind(tag string, caps viewer.Capabilities, max int) viewer.Constructor {
	return func(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
		res := req.Content.Media()
		if tag == viewer.TypeMediaViewer && env.Resolver != nil && !env.Resolver.Exists(res) {
			return nil, fmt.Errorf("%w: %s", viewer.ErrContentUnresolved, res.Path)
		}
		f := &fakeViewer{stuck: tag == typeStuck}
		f.Base = viewer.NewBase(env, viewer.Spec{Type: tag, Capabilities: caps, MaxInstances: max}, f)
		if res.Width > 0 && res.Height > 0 {
			f.Panel().SetContentAspect(res.CroppedAspect())
		}
		return f, nil
	}
}

type recorder struct {
	all []any
}

func (r *recorder) count(match func(any) bool) int {
	n := 0
	for _, ev := range r.all {
		if match(ev) {
			n++
		}
	}
	return n
}

func (r *recorder) removed(id string) int {
	return r.count(func(ev any) bool {
		e, ok := ev.(events.ViewerRemoved)
		return ok && e.ViewerID == id
	})
}

func (r *recorder) setChanged() int {
	return r.count(func(ev any) bool { _, ok := ev.(events.ViewerSetChanged); return ok })
}

type harness struct {
	c     *Controller
	bus   *events.Bus
	rec   *recorder
	clock time.Time
	idle  bool
	exits int
}

func newHarness(t *testing.T, cat *content.Catalog) *harness {
	t.Helper()
	h := &harness{rec: &recorder{}, clock: time.Unix(1_700_000_000, 0)}

	reg := viewer.NewRegistry()
	full := viewer.Capabilities{Arrange: true, Resize: true, Fullscreen: true}
	reg.MustRegister(viewer.TypeMediaViewer, fakeKind(viewer.TypeMediaViewer, full, 50))
	reg.MustRegister(viewer.TypeLauncher, fakeKind(viewer.TypeLauncher, viewer.Capabilities{}, 1))
	reg.MustRegister(viewer.TypeSearch, fakeKind(viewer.TypeSearch, viewer.Capabilities{}, 1))
	reg.MustRegister(viewer.TypePresentationController, fakeKind(viewer.TypePresentationController, viewer.Capabilities{}, 1))
	reg.MustRegister(viewer.TypeFullscreenController, fakeKind(viewer.TypeFullscreenController, viewer.Capabilities{}, 1))
	reg.MustRegister(viewer.TypeError, fakeKind(viewer.TypeError, viewer.Capabilities{}, 10))
	reg.MustRegister("sticky", fakeKind("sticky", full, 2))
	reg.MustRegister(typeStuck, fakeKind(typeStuck, full, 10))

	h.bus = events.NewBus()
	h.bus.ListenAll(func(ev any) { h.rec.all = append(h.rec.all, ev) })

	h.c = New(Options{
		Settings: DefaultSettings(),
		Display:  geom.Size{Width: 1920, Height: 1080},
		Registry: reg,
		Animator: tween.New(),
		Bus:      h.bus,
		Catalog:  cat,
		Resolver: missing{"missing.png": true},
		Idle:     func() bool { return h.idle },
		Exit:     func() { h.exits++ },
		Now:      func() time.Time { return h.clock },
		Rand:     rand.New(rand.NewSource(1)),
	})
	return h
}

func (h *harness) settle() {
	h.c.Tick(2 * time.Second)
}

func media(id int, path string) *content.Model {
	m := &content.Model{ID: id, Name: path, Type: content.TypeMedia}
	m.SetResource(content.KeyMedia, content.Resource{Path: path, Type: content.ResourceImage, Width: 1000, Height: 1000})
	return m
}

func (h *harness) launch(t *testing.T, m *content.Model, tag string) viewer.Viewer {
	t.Helper()
	v, err := h.c.AddViewer(viewer.NewRequest(m, tag), 0)
	if err != nil {
		t.Fatalf("AddViewer(%s): %v", tag, err)
	}
	return v
}

func live(c *Controller, tag string) []viewer.Viewer {
	var out []viewer.Viewer
	for _, v := range c.ViewersOfType(tag) {
		if !v.AboutToBeRemoved() {
			out = append(out, v)
		}
	}
	return out
}

func fullscreenCount(c *Controller) int {
	n := 0
	for _, v := range c.Viewers() {
		if v.Fullscreen() {
			n++
		}
	}
	return n
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestAddViewerCentersOnLayer(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)

	f := v.Panel().Frame()
	if !near(f.Width, 400) || !near(f.Height, 400) {
		t.Fatalf("expected default 400x400, got %.1fx%.1f", f.Width, f.Height)
	}
	if !near(f.X, 760) || !near(f.Y, 340) {
		t.Fatalf("expected frame at (760,340), got (%.1f,%.1f)", f.X, f.Y)
	}
	if v.Layer() != viewer.LayerNormal || v.Content().ID != 1 {
		t.Fatalf("expected content 1 on normal layer, got %d on %s", v.Content().ID, v.Layer())
	}
	added := h.rec.count(func(ev any) bool { _, ok := ev.(events.ViewerAdded); return ok })
	if added != 1 || h.rec.setChanged() != 1 {
		t.Fatalf("expected one added and one set-changed, got added=%d changed=%d", added, h.rec.setChanged())
	}
}

func TestSingletonRetargets(t *testing.T) {
	h := newHarness(t, nil)
	first := viewer.NewRequestAt(media(1, "a.png"), viewer.TypeLauncher, geom.Vec3{X: 500, Y: 500}, viewer.LayerNormal)
	second := viewer.NewRequestAt(media(2, "b.png"), viewer.TypeLauncher, geom.Vec3{X: 1000, Y: 600}, viewer.LayerNormal)

	a, err := h.c.AddViewer(first, 0)
	if err != nil {
		t.Fatalf("first launch: %v", err)
	}
	b, err := h.c.AddViewer(second, 0)
	if err != nil {
		t.Fatalf("second launch: %v", err)
	}
	h.settle()

	if a != b {
		t.Fatalf("expected the same launcher to be re-targeted")
	}
	if n := len(h.c.ViewersOfType(viewer.TypeLauncher)); n != 1 {
		t.Fatalf("expected 1 launcher, got %d", n)
	}
	if a.Content().ID != 2 {
		t.Fatalf("expected content 2, got %d", a.Content().ID)
	}
	pos := a.Panel().Position()
	if !near(pos.X, 800) || !near(pos.Y, 400) {
		t.Fatalf("expected launcher at (800,400), got (%.1f,%.1f)", pos.X, pos.Y)
	}
}

func TestFullscreenControllerToggles(t *testing.T) {
	h := newHarness(t, nil)
	req := viewer.NewRequestAt(nil, viewer.TypeFullscreenController, geom.Vec3{X: 100, Y: 100}, viewer.LayerTop)
	first, err := h.c.AddViewer(req, 0)
	if err != nil {
		t.Fatalf("AddViewer: %v", err)
	}
	again, _ := h.c.AddViewer(req, 0)

	if again != first || !first.AboutToBeRemoved() {
		t.Fatalf("expected repeat request to close the existing controller")
	}
	if n := len(h.c.ViewersOfType(viewer.TypeFullscreenController)); n != 1 {
		t.Fatalf("expected no second controller, got %d", n)
	}
	h.settle()
	if n := len(h.c.ViewersOfType(viewer.TypeFullscreenController)); n != 0 {
		t.Fatalf("expected controller released, got %d", n)
	}
}

func TestFullscreenWideViewerFillsWidth(t *testing.T) {
	for _, scale := range []float64{1, 0.5} {
		h := newHarness(t, nil)
		s := h.c.Settings()
		s.MasterScale = scale
		h.c.UpdateSettings(s)

		m := &content.Model{ID: 1, Name: "wide"}
		m.SetResource(content.KeyMedia, content.Resource{Path: "wide.png", Type: content.ResourceImage, Width: 3000, Height: 1000})
		v := h.launch(t, m, viewer.TypeMediaViewer)

		h.c.FullscreenViewer(v, false, false)
		h.settle()

		f := v.Panel().Frame()
		if !near(f.Width, 1920) {
			t.Fatalf("scale %.1f: expected frame width 1920, got %.2f", scale, f.Width)
		}
		if !near(f.Height, 640) {
			t.Fatalf("scale %.1f: expected frame height 640, got %.2f", scale, f.Height)
		}
		if !near(f.X, 0) || !near(f.Y, 220) {
			t.Fatalf("scale %.1f: expected frame at (0,220), got (%.1f,%.1f)", scale, f.X, f.Y)
		}
		if !v.Fullscreen() {
			t.Fatalf("expected fullscreen flag set")
		}
	}
}

func TestFullscreenRoundTripRestoresRect(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	before := v.Panel().Frame()

	h.c.FullscreenViewer(v, true, false)
	if f := v.Panel().Frame(); !near(f.Height, 1080) {
		t.Fatalf("expected fullscreen height 1080, got %.1f", f.Height)
	}
	h.c.UnfullscreenViewer(v, true)

	if after := v.Panel().Frame(); !after.ApproxEqual(before, 0.01) {
		t.Fatalf("expected frame %+v restored, got %+v", before, after)
	}
	if v.Fullscreen() || len(h.c.Darkeners()) != 0 {
		t.Fatalf("expected fullscreen cleared and no darkeners")
	}
}

func TestFullscreenAnimatedRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	before := v.Panel().Frame()

	h.c.FullscreenViewer(v, false, false)
	h.settle()
	if f := v.Panel().Frame(); !near(f.Height, 1080) || !near(f.X, 420) {
		t.Fatalf("expected fullscreen frame at x=420 with height 1080, got %+v", f)
	}
	h.c.UnfullscreenViewer(v, false)
	h.settle()

	if after := v.Panel().Frame(); !after.ApproxEqual(before, 0.01) {
		t.Fatalf("expected frame %+v restored, got %+v", before, after)
	}
	if v.Fullscreen() {
		t.Fatalf("expected fullscreen cleared")
	}
}

func TestUnfullscreenMidTransitionRestoresRect(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	before := v.Panel().Frame()

	h.c.FullscreenViewer(v, false, false)
	h.c.Tick(100 * time.Millisecond)
	h.c.UnfullscreenViewer(v, false)
	h.settle()

	if after := v.Panel().Frame(); !after.ApproxEqual(before, 0.01) {
		t.Fatalf("expected frame %+v restored, got %+v", before, after)
	}
	if h.c.anim.Pending() != 0 {
		t.Fatalf("expected no pending tweens, got %d", h.c.anim.Pending())
	}
}

func TestFullscreenClampsAlikeWhenAnimated(t *testing.T) {
	frames := make([]geom.Rect, 2)
	for i, immediate := range []bool{true, false} {
		h := newHarness(t, nil)
		v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
		p := v.Panel()
		p.SetAbsoluteSizeLimits(geom.Size{Width: 100, Height: 100}, geom.Size{Width: 600, Height: 600})
		p.SetSizeLimits()

		h.c.FullscreenViewer(v, immediate, false)
		h.settle()
		frames[i] = p.Frame()
	}
	if !frames[0].ApproxEqual(frames[1], 0.01) {
		t.Fatalf("expected animated frame %+v to match immediate %+v", frames[1], frames[0])
	}
	if !near(frames[1].Height, 600) {
		t.Fatalf("expected height clamped to 600, got %.1f", frames[1].Height)
	}
}

func TestUnfullscreenLargeRectUsesDefaultSize(t *testing.T) {
	h := newHarness(t, nil)
	req := viewer.NewRequest(media(1, "a.png"), viewer.TypeMediaViewer)
	req.StartWidth = 1200
	v, err := h.c.AddViewer(req, 0)
	if err != nil {
		t.Fatalf("AddViewer: %v", err)
	}
	if f := v.Panel().Frame(); !near(f.Width, 1200) {
		t.Fatalf("expected start width 1200, got %.1f", f.Width)
	}

	h.c.FullscreenViewer(v, true, false)
	h.c.UnfullscreenViewer(v, true)

	f := v.Panel().Frame()
	want := geom.Rect{X: 760, Y: 340, Width: 400, Height: 400}
	if !f.ApproxEqual(want, 0.01) {
		t.Fatalf("expected default size around the old center %+v, got %+v", want, f)
	}
}

func TestFullscreenRefusedOnTopLayer(t *testing.T) {
	h := newHarness(t, nil)
	req := viewer.NewRequestAt(media(1, "a.png"), viewer.TypeMediaViewer, viewer.NoPosition, viewer.LayerTop)
	v, err := h.c.AddViewer(req, 0)
	if err != nil {
		t.Fatalf("AddViewer: %v", err)
	}
	h.c.FullscreenViewer(v, true, false)
	if v.Fullscreen() || len(h.c.Darkeners()) != 0 {
		t.Fatalf("expected top layer fullscreen to be refused")
	}
}

func TestDarkenerCountTracksFullscreen(t *testing.T) {
	h := newHarness(t, nil)
	check := func(step string) {
		t.Helper()
		if d, fs := len(h.c.Darkeners()), fullscreenCount(h.c); d != fs {
			t.Fatalf("%s: expected darkeners=%d to equal fullscreen=%d", step, d, fs)
		}
	}

	a := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	b := h.launch(t, media(2, "b.png"), viewer.TypeMediaViewer)
	if err := h.c.FullscreenByID(a.ID()); err != nil {
		t.Fatalf("FullscreenByID: %v", err)
	}
	check("fullscreen a")
	h.c.FullscreenViewer(b, false, false)
	check("fullscreen b")
	h.settle()
	check("settled")
	if len(h.c.Darkeners()) != 2 {
		t.Fatalf("expected 2 darkeners, got %d", len(h.c.Darkeners()))
	}
	if n := len(live(h.c, viewer.TypeFullscreenController)); n != 1 {
		t.Fatalf("expected 1 fullscreen controller, got %d", n)
	}

	h.c.UnfullscreenViewer(a, false)
	check("unfullscreen a")
	h.c.AnimateViewerOff(b, 0, viewer.OffShrink)
	check("close b")
	h.settle()
	check("final")

	if n := len(live(h.c, viewer.TypeFullscreenController)); n != 0 {
		t.Fatalf("expected fullscreen controller closed with the last darkener, got %d", n)
	}
}

func TestDarkenerTaps(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	h.c.FullscreenViewer(v, true, false)

	h.c.TapDarkener(v.ID(), geom.Vec3{X: 50, Y: 60})
	if n := len(live(h.c, viewer.TypeFullscreenController)); n != 1 {
		t.Fatalf("expected tap to open a controller, got %d", n)
	}
	h.c.DoubleTapDarkener(v.ID())
	if v.Fullscreen() {
		t.Fatalf("expected double tap to unfullscreen")
	}
}

func TestMaxInstancesEvictsOldest(t *testing.T) {
	h := newHarness(t, nil)
	var vs []viewer.Viewer
	for i := 1; i <= 4; i++ {
		vs = append(vs, h.launch(t, media(i, fmt.Sprintf("%d.png", i)), "sticky"))
		if n := len(live(h.c, "sticky")); n > 2 {
			t.Fatalf("after %d launches expected at most 2 live, got %d", i, n)
		}
	}
	if !vs[0].AboutToBeRemoved() || !vs[1].AboutToBeRemoved() {
		t.Fatalf("expected the two oldest to be evicted")
	}
	if vs[2].AboutToBeRemoved() || vs[3].AboutToBeRemoved() {
		t.Fatalf("expected the two newest to stay")
	}

	h.settle()
	if n := len(h.c.ViewersOfType("sticky")); n != 2 {
		t.Fatalf("expected 2 viewers after release, got %d", n)
	}
	released := h.rec.count(func(ev any) bool { e, ok := ev.(events.ViewerReleased); return ok && !e.Forced })
	if released != 2 {
		t.Fatalf("expected 2 released events, got %d", released)
	}
}

func TestMaxPerTypeOverrideIsLazy(t *testing.T) {
	h := newHarness(t, nil)
	for i := 1; i <= 3; i++ {
		h.launch(t, media(i, "x.png"), viewer.TypeMediaViewer)
	}
	s := h.c.Settings()
	s.MaxPerType = map[string]int{viewer.TypeMediaViewer: 2}
	h.c.UpdateSettings(s)
	if n := len(live(h.c, viewer.TypeMediaViewer)); n != 3 {
		t.Fatalf("expected lowered max to wait for the next launch, got %d live", n)
	}

	h.launch(t, media(4, "x.png"), viewer.TypeMediaViewer)
	if n := len(live(h.c, viewer.TypeMediaViewer)); n != 2 {
		t.Fatalf("expected 2 live after the next launch, got %d", n)
	}
}

func TestAnimateOffTwiceNotifiesOnce(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	fv := v.(*fakeViewer)

	h.c.AnimateViewerOff(v, 0, viewer.OffShrink)
	h.c.AnimateViewerOff(v, 0, viewer.OffFade)
	if err := h.c.CloseViewer(v.ID()); err != nil {
		t.Fatalf("CloseViewer: %v", err)
	}

	if n := h.rec.removed(v.ID()); n != 1 {
		t.Fatalf("expected 1 removed event, got %d", n)
	}
	if fv.offCalls != 1 {
		t.Fatalf("expected one out transition, got %d", fv.offCalls)
	}
	h.settle()
	if len(h.c.Viewers()) != 0 || !fv.Released() {
		t.Fatalf("expected viewer released and detached")
	}
	if _, err := h.c.Viewer(v.ID()); !errors.Is(err, viewer.ErrViewerNotFound) {
		t.Fatalf("expected ErrViewerNotFound, got %v", err)
	}
}

func TestViewerActivatedReorders(t *testing.T) {
	h := newHarness(t, nil)
	a := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	b := h.launch(t, media(2, "b.png"), viewer.TypeMediaViewer)
	before := h.rec.setChanged()

	b.Activate()
	if h.rec.setChanged() != before {
		t.Fatalf("expected no event when activating the newest viewer")
	}
	a.Activate()
	if vs := h.c.Viewers(); vs[len(vs)-1] != a {
		t.Fatalf("expected a to move to the end")
	}
	if h.rec.setChanged() != before+1 {
		t.Fatalf("expected one set-changed event, got %d", h.rec.setChanged()-before)
	}
}

func TestRequestCloseAnimatesOff(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	v.RequestClose()
	if !v.AboutToBeRemoved() {
		t.Fatalf("expected close request to start removal")
	}
}

func TestArrangeNoCandidatesIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.launch(t, nil, viewer.TypeLauncher)
	seen := len(h.rec.all)
	pending := h.c.Animator().Pending()

	h.c.ArrangeViewers()

	if len(h.rec.all) != seen {
		t.Fatalf("expected no events, got %d new", len(h.rec.all)-seen)
	}
	if h.c.Animator().Pending() != pending {
		t.Fatalf("expected no new transitions")
	}
}

func TestArrangeSingleCandidateGoesFullscreen(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	h.c.ArrangeViewers()
	if !v.Fullscreen() {
		t.Fatalf("expected lone candidate to go fullscreen")
	}
}

func TestArrangePacksInsideNormalLayer(t *testing.T) {
	h := newHarness(t, nil)
	var vs []viewer.Viewer
	for i := 1; i <= 4; i++ {
		vs = append(vs, h.launch(t, media(i, fmt.Sprintf("%d.png", i)), viewer.TypeMediaViewer))
	}
	launcher := h.launch(t, nil, viewer.TypeLauncher)
	before := launcher.Panel().Position()

	h.c.ArrangeViewers()
	h.settle()

	area := h.c.LayerBounds(viewer.LayerNormal).Local()
	for i, v := range vs {
		f := v.Panel().Frame()
		if f.X < area.X-0.5 || f.Y < area.Y-0.5 || f.Right() > area.Right()+0.5 || f.Bottom() > area.Bottom()+0.5 {
			t.Fatalf("viewer %d outside the layer: %+v", i, f)
		}
		if !v.TitleHidden() {
			t.Fatalf("viewer %d: expected title hidden", i)
		}
		for j := i + 1; j < len(vs); j++ {
			g := vs[j].Panel().Frame()
			if f.X < g.Right()-0.5 && g.X < f.Right()-0.5 && f.Y < g.Bottom()-0.5 && g.Y < f.Bottom()-0.5 {
				t.Fatalf("viewers %d and %d overlap: %+v %+v", i, j, f, g)
			}
		}
	}
	if launcher.Panel().Position() != before {
		t.Fatalf("expected launcher untouched by arrange")
	}
}

func TestArrangeDuringGatherDoesNotStack(t *testing.T) {
	h := newHarness(t, nil)
	var vs []viewer.Viewer
	for i := 1; i <= 4; i++ {
		vs = append(vs, h.launch(t, media(i, fmt.Sprintf("%d.png", i)), viewer.TypeMediaViewer))
	}

	h.c.GatherViewers(geom.Vec3{X: 10, Y: 10})
	h.c.Tick(100 * time.Millisecond)
	h.c.ArrangeViewers()
	h.settle()

	area := h.c.LayerBounds(viewer.LayerNormal).Local()
	for i, v := range vs {
		f := v.Panel().Frame()
		if f.X < area.X-0.5 || f.Y < area.Y-0.5 || f.Right() > area.Right()+0.5 || f.Bottom() > area.Bottom()+0.5 {
			t.Fatalf("viewer %d outside the layer: %+v", i, f)
		}
		for j := i + 1; j < len(vs); j++ {
			g := vs[j].Panel().Frame()
			if f.X < g.Right()-0.5 && g.X < f.Right()-0.5 && f.Y < g.Bottom()-0.5 && g.Y < f.Bottom()-0.5 {
				t.Fatalf("viewers %d and %d overlap: %+v %+v", i, j, f, g)
			}
		}
	}
}

func TestArrangeFadesFatalViewers(t *testing.T) {
	h := newHarness(t, nil)
	a := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	b := h.launch(t, media(2, "b.png"), viewer.TypeMediaViewer)
	b.(*fakeViewer).Fail(errors.New("decoder crashed"))

	h.c.ArrangeViewers()
	if !b.AboutToBeRemoved() {
		t.Fatalf("expected fatal viewer faded off")
	}
	if !a.Fullscreen() {
		t.Fatalf("expected remaining viewer to go fullscreen")
	}
}

func TestGatherSkipsTopAndShrinks(t *testing.T) {
	h := newHarness(t, nil)
	req := viewer.NewRequest(media(1, "a.png"), viewer.TypeMediaViewer)
	req.StartWidth = 800
	v, _ := h.c.AddViewer(req, 0)
	top, _ := h.c.AddViewer(viewer.NewRequestAt(media(2, "b.png"), viewer.TypeMediaViewer, geom.Vec3{X: 100, Y: 100}, viewer.LayerTop), 0)
	topBefore := top.Panel().Position()

	h.c.GatherViewers(geom.Vec3{X: 960, Y: 540})
	h.settle()

	if top.Panel().Position() != topBefore {
		t.Fatalf("expected top layer viewer untouched")
	}
	p := v.Panel()
	if !near(p.Width(), p.MinSize().Width) {
		t.Fatalf("expected width %.1f, got %.1f", p.MinSize().Width, p.Width())
	}
	c := p.Position()
	cx, cy := c.X+p.Frame().Width/2, c.Y+p.Frame().Height/2
	if math.Abs(cx-960) > 300.5 || math.Abs(cy-540) > 300.5 {
		t.Fatalf("expected center within jitter of (960,540), got (%.1f,%.1f)", cx, cy)
	}
}

func TestCloseAllWhileIdlingExemptsControls(t *testing.T) {
	h := newHarness(t, nil)
	h.idle = true
	launcher := h.launch(t, nil, viewer.TypeLauncher)
	search := h.launch(t, nil, viewer.TypeSearch)
	pc := h.launch(t, nil, viewer.TypePresentationController)
	m := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	slideReq := viewer.NewRequest(media(2, "b.png"), viewer.TypeMediaViewer)
	slideReq.SlideContent = true
	slide, _ := h.c.AddViewer(slideReq, 0)

	h.c.CloseAll(false)

	for _, v := range []viewer.Viewer{launcher, search, pc} {
		if v.AboutToBeRemoved() || v.(*fakeViewer).offCalls != 0 {
			t.Fatalf("expected %s to stay open", v.Type())
		}
	}
	if !m.AboutToBeRemoved() {
		t.Fatalf("expected media viewer closed")
	}
	if slide.AboutToBeRemoved() {
		t.Fatalf("expected slide content kept")
	}
	if launcher.Panel().Z() < m.Panel().Z() || launcher.Panel().Z() < slide.Panel().Z() {
		t.Fatalf("expected exempt viewers raised")
	}
}

func TestCloseAllWhenActiveClosesEverything(t *testing.T) {
	h := newHarness(t, nil)
	h.launch(t, nil, viewer.TypeLauncher)
	h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	bg, _ := h.c.AddViewer(viewer.NewRequestAt(media(2, "bg.png"), viewer.TypeMediaViewer, viewer.NoPosition, viewer.LayerBackground), 0)

	h.c.CloseAll(true)
	for _, v := range h.c.Viewers() {
		if !v.AboutToBeRemoved() {
			t.Fatalf("expected %s closed", v.Type())
		}
	}
	h.settle()
	if len(h.c.Viewers()) != 0 {
		t.Fatalf("expected all released, got %d", len(h.c.Viewers()))
	}
	if bg.Panel().Scale() != 1 {
		t.Fatalf("expected background faded rather than shrunk, scale=%.3f", bg.Panel().Scale())
	}
}

func TestCloseAllDuringArrange(t *testing.T) {
	h := newHarness(t, nil)
	var ids []string
	for i := 1; i <= 4; i++ {
		ids = append(ids, h.launch(t, media(i, fmt.Sprintf("%d.png", i)), viewer.TypeMediaViewer).ID())
	}

	h.c.ArrangeViewers()
	h.c.Tick(100 * time.Millisecond)
	h.c.CloseAll(true)
	h.settle()

	if len(h.c.Viewers()) != 0 {
		t.Fatalf("expected all released, got %d", len(h.c.Viewers()))
	}
	for _, id := range ids {
		if n := h.rec.removed(id); n != 1 {
			t.Fatalf("expected one removal for %s, got %d", id, n)
		}
	}
	released := h.rec.count(func(ev any) bool {
		_, ok := ev.(events.ViewerReleased)
		return ok
	})
	if released != len(ids) {
		t.Fatalf("expected %d releases, got %d", len(ids), released)
	}
	if h.c.anim.Pending() != 0 {
		t.Fatalf("expected no pending tweens, got %d", h.c.anim.Pending())
	}
}

func TestExitQuitsAfterDelay(t *testing.T) {
	h := newHarness(t, nil)
	h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	h.bus.Notify(events.AppExit{})
	h.c.Listen(h.bus)
	h.bus.Notify(events.AppExit{})

	h.c.Tick(time.Second)
	if h.exits != 0 {
		t.Fatalf("expected exit to wait for the delay")
	}
	h.c.Tick(time.Second)
	if h.exits != 1 {
		t.Fatalf("expected exit called once, got %d", h.exits)
	}
	quits := h.rec.count(func(ev any) bool { _, ok := ev.(events.Quit); return ok })
	if quits != 1 || len(h.c.Viewers()) != 0 {
		t.Fatalf("expected one quit and no viewers, got quits=%d viewers=%d", quits, len(h.c.Viewers()))
	}
}

func TestUnresolvedContentShowsErrorPanel(t *testing.T) {
	h := newHarness(t, nil)
	req := viewer.NewRequestAt(media(1, "missing.png"), viewer.TypeMediaViewer, geom.Vec3{X: 300, Y: 300}, viewer.LayerNormal)
	v, err := h.c.AddViewer(req, 0)
	if !errors.Is(err, viewer.ErrContentUnresolved) || v != nil {
		t.Fatalf("expected ErrContentUnresolved, got %v", err)
	}
	errs := h.c.ViewersOfType(viewer.TypeError)
	if len(errs) != 1 {
		t.Fatalf("expected one error panel, got %d", len(errs))
	}
	e := errs[0]
	if e.Layer() != viewer.LayerTop {
		t.Fatalf("expected error panel on top, got %s", e.Layer())
	}
	if got := e.Content().Prop("media_path"); got != "missing.png" {
		t.Fatalf("expected media_path=missing.png, got %q", got)
	}
	if len(h.c.ViewersOfType(viewer.TypeMediaViewer)) != 0 {
		t.Fatalf("expected no media viewer")
	}
}

func TestUnknownTypeAndInvalidLayerAreDropped(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.c.AddViewer(viewer.NewRequest(nil, "hologram"), 0); !errors.Is(err, viewer.ErrUnknownViewType) {
		t.Fatalf("expected ErrUnknownViewType, got %v", err)
	}
	req := viewer.NewRequest(media(1, "a.png"), viewer.TypeMediaViewer)
	req.Layer = viewer.Layer(7)
	if _, err := h.c.AddViewer(req, 0); !errors.Is(err, viewer.ErrInvalidLayer) {
		t.Fatalf("expected ErrInvalidLayer, got %v", err)
	}
	if len(h.c.Viewers()) != 0 {
		t.Fatalf("expected no viewers, got %d", len(h.c.Viewers()))
	}
}

func slideCatalog() (*content.Catalog, *content.Model, *content.Model) {
	child := func(id int, path string, x, y float64) *content.Model {
		m := media(id, path)
		m.SetProp("composite_x", fmt.Sprint(x))
		m.SetProp("composite_y", fmt.Sprint(y))
		m.SetProp("composite_w", "0.25")
		return m
	}
	a := child(21, "a.png", 0.1, 0.1)
	b := child(22, "b.png", 0.6, 0.5)
	both := &content.Model{ID: 20, Name: "both", Type: content.TypeSlide, Children: []*content.Model{a, b}}
	onlyA := &content.Model{ID: 30, Name: "only a", Type: content.TypeSlide, Children: []*content.Model{child(31, "a.png", 0.5, 0.5)}}
	pres := &content.Model{ID: 10, Name: "deck", Type: content.TypePresentation, Children: []*content.Model{both, onlyA}}
	return content.NewCatalog([]*content.Model{pres}), both, onlyA
}

func TestSlideCompositePreservesMatchingViewers(t *testing.T) {
	cat, both, onlyA := slideCatalog()
	h := newHarness(t, cat)

	h.c.LoadSlideComposite(both)
	h.settle()
	first := map[string]viewer.Viewer{}
	for _, v := range h.c.Viewers() {
		first[v.Content().Media().Path] = v
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 slide viewers, got %d", len(first))
	}
	fa := first["a.png"].Panel().Frame()
	if !near(fa.X, 192) || !near(fa.Y, 108) || !near(fa.Width, 480) {
		t.Fatalf("expected a at (192,108) width 480, got %+v", fa)
	}
	if !first["a.png"].Request().SlideContent {
		t.Fatalf("expected slide content flag")
	}

	h.c.LoadSlideComposite(both)
	h.settle()
	if len(h.c.Viewers()) != 2 {
		t.Fatalf("expected identity preserved, got %d viewers", len(h.c.Viewers()))
	}
	for path, v := range first {
		if h.rec.removed(v.ID()) != 0 {
			t.Fatalf("expected %s not removed", path)
		}
		if h.c.find(v.ID()) == nil {
			t.Fatalf("expected %s still live", path)
		}
	}

	h.c.LoadSlideComposite(onlyA)
	h.settle()
	if h.rec.removed(first["b.png"].ID()) != 1 {
		t.Fatalf("expected unmatched leftover faded off")
	}
	if h.c.find(first["a.png"].ID()) == nil {
		t.Fatalf("expected a morphed, not recreated")
	}
	fa = first["a.png"].Panel().Frame()
	if !near(fa.X, 960) || !near(fa.Y, 540) {
		t.Fatalf("expected a moved to (960,540), got (%.1f,%.1f)", fa.X, fa.Y)
	}
}

func TestSlideBackgroundKeepsMatchingViewer(t *testing.T) {
	h := newHarness(t, nil)
	slide := &content.Model{ID: 5, Type: content.TypeSlide}
	slide.SetResource(content.KeyBackgroundMedia, content.Resource{Path: "bg.mp4", Type: content.ResourceVideo, Width: 3840, Height: 1080})

	h.c.LoadSlideBackground(slide)
	bgs := h.c.Viewers()
	if len(bgs) != 1 || bgs[0].Layer() != viewer.LayerBackground {
		t.Fatalf("expected one background viewer")
	}
	bg := bgs[0]
	if f := bg.Panel().Frame(); !near(f.Width, 3840) {
		t.Fatalf("expected wide background width 3840, got %.1f", f.Width)
	}
	r := bg.Request()
	if r.TouchEnabled || !r.Loop || r.Volume != 0 || !r.SlideContent {
		t.Fatalf("expected background playback flags, got %+v", r)
	}

	h.c.LoadSlideBackground(slide)
	if len(h.c.Viewers()) != 1 || bg.AboutToBeRemoved() {
		t.Fatalf("expected matching background kept")
	}

	other := &content.Model{ID: 6, Type: content.TypeSlide}
	other.SetResource(content.KeyBackgroundMedia, content.Resource{Path: "other.png", Width: 100, Height: 100})
	h.c.LoadSlideBackground(other)
	if !bg.AboutToBeRemoved() {
		t.Fatalf("expected old background faded")
	}
}

func presentationCatalog() *content.Catalog {
	s1, s2, s3 := media(11, "s1.png"), media(12, "s2.png"), media(13, "s3.png")
	pres := &content.Model{ID: 10, Name: "deck", Type: content.TypePresentation, Children: []*content.Model{s1, s2, s3}}
	return content.NewCatalog([]*content.Model{pres})
}

func TestPresentationAdvanceWraps(t *testing.T) {
	cat := presentationCatalog()
	h := newHarness(t, cat)

	if err := h.c.StartPresentationByID(10, true); err != nil {
		t.Fatalf("StartPresentationByID: %v", err)
	}
	if cur := cat.Current(); cur.PresentationID != 10 || cur.SlideID != 11 {
		t.Fatalf("expected deck at slide 11, got %+v", cur)
	}
	if len(live(h.c, viewer.TypePresentationController)) != 1 {
		t.Fatalf("expected presentation controller")
	}

	steps := []struct {
		forwards bool
		want     int
	}{{false, 13}, {true, 11}, {true, 12}, {true, 13}, {true, 11}}
	for _, s := range steps {
		h.c.Advance(s.forwards)
		if got := cat.Current().SlideID; got != s.want {
			t.Fatalf("expected slide %d after advance(%v), got %d", s.want, s.forwards, got)
		}
	}
	h.settle()

	var shown []viewer.Viewer
	for _, v := range live(h.c, viewer.TypeMediaViewer) {
		if v.Layer() == viewer.LayerNormal {
			shown = append(shown, v)
		}
	}
	if len(shown) != 1 || shown[0].Content().ID != 11 || !shown[0].Fullscreen() {
		t.Fatalf("expected only slide 11 shown fullscreen")
	}

	updates := h.rec.count(func(ev any) bool { _, ok := ev.(events.PresentationStatusUpdated); return ok })
	if updates != 6 {
		t.Fatalf("expected 6 status updates, got %d", updates)
	}

	h.c.EndPresentation()
	if cur := cat.Current(); cur.PresentationID != 0 || cur.SlideID != 0 {
		t.Fatalf("expected ids cleared, got %+v", cur)
	}
}

func TestPresentationMissingSlideNotifies(t *testing.T) {
	h := newHarness(t, presentationCatalog())
	h.c.SetPresentationSlide(999)
	h.c.AdvancePresentation(true)
	updates := h.rec.count(func(ev any) bool { _, ok := ev.(events.PresentationStatusUpdated); return ok })
	if updates != 2 || len(h.c.Viewers()) != 0 {
		t.Fatalf("expected two status updates and no viewers, got %d updates", updates)
	}
}

func TestAdvancePrefersPDF(t *testing.T) {
	cat := presentationCatalog()
	h := newHarness(t, cat)
	h.c.StartPresentation(cat.Lookup(10), viewer.NoPosition, false)

	doc := &content.Model{ID: 50, Name: "doc"}
	doc.SetResource(content.KeyMedia, content.Resource{Path: "doc.pdf", Type: content.ResourcePDF})
	pdf := h.launch(t, doc, viewer.TypeMediaViewer).(*fakeViewer)

	h.c.Advance(true)
	if pdf.page != 1 || cat.Current().SlideID != 11 {
		t.Fatalf("expected pdf page turned and slide unchanged, got page=%d slide=%d", pdf.page, cat.Current().SlideID)
	}

	h.launch(t, media(51, "img.png"), viewer.TypeMediaViewer)
	if h.c.AdvancePDF(true) {
		t.Fatalf("expected no pdf when the newest media viewer is an image")
	}
	h.c.Advance(true)
	if cat.Current().SlideID != 12 {
		t.Fatalf("expected presentation advanced to 12, got %d", cat.Current().SlideID)
	}
}

func TestParseUserString(t *testing.T) {
	t.Setenv("WALL_MEDIA", "/srv/media")
	origin := geom.Vec3{X: 5, Y: 6}
	req := ParseUserString("media_path:$WALL_MEDIA/doc.pdf ! fullscreen:true ! location:100, 200 ! view_layer:2 ! start_width:640 ! from_center:false ! drawing:on ! bogus ! empty:", origin)

	if req.ViewType != viewer.TypeMediaViewer {
		t.Fatalf("expected media viewer, got %s", req.ViewType)
	}
	if got := req.Content.Media(); got.Path != "/srv/media/doc.pdf" || got.Type != content.ResourcePDF {
		t.Fatalf("expected expanded pdf path, got %+v", got)
	}
	if !req.Fullscreen || req.FromCenter || !req.StartDrawing {
		t.Fatalf("expected fullscreen, not from center, drawing, got %+v", req)
	}
	if req.Location != (geom.Vec3{X: 100, Y: 200}) {
		t.Fatalf("expected location (100,200), got %+v", req.Location)
	}
	if req.Layer != viewer.LayerTop || req.StartWidth != 640 {
		t.Fatalf("expected top layer width 640, got %s %.0f", req.Layer, req.StartWidth)
	}

	other := ParseUserString("view_type:launcher ! media_path:/x/y.png", origin)
	if other.ViewType != viewer.TypeLauncher || other.Location != origin {
		t.Fatalf("expected launcher at origin, got %+v", other)
	}
	if other.Content.Prop("media_path") != "/x/y.png" || !other.Content.Media().Empty() {
		t.Fatalf("expected media_path stored as a property for non-media types")
	}
}

func TestHandleLaunchPinboard(t *testing.T) {
	board := &content.Model{ID: 1, Type: content.TypePinboard, References: map[string][]int{content.KeyPinboardItems: {2, 3}}}
	cat := content.NewCatalog([]*content.Model{board, media(2, "p1.png"), media(3, "p2.png")})
	h := newHarness(t, cat)
	h.c.Listen(h.bus)

	req := viewer.NewRequestAt(board, viewer.TypeMediaViewer, geom.Vec3{X: 400, Y: 400}, viewer.LayerNormal)
	h.bus.Notify(events.LaunchViewer{Request: req})

	vs := h.c.Viewers()
	if len(vs) != 2 || vs[0].Content().ID != 2 || vs[1].Content().ID != 3 {
		t.Fatalf("expected pinboard items 2 and 3, got %d viewers", len(vs))
	}
	c0, c1 := vs[0].Panel().Frame(), vs[1].Panel().Frame()
	if !near(c1.X-c0.X, 200) || !near(c1.Y-c0.Y, 100) {
		t.Fatalf("expected (200,100) step, got (%.1f,%.1f)", c1.X-c0.X, c1.Y-c0.Y)
	}
}

func TestHandleLaunchUserString(t *testing.T) {
	h := newHarness(t, nil)
	h.c.Listen(h.bus)
	h.bus.Notify(events.LaunchViewer{UserString: "view_type:search", Origin: geom.Vec3{X: 960, Y: 540}})
	if len(live(h.c, viewer.TypeSearch)) != 1 {
		t.Fatalf("expected a search viewer")
	}
}

func TestReconcileForcesStalledRemoval(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), typeStuck)
	ok := h.launch(t, media(2, "b.png"), viewer.TypeMediaViewer)

	h.c.AnimateViewerOff(v, 0, viewer.OffShrink)
	h.settle()
	if h.c.find(v.ID()) == nil {
		t.Fatalf("expected stuck viewer still attached")
	}

	if rep := h.c.Reconcile(h.clock.Add(time.Second)); rep.Forced != 0 {
		t.Fatalf("expected nothing forced before the timeout, got %d", rep.Forced)
	}

	rep := h.c.Reconcile(h.clock.Add(10 * time.Second))
	if rep.Forced != 1 || rep.Live != 1 {
		t.Fatalf("expected forced=1 live=1, got %+v", rep)
	}
	if h.c.find(v.ID()) != nil || h.c.find(ok.ID()) == nil {
		t.Fatalf("expected only the stuck viewer detached")
	}
	forced := h.rec.count(func(ev any) bool { e, ok := ev.(events.ViewerReleased); return ok && e.Forced && e.ViewerID == v.ID() })
	if forced != 1 {
		t.Fatalf("expected one forced release, got %d", forced)
	}
	if h.c.Snapshot().PendingRemovals != 0 {
		t.Fatalf("expected no pending removals")
	}
}

func TestReconcileDropsStaleDarkeners(t *testing.T) {
	h := newHarness(t, nil)
	v := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	h.c.FullscreenViewer(v, true, false)
	v.SetFullscreen(false)

	rep := h.c.Reconcile(h.clock)
	if rep.StaleDarkeners != 1 || len(h.c.Darkeners()) != 0 {
		t.Fatalf("expected the stale darkener dropped, got %+v", rep)
	}
}

func TestSnapshotCountsLiveViewers(t *testing.T) {
	cat := presentationCatalog()
	h := newHarness(t, cat)
	a := h.launch(t, media(1, "a.png"), viewer.TypeMediaViewer)
	h.launch(t, media(2, "b.png"), viewer.TypeMediaViewer)
	h.c.AnimateViewerOff(a, 0, viewer.OffFade)

	st := h.c.Snapshot()
	if st.CountByType[viewer.TypeMediaViewer] != 1 || st.PendingRemovals != 1 || len(st.Viewers) != 2 {
		t.Fatalf("unexpected snapshot %+v", st)
	}
	if len(st.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(st.Layers))
	}
}

func TestSingleModePlacesControls(t *testing.T) {
	h := newHarness(t, nil)
	s := h.c.Settings()
	s.Mode = ModeSingle
	h.c.UpdateSettings(s)

	v := h.launch(t, nil, viewer.TypeLauncher)
	f := v.Panel().Frame()
	cx, cy := f.Center()
	if !near(cx, 960) || !near(cy, 720) {
		t.Fatalf("expected launcher centered at (960,720), got (%.1f,%.1f)", cx, cy)
	}
}
