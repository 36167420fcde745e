// Package orchestrator owns the live viewer set: it creates, places,
// fullscreens, evicts, arranges and reconciles viewers across three layers.
package orchestrator

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Options configures a Controller. Registry and Animator are required.
type Options struct {
	Settings Settings
	Display  geom.Size
	Registry *viewer.Registry
	Animator *tween.Animator
	Bus      *events.Bus
	Catalog  *content.Catalog
	Resolver content.Resolver
	Logger   *slog.Logger

	// Idle reports whether the wall is idling.
	Idle func() bool
	// Exit is called when an app-exit request has finished closing viewers.
	Exit func()
	Now  func() time.Time
	Rand *rand.Rand
}

type pendingRemoval struct {
	v       viewer.Viewer
	started time.Time
	forced  bool
}

// Controller is the viewer orchestrator. It is not safe for concurrent use;
// the daemon loop owns it and every mutation happens on its tick.
type Controller struct {
	settings Settings
	display  geom.Size
	layers   [3]geom.Rect

	// viewers is activation ordered: the last element is the most recent.
	viewers   []viewer.Viewer
	darkeners map[string]*Darkener
	removals  map[string]*pendingRemoval

	registry *viewer.Registry
	anim     *tween.Animator
	bus      *events.Bus
	catalog  *content.Catalog
	resolver content.Resolver
	log      *slog.Logger
	env      viewer.Env

	idle func() bool
	exit func()
	now  func() time.Time
	rand *rand.Rand

	darkenerSeq int
}

// New returns a Controller with every layer covering the display.
func New(opts Options) *Controller {
	if opts.Registry == nil {
		opts.Registry = viewer.NewRegistry()
	}
	if opts.Animator == nil {
		opts.Animator = tween.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Idle == nil {
		opts.Idle = func() bool { return false }
	}
	if opts.Exit == nil {
		opts.Exit = func() {}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Settings.AnimDuration <= 0 {
		opts.Settings.AnimDuration = DefaultSettings().AnimDuration
	}
	if opts.Display.Width <= 0 || opts.Display.Height <= 0 {
		opts.Display = geom.Size{Width: 1920, Height: 1080}
	}

	c := &Controller{
		settings:  opts.Settings,
		display:   opts.Display,
		darkeners: make(map[string]*Darkener),
		removals:  make(map[string]*pendingRemoval),
		registry:  opts.Registry,
		anim:      opts.Animator,
		bus:       opts.Bus,
		catalog:   opts.Catalog,
		resolver:  opts.Resolver,
		log:       opts.Logger,
		idle:      opts.Idle,
		exit:      opts.Exit,
		now:       opts.Now,
		rand:      opts.Rand,
	}
	full := geom.Rect{Width: c.display.Width, Height: c.display.Height}
	for i := range c.layers {
		c.layers[i] = full
	}
	c.rebuildEnv()
	return c
}

func (c *Controller) rebuildEnv() {
	def := c.settings.DefaultSize
	if def <= 0 {
		def = DefaultSettings().DefaultSize
	}
	c.env = viewer.Env{
		Animator:     c.anim,
		Resolver:     c.resolver,
		Catalog:      c.catalog,
		Logger:       c.log,
		DefaultSize:  geom.Size{Width: def, Height: def},
		AnimDuration: c.settings.AnimDuration,
		Inspect:      c.List,
		Notify:       c.notify,
	}
}

// Settings returns the current tunables.
func (c *Controller) Settings() Settings { return c.settings }

// UpdateSettings swaps the tunables. Lowered instance limits take effect on
// the next launch of that type.
func (c *Controller) UpdateSettings(s Settings) {
	if s.AnimDuration <= 0 {
		s.AnimDuration = c.settings.AnimDuration
	}
	c.settings = s
	c.rebuildEnv()
	for _, v := range c.viewers {
		if n, ok := s.MaxPerType[v.Type()]; ok {
			v.SetMaxInstances(n)
		}
	}
}

// SetCatalog replaces the content catalog.
func (c *Controller) SetCatalog(cat *content.Catalog) {
	c.catalog = cat
	c.rebuildEnv()
}

// Catalog returns the content catalog, which may be nil.
func (c *Controller) Catalog() *content.Catalog { return c.catalog }

// Animator returns the animator driving every transition.
func (c *Controller) Animator() *tween.Animator { return c.anim }

// Registry returns the view type registry.
func (c *Controller) Registry() *viewer.Registry { return c.registry }

// Display returns the display size.
func (c *Controller) Display() geom.Size { return c.display }

// SetDisplay resizes the display. Layer bounds are left untouched.
func (c *Controller) SetDisplay(s geom.Size) {
	if s.Width > 0 && s.Height > 0 {
		c.display = s
	}
}

// SetLayerBounds positions a layer on the display.
func (c *Controller) SetLayerBounds(l viewer.Layer, r geom.Rect) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %d", viewer.ErrInvalidLayer, int(l))
	}
	c.layers[l] = r
	return nil
}

// LayerBounds returns a layer's rectangle in display coordinates.
func (c *Controller) LayerBounds(l viewer.Layer) geom.Rect {
	if !l.Valid() {
		return geom.Rect{}
	}
	return c.layers[l]
}

// toLocal converts a display point into l's coordinates.
func (c *Controller) toLocal(l viewer.Layer, p geom.Vec3) geom.Vec3 {
	return p.Sub(c.LayerBounds(l).Origin())
}

// toGlobal converts a point in l's coordinates to display coordinates.
func (c *Controller) toGlobal(l viewer.Layer, p geom.Vec3) geom.Vec3 {
	return p.Add(c.LayerBounds(l).Origin())
}

func (c *Controller) notify(ev any) {
	c.bus.Notify(ev)
}

// Viewers returns the live list in activation order. The slice is a copy.
func (c *Controller) Viewers() []viewer.Viewer {
	return append([]viewer.Viewer(nil), c.viewers...)
}

// ViewersOfType returns the viewers of tag in activation order, including
// those being removed.
func (c *Controller) ViewersOfType(tag string) []viewer.Viewer {
	var out []viewer.Viewer
	for _, v := range c.viewers {
		if v.Type() == tag {
			out = append(out, v)
		}
	}
	return out
}

// Viewer returns the viewer with id.
func (c *Controller) Viewer(id string) (viewer.Viewer, error) {
	if v := c.find(id); v != nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", viewer.ErrViewerNotFound, id)
}

func (c *Controller) find(id string) viewer.Viewer {
	for _, v := range c.viewers {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

func (c *Controller) indexOf(v viewer.Viewer) int {
	for i, o := range c.viewers {
		if o == v {
			return i
		}
	}
	return -1
}

// List describes every live viewer in activation order.
func (c *Controller) List() []viewer.Info {
	out := make([]viewer.Info, 0, len(c.viewers))
	for _, v := range c.viewers {
		out = append(out, viewer.Describe(v))
	}
	return out
}

// Status is a point-in-time summary of the controller.
type Status struct {
	Display         geom.Size                 `json:"display"`
	Layers          map[string]geom.Rect      `json:"layers"`
	Viewers         []viewer.Info             `json:"viewers"`
	CountByType     map[string]int            `json:"count_by_type"`
	Darkeners       int                       `json:"darkeners"`
	PendingRemovals int                       `json:"pending_removals"`
	Tweens          int                       `json:"tweens"`
	Presentation    content.PresentationState `json:"presentation"`
	Idle            bool                      `json:"idle"`
}

// Snapshot returns the current Status.
func (c *Controller) Snapshot() Status {
	st := Status{
		Display:         c.display,
		Layers:          make(map[string]geom.Rect, len(viewer.Layers)),
		Viewers:         c.List(),
		CountByType:     make(map[string]int),
		Darkeners:       len(c.darkeners),
		PendingRemovals: len(c.removals),
		Tweens:          c.anim.Pending(),
		Presentation:    c.catalog.Current(),
		Idle:            c.idle(),
	}
	for _, l := range viewer.Layers {
		st.Layers[l.String()] = c.layers[l]
	}
	for _, v := range c.viewers {
		if !v.AboutToBeRemoved() {
			st.CountByType[v.Type()]++
		}
	}
	return st
}

// Tick advances every transition by dt.
func (c *Controller) Tick(dt time.Duration) {
	c.anim.Advance(dt)
}

func (c *Controller) sortedRemovalIDs() []string {
	ids := make([]string, 0, len(c.removals))
	for id := range c.removals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Controller) sortedDarkenerIDs() []string {
	ids := make([]string, 0, len(c.darkeners))
	for id := range c.darkeners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contentName(m *content.Model) string {
	if m == nil {
		return ""
	}
	return m.Name
}
