package panels

import (
	"fmt"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// pixelExactAspect is the viewport used for web and youtube content.
const pixelExactAspect = 16.0 / 9.0

// MediaViewer plays a single resource: an image, video, PDF or web page.
type MediaViewer struct {
	*viewer.Base

	res      content.Resource
	playing  bool
	volume   int
	loop     bool
	muted    bool
	position time.Duration
	page     int
	pages    int
	locked   bool
	drawing  bool
}

var (
	_ viewer.Paginated = (*MediaViewer)(nil)
	_ viewer.Lockable  = (*MediaViewer)(nil)
)

// NewMediaViewer builds a media viewer. It fails with
// viewer.ErrContentUnresolved when the resource is missing.
func NewMediaViewer(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	res := req.Content.Media()
	if res.Empty() {
		return nil, fmt.Errorf("%w: no media on %q", viewer.ErrContentUnresolved, contentName(req.Content))
	}
	if env.Resolver != nil && !env.Resolver.Exists(res) {
		return nil, fmt.Errorf("%w: %s", viewer.ErrContentUnresolved, res.Path)
	}

	m := &MediaViewer{}
	m.Base = viewer.NewBase(env, viewer.Spec{
		Type:         viewer.TypeMediaViewer,
		Capabilities: viewer.Capabilities{Arrange: true, Resize: true, Fullscreen: true},
		MaxInstances: MaxMediaViewers,
	}, m)
	m.load(res)
	return m, nil
}

func (m *MediaViewer) load(res content.Resource) {
	m.res = res
	m.page = 0
	m.pages = 1
	if res.Type == content.ResourcePDF && res.Pages > 1 {
		m.pages = res.Pages
	}
	aspect := res.CroppedAspect()
	if res.PixelExact() {
		aspect = pixelExactAspect
	}
	m.Panel().SetContentAspect(aspect)
}

// OnContentSet reloads the player when the media changed.
func (m *MediaViewer) OnContentSet() {
	res := m.Content().Media()
	if res.Equal(m.res) {
		return
	}
	m.Logger().Debug("media changed", "from", m.res.Path, "to", res.Path)
	m.load(res)
}

// OnRequestSet applies the playback options of the request.
func (m *MediaViewer) OnRequestSet() {
	r := m.Request()
	m.volume = clampInt(r.Volume, 0, 100)
	m.loop = r.Loop
	m.muted = r.Mute
	m.playing = r.AutoStart && m.Playable()
	m.position = r.TimePosition
	m.locked = r.StartLocked
	m.drawing = r.StartDrawing
	m.page = clampInt(r.Page, 0, m.pages-1)
}

// Kind is the resource type being shown.
func (m *MediaViewer) Kind() content.ResourceType { return m.res.Type }

// Resource is the media being shown.
func (m *MediaViewer) Resource() content.Resource { return m.res }

// Playable reports whether the media has a timeline.
func (m *MediaViewer) Playable() bool {
	switch m.res.Type {
	case content.ResourceVideo, content.ResourceYouTube, content.ResourceStream:
		return true
	}
	return false
}

func (m *MediaViewer) Play() {
	if m.Playable() {
		m.playing = true
	}
}

func (m *MediaViewer) Pause()        { m.playing = false }
func (m *MediaViewer) Playing() bool { return m.playing }
func (m *MediaViewer) Volume() int   { return m.volume }
func (m *MediaViewer) Muted() bool   { return m.muted }
func (m *MediaViewer) Looping() bool { return m.loop }

// SetVolume clamps v to 0..100.
func (m *MediaViewer) SetVolume(v int) { m.volume = clampInt(v, 0, 100) }

// Seek moves the playhead. Negative positions rewind to the start.
func (m *MediaViewer) Seek(d time.Duration) {
	if d < 0 {
		d = 0
	}
	m.position = d
}

func (m *MediaViewer) Position() time.Duration { return m.position }

// NextPage turns forward, stopping at the last page.
func (m *MediaViewer) NextPage() {
	if m.page < m.pages-1 {
		m.page++
	}
}

// PrevPage turns back, stopping at the first page.
func (m *MediaViewer) PrevPage() {
	if m.page > 0 {
		m.page--
	}
}

func (m *MediaViewer) Page() int      { return m.page }
func (m *MediaViewer) PageCount() int { return m.pages }

func (m *MediaViewer) SetInterfaceLocked(on bool) { m.locked = on }
func (m *MediaViewer) InterfaceLocked() bool      { return m.locked }

// ToggleDrawing switches the annotation overlay. A locked viewer stays as is.
func (m *MediaViewer) ToggleDrawing() {
	if m.locked {
		return
	}
	m.drawing = !m.drawing
}

func (m *MediaViewer) Drawing() bool { return m.drawing }

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func contentName(m *content.Model) string {
	if m == nil {
		return ""
	}
	return m.Name
}
