package viewer

import (
	"log/slog"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/tween"
)

// Capabilities are fixed when a viewer is constructed.
type Capabilities struct {
	Arrange    bool `json:"arrange"`
	Resize     bool `json:"resize"`
	Fullscreen bool `json:"fullscreen"`
}

// OffStyle selects the close transition.
type OffStyle int

const (
	OffShrink OffStyle = iota
	OffFade
	OffFall
)

func (s OffStyle) String() string {
	switch s {
	case OffFade:
		return "fade"
	case OffFall:
		return "fall"
	default:
		return "shrink"
	}
}

// Viewer is the contract between the orchestrator and a concrete window.
// Bookkeeping setters are called only by the orchestrator; a viewer reacts
// to them through the optional On*Set hooks and reaches back only through
// the close-requested and activated callbacks.
type Viewer interface {
	ID() string
	Type() string
	Capabilities() Capabilities
	MaxInstances() int
	SetMaxInstances(n int)

	Content() *content.Model
	SetContent(m *content.Model)
	Request() Request
	SetRequest(r Request)
	Layer() Layer
	SetLayer(l Layer)

	Fullscreen() bool
	SetFullscreen(on bool)
	UnfullscreenRect() geom.Rect
	SetUnfullscreenRect(r geom.Rect)

	AboutToBeRemoved() bool
	SetAboutToBeRemoved(on bool)
	FatalError() bool

	SetCloseRequestedCallback(fn func())
	SetActivatedCallback(fn func())
	// RequestClose asks the orchestrator to close this viewer.
	RequestClose()
	// Activate raises the viewer and notifies the orchestrator.
	Activate()

	// AnimateOn plays the appear transition. It returns immediately.
	AnimateOn(delay time.Duration)
	// AnimateOff plays the close transition and calls done once it ends.
	AnimateOff(style OffStyle, delay time.Duration, done func())

	HideTitle()
	ShowTitle()
	TitleHidden() bool

	Panel() *Panel
	// Release frees resources after the viewer has been detached.
	Release()
}

// Paginated viewers can turn pages, such as PDF players.
type Paginated interface {
	Viewer
	NextPage()
	PrevPage()
	Page() int
}

// Lockable viewers can disable their touch interface.
type Lockable interface {
	Viewer
	SetInterfaceLocked(on bool)
	InterfaceLocked() bool
}

// Info is a read-only summary of a live viewer.
type Info struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Layer      string    `json:"layer"`
	ContentID  int       `json:"content_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Frame      geom.Rect `json:"frame"`
	Fullscreen bool      `json:"fullscreen"`
	Removing   bool      `json:"removing"`
	Fatal      bool      `json:"fatal"`
}

// Describe builds the Info for v.
func Describe(v Viewer) Info {
	info := Info{
		ID:         v.ID(),
		Type:       v.Type(),
		Layer:      v.Layer().String(),
		Frame:      v.Panel().Frame(),
		Fullscreen: v.Fullscreen(),
		Removing:   v.AboutToBeRemoved(),
		Fatal:      v.FatalError(),
	}
	if m := v.Content(); m != nil {
		info.ContentID = m.ID
		info.Name = m.Name
	}
	return info
}

// Env carries the shared collaborators handed to every constructor.
type Env struct {
	Animator     *tween.Animator
	Resolver     content.Resolver
	Catalog      *content.Catalog
	Logger       *slog.Logger
	DefaultSize  geom.Size
	AnimDuration time.Duration

	// Inspect lists the live viewers. Diagnostic panels use it.
	Inspect func() []Info
	// Notify posts a request to the orchestrator's bus, the way control
	// panels ask for an advance or a launch. It may be nil.
	Notify func(ev any)
}

// Post calls Notify when it is set.
func (e Env) Post(ev any) {
	if e.Notify != nil {
		e.Notify(ev)
	}
}

// Linker is implemented by panels that act on another viewer, such as the
// fullscreen controller.
type Linker interface {
	LinkViewer(id string)
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
