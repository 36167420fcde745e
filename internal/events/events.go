// Package events defines the requests the orchestrator accepts and the
// notifications it emits, plus a synchronous bus to carry them.
package events

import (
	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Inbound requests.

// LaunchViewer asks for a viewer. When UserString is set it is parsed as
// "key:value ! key:value" pairs starting from Origin and Request is ignored.
type LaunchViewer struct {
	Request    viewer.Request
	UserString string
	Origin     geom.Vec3
}

type CloseAll struct {
	CloseSlideContent bool
}

type Arrange struct{}

type Gather struct {
	Origin geom.Vec3
}

type Fullscreen struct {
	ViewerID string
}

type Unfullscreen struct {
	ViewerID string
}

// Advance moves forward or back through PDF pages, falling back to slides.
type Advance struct {
	Forwards bool
}

type PDFPageChange struct {
	Forwards bool
}

// PresentationSlide jumps to a slide by id.
type PresentationSlide struct {
	SlideID int
}

// StartPresentation starts the presentation with id.
type StartPresentation struct {
	PresentationID int
	ShowController bool
}

type EndPresentation struct{}

type AppExit struct{}

// Outbound notifications.

// ViewerSetChanged fires whenever membership or activation order changes.
type ViewerSetChanged struct{}

type ViewerAdded struct {
	ViewerID string
	ViewType string
	Content  *content.Model
}

// ViewerRemoved fires when a viewer starts its close transition.
type ViewerRemoved struct {
	ViewerID string
	ViewType string
}

// ViewerReleased fires once a closed viewer has been detached and freed.
type ViewerReleased struct {
	ViewerID string
	ViewType string
	Forced   bool
}

type PresentationStatusUpdated struct {
	State content.PresentationState
}

// Quit is emitted when the orchestrator wants the process to exit.
type Quit struct{}
