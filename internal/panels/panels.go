// Package panels provides the concrete viewer kinds the wall can show. They
// are headless: each keeps the state its on-screen counterpart would render
// and leaves drawing to the display backend.
package panels

import (
	"fmt"

	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Instance limits for the built-in kinds. Configuration may override them
// per type.
const (
	MaxMediaViewers = 25
	MaxErrorPanels  = 5
)

var (
	controlSize    = geom.Size{Width: 600, Height: 120}
	launcherSize   = geom.Size{Width: 500, Height: 700}
	searchSize     = geom.Size{Width: 500, Height: 600}
	diagnosticSize = geom.Size{Width: 600, Height: 400}
	errorSize      = geom.Size{Width: 500, Height: 250}
)

// Register adds every built-in kind to reg.
func Register(reg *viewer.Registry) error {
	kinds := []struct {
		tag  string
		ctor viewer.Constructor
	}{
		{viewer.TypeMediaViewer, NewMediaViewer},
		{viewer.TypeLauncher, newLauncher(false)},
		{viewer.TypeLauncherPersistent, newLauncher(true)},
		{viewer.TypeSearch, newSearch(viewer.TypeSearch)},
		{viewer.TypeSelectMediaAmbient, newSearch(viewer.TypeSelectMediaAmbient)},
		{viewer.TypeSelectMediaBackground, newSearch(viewer.TypeSelectMediaBackground)},
		{viewer.TypePresentationController, NewPresentationController},
		{viewer.TypeSettings, NewSettingsPanel},
		{viewer.TypeFullscreenController, NewFullscreenController},
		{viewer.TypeDiagnostic, NewDiagnostic},
		{viewer.TypeStateViewer, NewStateViewer},
		{viewer.TypeError, NewErrorPanel},
	}
	for _, k := range kinds {
		if err := reg.Register(k.tag, k.ctor); err != nil {
			return fmt.Errorf("register %s: %w", k.tag, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in kind.
func NewRegistry() *viewer.Registry {
	reg := viewer.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

// control is a fixed-size, single-instance panel.
func control(tag string, size geom.Size) viewer.Spec {
	return viewer.Spec{Type: tag, MaxInstances: 1, DefaultSize: size}
}

// fixSize pins a panel to its declared size and aspect.
func fixSize(b *viewer.Base, size geom.Size) {
	p := b.Panel()
	p.SetContentAspect(size.Width / size.Height)
	p.SetAbsoluteSizeLimits(geom.Size{Width: size.Width / 4, Height: size.Height / 4}, size)
	p.SetDefaultSize(size)
	p.SetViewerSize(size.Width, size.Height)
}
