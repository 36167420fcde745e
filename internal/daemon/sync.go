package daemon

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/layout"
	"github.com/1broseidon/viewwall/internal/orchestrator"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// DisplayDetector returns the size of the attached display.
type DisplayDetector func() (geom.Size, error)

// fallbackDisplay is used when the size is auto and detection fails.
var fallbackDisplay = geom.Size{Width: 1920, Height: 1080}

// Settings maps the config onto controller tunables.
func Settings(cfg *config.Config) orchestrator.Settings {
	ax, ay := cfg.CompositeAspect()
	limits := make(map[string]int, len(cfg.Limits.MaxPerType))
	for k, v := range cfg.Limits.MaxPerType {
		limits[k] = v
	}
	return orchestrator.Settings{
		Mode:             cfg.Display.Mode,
		SingleYPercent:   cfg.Display.SingleYPanelPercent / 100,
		MasterScale:      cfg.Viewer.MasterScale,
		MinSize:          cfg.Viewer.MinSize,
		DefaultSize:      cfg.Viewer.DefaultSize,
		AnimDuration:     cfg.Viewer.AnimDuration,
		Padding:          cfg.Viewer.Padding,
		GatherJitter:     cfg.Viewer.GatherJitter,
		RemovalTimeout:   cfg.Viewer.RemovalTimeout,
		ExitDelay:        cfg.Viewer.ExitDelay,
		DarkenerOpacity:  cfg.UI.FullscreenDarkenerOpacity,
		CompositeAspectX: ax,
		CompositeAspectY: ay,
		CompositeKey:     cfg.Composite.Key,
		BackgroundAppKey: cfg.MediaBackgrounds.AppKey,
		MaxPerType:       limits,
	}
}

// LayerBounds places every layer on a display of size.
func LayerBounds(cfg *config.Config, size geom.Size) map[viewer.Layer]geom.Rect {
	full := geom.Rect{Width: size.Width, Height: size.Height}
	regions := map[viewer.Layer]layout.Region{
		viewer.LayerBackground: cfg.Display.Layers.Background,
		viewer.LayerNormal:     cfg.Display.Layers.Normal,
		viewer.LayerTop:        cfg.Display.Layers.Top,
	}
	out := make(map[viewer.Layer]geom.Rect, len(regions))
	for l, r := range regions {
		out[l] = layout.ApplyRegion(full, r)
	}
	return out
}

// StateSynchronizer pushes configuration changes into the running controller.
type StateSynchronizer struct {
	loop   *Loop
	detect DisplayDetector
	logger *slog.Logger
}

// NewStateSynchronizer creates a new state synchronizer. detect may be nil
// when no display server is available.
func NewStateSynchronizer(loop *Loop, detect DisplayDetector, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{loop: loop, detect: detect, logger: logger}
}

// DisplaySize resolves the wall size: the configured size, else the
// detected one, else 1920x1080.
func (s *StateSynchronizer) DisplaySize(cfg *config.Config) geom.Size {
	if !cfg.Display.Auto() {
		return geom.Size{Width: float64(cfg.Display.Width), Height: float64(cfg.Display.Height)}
	}
	if s.detect == nil {
		return fallbackDisplay
	}
	size, err := s.detect()
	if err != nil || size.Width <= 0 || size.Height <= 0 {
		s.logger.Warn("display size detection failed, using fallback",
			"error", err,
			"width", fallbackDisplay.Width,
			"height", fallbackDisplay.Height)
		return fallbackDisplay
	}
	return size
}

// Apply loads the catalog named by cfg and swaps settings, display size,
// layer bounds and catalog on the loop goroutine. A catalog that fails to
// load leaves the current one in place.
func (s *StateSynchronizer) Apply(ctx context.Context, cfg *config.Config) error {
	var cat *content.Catalog
	var catErr error
	if cfg.Content.Catalog != "" {
		cat, catErr = content.LoadCatalog(cfg.Content.Catalog)
		if catErr != nil {
			s.logger.Warn("failed to load content catalog", "path", cfg.Content.Catalog, "error", catErr)
		}
	}

	size := s.DisplaySize(cfg)
	settings := Settings(cfg)
	bounds := LayerBounds(cfg, size)

	s.loop.SetInterval(cfg.TickInterval())

	err := s.loop.Do(ctx, func(c *orchestrator.Controller) error {
		c.SetDisplay(size)
		for _, l := range viewer.Layers {
			if err := c.SetLayerBounds(l, bounds[l]); err != nil {
				return err
			}
		}
		c.UpdateSettings(settings)
		if cat != nil {
			c.SetCatalog(cat)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply config: %w", err)
	}

	s.logger.Info("config applied",
		"mode", settings.Mode,
		"width", size.Width,
		"height", size.Height,
		"catalog", cfg.Content.Catalog)
	return catErr
}
