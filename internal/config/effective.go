package config

import (
	"fmt"

	"github.com/1broseidon/viewwall/internal/layout"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if d := raw.Display; d != nil {
		setString(&cfg.Display.Mode, d.Mode)
		setFloat(&cfg.Display.SingleYPanelPercent, d.SingleYPanelPercent)
		setInt(&cfg.Display.Width, d.Width)
		setInt(&cfg.Display.Height, d.Height)
		setInt(&cfg.Display.FPS, d.FPS)
		setString(&cfg.Display.X11Display, d.X11Display)
		setString(&cfg.Display.XAuthority, d.XAuthority)
		if d.Layers != nil {
			applyRegion(&cfg.Display.Layers.Background, d.Layers.Background)
			applyRegion(&cfg.Display.Layers.Normal, d.Layers.Normal)
			applyRegion(&cfg.Display.Layers.Top, d.Layers.Top)
		}
	}

	if v := raw.Viewer; v != nil {
		setFloat(&cfg.Viewer.MasterScale, v.MasterScale)
		setFloat(&cfg.Viewer.MinSize, v.MinSize)
		setFloat(&cfg.Viewer.DefaultSize, v.DefaultSize)
		setFloat(&cfg.Viewer.Padding, v.Padding)
		setFloat(&cfg.Viewer.GatherJitter, v.GatherJitter)
		if v.AnimDuration != nil {
			cfg.Viewer.AnimDuration = *v.AnimDuration
		}
		if v.RemovalTimeout != nil {
			cfg.Viewer.RemovalTimeout = *v.RemovalTimeout
		}
		if v.ExitDelay != nil {
			cfg.Viewer.ExitDelay = *v.ExitDelay
		}
	}

	if raw.UI != nil {
		setFloat(&cfg.UI.FullscreenDarkenerOpacity, raw.UI.FullscreenDarkenerOpacity)
		setString(&cfg.UI.PaletteBackend, raw.UI.PaletteBackend)
	}

	if c := raw.Composite; c != nil {
		if c.AspectRatio != nil {
			cfg.Composite.AspectRatio = append([]float64(nil), c.AspectRatio...)
		}
		setString(&cfg.Composite.Key, c.Key)
	}

	if raw.MediaBackgrounds != nil {
		setString(&cfg.MediaBackgrounds.AppKey, raw.MediaBackgrounds.AppKey)
	}

	if raw.Limits != nil {
		for tag, n := range raw.Limits.MaxPerType {
			cfg.Limits.MaxPerType[tag] = n
		}
	}

	if raw.Content != nil {
		setString(&cfg.Content.Catalog, raw.Content.Catalog)
	}

	if h := raw.Hotkeys; h != nil {
		setString(&cfg.Hotkeys.Arrange, h.Arrange)
		setString(&cfg.Hotkeys.Gather, h.Gather)
		setString(&cfg.Hotkeys.CloseAll, h.CloseAll)
		setString(&cfg.Hotkeys.Advance, h.Advance)
		setString(&cfg.Hotkeys.Back, h.Back)
		setString(&cfg.Hotkeys.Palette, h.Palette)
	}

	if raw.Metrics != nil {
		setString(&cfg.Metrics.Listen, raw.Metrics.Listen)
	}

	if raw.Bridge != nil && raw.Bridge.AMQP != nil {
		a := raw.Bridge.AMQP
		setString(&cfg.Bridge.AMQP.URL, a.URL)
		setString(&cfg.Bridge.AMQP.Queue, a.Queue)
		setString(&cfg.Bridge.AMQP.Exchange, a.Exchange)
		setString(&cfg.Bridge.AMQP.RoutingKey, a.RoutingKey)
	}

	if raw.Logging != nil {
		setString(&cfg.Logging.Level, raw.Logging.Level)
		setString(&cfg.Logging.Format, raw.Logging.Format)
	}

	if raw.Watch != nil {
		cfg.Watch = *raw.Watch
	}

	if err := checkLayerRegions(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkLayerRegions rejects custom regions missing a size.
func checkLayerRegions(cfg *Config) error {
	for name, r := range map[string]layout.Region{
		"background": cfg.Display.Layers.Background,
		"normal":     cfg.Display.Layers.Normal,
		"top":        cfg.Display.Layers.Top,
	} {
		if r.Type == layout.RegionCustom && (r.WidthPercent == 0 || r.HeightPercent == 0) {
			return &ValidationError{Path: "display.layers." + name, Err: fmt.Errorf("custom region requires width_percent and height_percent")}
		}
	}
	return nil
}

func applyRegion(dst *layout.Region, raw *RawRegion) {
	if raw == nil {
		return
	}
	if raw.Type != nil {
		dst.Type = *raw.Type
	}
	setFloat(&dst.XPercent, raw.XPercent)
	setFloat(&dst.YPercent, raw.YPercent)
	setFloat(&dst.WidthPercent, raw.WidthPercent)
	setFloat(&dst.HeightPercent, raw.HeightPercent)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
