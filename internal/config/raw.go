package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/viewwall/internal/layout"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawRegion struct {
	Type          *layout.RegionType `yaml:"type"`
	XPercent      *float64           `yaml:"x_percent"`
	YPercent      *float64           `yaml:"y_percent"`
	WidthPercent  *float64           `yaml:"width_percent"`
	HeightPercent *float64           `yaml:"height_percent"`
}

type RawLayerRegions struct {
	Background *RawRegion `yaml:"background"`
	Normal     *RawRegion `yaml:"normal"`
	Top        *RawRegion `yaml:"top"`
}

type RawDisplay struct {
	Mode                *string          `yaml:"mode"`
	SingleYPanelPercent *float64         `yaml:"single_y_panel_percent"`
	Width               *int             `yaml:"width"`
	Height              *int             `yaml:"height"`
	Layers              *RawLayerRegions `yaml:"layers"`
	FPS                 *int             `yaml:"fps"`
	X11Display          *string          `yaml:"x11_display"`
	XAuthority          *string          `yaml:"xauthority"`
}

type RawViewer struct {
	MasterScale    *float64       `yaml:"master_scale"`
	MinSize        *float64       `yaml:"min_size"`
	DefaultSize    *float64       `yaml:"default_size"`
	AnimDuration   *time.Duration `yaml:"anim_duration"`
	Padding        *float64       `yaml:"padding"`
	GatherJitter   *float64       `yaml:"gather_jitter"`
	RemovalTimeout *time.Duration `yaml:"removal_timeout"`
	ExitDelay      *time.Duration `yaml:"exit_delay"`
}

type RawUI struct {
	FullscreenDarkenerOpacity *float64 `yaml:"fullscreen_darkener_opacity"`
	PaletteBackend            *string  `yaml:"palette_backend"`
}

type RawComposite struct {
	AspectRatio []float64 `yaml:"aspect_ratio"`
	Key         *string   `yaml:"key"`
}

type RawMediaBackgrounds struct {
	AppKey *string `yaml:"app_key"`
}

type RawLimits struct {
	MaxPerType map[string]int `yaml:"max_per_type"`
}

type RawContent struct {
	Catalog *string `yaml:"catalog"`
}

type RawHotkeys struct {
	Arrange  *string `yaml:"arrange"`
	Gather   *string `yaml:"gather"`
	CloseAll *string `yaml:"close_all"`
	Advance  *string `yaml:"advance"`
	Back     *string `yaml:"back"`
	Palette  *string `yaml:"palette"`
}

type RawMetrics struct {
	Listen *string `yaml:"listen"`
}

type RawAMQP struct {
	URL        *string `yaml:"url"`
	Queue      *string `yaml:"queue"`
	Exchange   *string `yaml:"exchange"`
	RoutingKey *string `yaml:"routing_key"`
}

type RawBridge struct {
	AMQP *RawAMQP `yaml:"amqp"`
}

type RawLoggingConfig struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type RawConfig struct {
	Include          IncludeList          `yaml:"include"`
	Display          *RawDisplay          `yaml:"display"`
	Viewer           *RawViewer           `yaml:"viewer"`
	UI               *RawUI               `yaml:"ui"`
	Composite        *RawComposite        `yaml:"composite"`
	MediaBackgrounds *RawMediaBackgrounds `yaml:"media_backgrounds"`
	Limits           *RawLimits           `yaml:"limits"`
	Content          *RawContent          `yaml:"content"`
	Hotkeys          *RawHotkeys          `yaml:"hotkeys"`
	Metrics          *RawMetrics          `yaml:"metrics"`
	Bridge           *RawBridge           `yaml:"bridge"`
	Logging          *RawLoggingConfig    `yaml:"logging"`
	Watch            *bool                `yaml:"watch"`
}

// pick returns overlay when set, base otherwise.
func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		if out.Display == nil {
			out.Display = &RawDisplay{}
		}
		merged := mergeRawDisplay(*out.Display, *overlay.Display)
		out.Display = &merged
	}

	if overlay.Viewer != nil {
		base := RawViewer{}
		if out.Viewer != nil {
			base = *out.Viewer
		}
		o := overlay.Viewer
		base.MasterScale = pick(base.MasterScale, o.MasterScale)
		base.MinSize = pick(base.MinSize, o.MinSize)
		base.DefaultSize = pick(base.DefaultSize, o.DefaultSize)
		base.AnimDuration = pick(base.AnimDuration, o.AnimDuration)
		base.Padding = pick(base.Padding, o.Padding)
		base.GatherJitter = pick(base.GatherJitter, o.GatherJitter)
		base.RemovalTimeout = pick(base.RemovalTimeout, o.RemovalTimeout)
		base.ExitDelay = pick(base.ExitDelay, o.ExitDelay)
		out.Viewer = &base
	}

	if overlay.UI != nil {
		base := RawUI{}
		if out.UI != nil {
			base = *out.UI
		}
		base.FullscreenDarkenerOpacity = pick(base.FullscreenDarkenerOpacity, overlay.UI.FullscreenDarkenerOpacity)
		base.PaletteBackend = pick(base.PaletteBackend, overlay.UI.PaletteBackend)
		out.UI = &base
	}

	if overlay.Composite != nil {
		base := RawComposite{}
		if out.Composite != nil {
			base = *out.Composite
		}
		if overlay.Composite.AspectRatio != nil {
			base.AspectRatio = overlay.Composite.AspectRatio
		}
		base.Key = pick(base.Key, overlay.Composite.Key)
		out.Composite = &base
	}

	if overlay.MediaBackgrounds != nil {
		base := RawMediaBackgrounds{}
		if out.MediaBackgrounds != nil {
			base = *out.MediaBackgrounds
		}
		base.AppKey = pick(base.AppKey, overlay.MediaBackgrounds.AppKey)
		out.MediaBackgrounds = &base
	}

	if overlay.Limits != nil && overlay.Limits.MaxPerType != nil {
		if out.Limits == nil {
			out.Limits = &RawLimits{}
		}
		if out.Limits.MaxPerType == nil {
			out.Limits.MaxPerType = make(map[string]int, len(overlay.Limits.MaxPerType))
		}
		for tag, n := range overlay.Limits.MaxPerType {
			out.Limits.MaxPerType[tag] = n
		}
	}

	if overlay.Content != nil {
		base := RawContent{}
		if out.Content != nil {
			base = *out.Content
		}
		base.Catalog = pick(base.Catalog, overlay.Content.Catalog)
		out.Content = &base
	}

	if overlay.Hotkeys != nil {
		base := RawHotkeys{}
		if out.Hotkeys != nil {
			base = *out.Hotkeys
		}
		o := overlay.Hotkeys
		base.Arrange = pick(base.Arrange, o.Arrange)
		base.Gather = pick(base.Gather, o.Gather)
		base.CloseAll = pick(base.CloseAll, o.CloseAll)
		base.Advance = pick(base.Advance, o.Advance)
		base.Back = pick(base.Back, o.Back)
		base.Palette = pick(base.Palette, o.Palette)
		out.Hotkeys = &base
	}

	if overlay.Metrics != nil {
		base := RawMetrics{}
		if out.Metrics != nil {
			base = *out.Metrics
		}
		base.Listen = pick(base.Listen, overlay.Metrics.Listen)
		out.Metrics = &base
	}

	if overlay.Bridge != nil && overlay.Bridge.AMQP != nil {
		if out.Bridge == nil {
			out.Bridge = &RawBridge{}
		}
		base := RawAMQP{}
		if out.Bridge.AMQP != nil {
			base = *out.Bridge.AMQP
		}
		o := overlay.Bridge.AMQP
		base.URL = pick(base.URL, o.URL)
		base.Queue = pick(base.Queue, o.Queue)
		base.Exchange = pick(base.Exchange, o.Exchange)
		base.RoutingKey = pick(base.RoutingKey, o.RoutingKey)
		out.Bridge = &RawBridge{AMQP: &base}
	}

	if overlay.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		}
		if overlay.Logging.Level != nil {
			out.Logging.Level = overlay.Logging.Level
		}
		if overlay.Logging.Format != nil {
			out.Logging.Format = overlay.Logging.Format
		}
	}

	out.Watch = pick(out.Watch, overlay.Watch)

	return out
}

func mergeRawDisplay(base RawDisplay, overlay RawDisplay) RawDisplay {
	out := base
	out.Mode = pick(base.Mode, overlay.Mode)
	out.SingleYPanelPercent = pick(base.SingleYPanelPercent, overlay.SingleYPanelPercent)
	out.Width = pick(base.Width, overlay.Width)
	out.Height = pick(base.Height, overlay.Height)
	out.FPS = pick(base.FPS, overlay.FPS)
	out.X11Display = pick(base.X11Display, overlay.X11Display)
	out.XAuthority = pick(base.XAuthority, overlay.XAuthority)
	if overlay.Layers != nil {
		layers := RawLayerRegions{}
		if base.Layers != nil {
			layers = *base.Layers
		}
		layers.Background = mergeRawRegionPtr(layers.Background, overlay.Layers.Background)
		layers.Normal = mergeRawRegionPtr(layers.Normal, overlay.Layers.Normal)
		layers.Top = mergeRawRegionPtr(layers.Top, overlay.Layers.Top)
		out.Layers = &layers
	}
	return out
}

func mergeRawRegionPtr(base, overlay *RawRegion) *RawRegion {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay
	}
	merged := mergeRawRegion(*base, *overlay)
	return &merged
}

func mergeRawRegion(base RawRegion, overlay RawRegion) RawRegion {
	out := base
	if overlay.Type != nil {
		out.Type = overlay.Type
	}
	if overlay.XPercent != nil {
		out.XPercent = overlay.XPercent
	}
	if overlay.YPercent != nil {
		out.YPercent = overlay.YPercent
	}
	if overlay.WidthPercent != nil {
		out.WidthPercent = overlay.WidthPercent
	}
	if overlay.HeightPercent != nil {
		out.HeightPercent = overlay.HeightPercent
	}
	return out
}
