package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/viewwall/internal/layout"
)

// Display modes.
const (
	ModeWall   = "wall"
	ModeSingle = "single"
)

// LayerRegions places each display layer on the screen.
type LayerRegions struct {
	Background layout.Region `yaml:"background"`
	Normal     layout.Region `yaml:"normal"`
	Top        layout.Region `yaml:"top"`
}

// DisplayConfig describes the wall surface.
type DisplayConfig struct {
	Mode                string  `yaml:"mode"`
	SingleYPanelPercent float64 `yaml:"single_y_panel_percent"`
	// Width and Height of zero mean "auto": take the size from the X server.
	Width  int          `yaml:"width"`
	Height int          `yaml:"height"`
	Layers LayerRegions `yaml:"layers"`
	FPS    int          `yaml:"fps"`
	// X11Display and XAuthority override $DISPLAY and $XAUTHORITY.
	X11Display string `yaml:"x11_display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
}

// Auto reports whether the display size comes from the X server.
func (d DisplayConfig) Auto() bool { return d.Width <= 0 || d.Height <= 0 }

// ViewerConfig holds the sizing and animation tunables shared by all viewers.
type ViewerConfig struct {
	MasterScale    float64       `yaml:"master_scale"`
	MinSize        float64       `yaml:"min_size"`
	DefaultSize    float64       `yaml:"default_size"`
	AnimDuration   time.Duration `yaml:"anim_duration"`
	Padding        float64       `yaml:"padding"`
	GatherJitter   float64       `yaml:"gather_jitter"`
	RemovalTimeout time.Duration `yaml:"removal_timeout"`
	ExitDelay      time.Duration `yaml:"exit_delay"`
}

type UIConfig struct {
	FullscreenDarkenerOpacity float64 `yaml:"fullscreen_darkener_opacity"`
	// PaletteBackend is rofi, fuzzel, wofi, dmenu or auto.
	PaletteBackend string `yaml:"palette_backend"`
}

// CompositeConfig sets the area slide composites are laid out in.
type CompositeConfig struct {
	AspectRatio []float64 `yaml:"aspect_ratio"`
	Key         string    `yaml:"key"`
}

type MediaBackgrounds struct {
	// AppKey names the content property holding a slide's background media.
	AppKey string `yaml:"app_key,omitempty"`
}

type Limits struct {
	MaxPerType map[string]int `yaml:"max_per_type,omitempty"`
}

type ContentConfig struct {
	Catalog string `yaml:"catalog,omitempty"`
}

// Hotkeys are X11 key chords in xgbutil keybind notation.
type Hotkeys struct {
	Arrange  string `yaml:"arrange"`
	Gather   string `yaml:"gather"`
	CloseAll string `yaml:"close_all"`
	Advance  string `yaml:"advance"`
	Back     string `yaml:"back"`
	Palette  string `yaml:"palette"`
}

type MetricsConfig struct {
	// Listen is the metrics address, e.g. ":9464". Empty disables it.
	Listen string `yaml:"listen,omitempty"`
}

type AMQPConfig struct {
	URL        string `yaml:"url,omitempty"`
	Queue      string `yaml:"queue"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type BridgeConfig struct {
	AMQP AMQPConfig `yaml:"amqp"`
}

// LoggingConfig configures the daemon's structured logger.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Config holds the application configuration.
type Config struct {
	Display          DisplayConfig    `yaml:"display"`
	Viewer           ViewerConfig     `yaml:"viewer"`
	UI               UIConfig         `yaml:"ui"`
	Composite        CompositeConfig  `yaml:"composite"`
	MediaBackgrounds MediaBackgrounds `yaml:"media_backgrounds,omitempty"`
	Limits           Limits           `yaml:"limits,omitempty"`
	Content          ContentConfig    `yaml:"content,omitempty"`
	Hotkeys          Hotkeys          `yaml:"hotkeys"`
	Metrics          MetricsConfig    `yaml:"metrics,omitempty"`
	Bridge           BridgeConfig     `yaml:"bridge"`
	Logging          LoggingConfig    `yaml:"logging"`
	Watch            bool             `yaml:"watch"`
}

func DefaultConfig() *Config {
	full := layout.Region{Type: layout.RegionFull}
	return &Config{
		Display: DisplayConfig{
			Mode:                ModeWall,
			SingleYPanelPercent: 66.6,
			Layers:              LayerRegions{Background: full, Normal: full, Top: full},
			FPS:                 60,
		},
		Viewer: ViewerConfig{
			MasterScale:    1.0,
			MinSize:        100,
			DefaultSize:    400,
			AnimDuration:   350 * time.Millisecond,
			Padding:        5,
			GatherJitter:   300,
			RemovalTimeout: 5 * time.Second,
			ExitDelay:      2 * time.Second,
		},
		UI: UIConfig{FullscreenDarkenerOpacity: 0.8, PaletteBackend: "auto"},
		Composite: CompositeConfig{
			AspectRatio: []float64{16, 9},
			Key:         "composite",
		},
		Limits: Limits{MaxPerType: map[string]int{}},
		Hotkeys: Hotkeys{
			Arrange:  "Mod4-Mod1-a",
			Gather:   "Mod4-Mod1-g",
			CloseAll: "Mod4-Mod1-w",
			Advance:  "Mod4-Mod1-Right",
			Back:     "Mod4-Mod1-Left",
			Palette:  "Mod4-Mod1-space",
		},
		Bridge: BridgeConfig{AMQP: AMQPConfig{
			Queue:      "viewwall.commands",
			Exchange:   "viewwall",
			RoutingKey: "viewwall.#",
		}},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// CompositeAspect returns the composite width and height ratio terms.
func (c *Config) CompositeAspect() (float64, float64) {
	if c == nil || len(c.Composite.AspectRatio) != 2 {
		return 16, 9
	}
	return c.Composite.AspectRatio[0], c.Composite.AspectRatio[1]
}

// TickInterval is the frame period for the configured fps.
func (c *Config) TickInterval() time.Duration {
	fps := 60
	if c != nil && c.Display.FPS > 0 {
		fps = c.Display.FPS
	}
	return time.Second / time.Duration(fps)
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Display.Mode {
	case ModeWall, ModeSingle:
	default:
		return &ValidationError{Path: "display.mode", Err: fmt.Errorf("mode must be one of: wall, single")}
	}
	if c.Display.SingleYPanelPercent < 0 || c.Display.SingleYPanelPercent > 100 {
		return &ValidationError{Path: "display.single_y_panel_percent", Err: fmt.Errorf("single_y_panel_percent must be between 0 and 100")}
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return &ValidationError{Path: "display.width", Err: fmt.Errorf("width/height must be >= 0")}
	}
	if c.Display.FPS <= 0 || c.Display.FPS > 240 {
		return &ValidationError{Path: "display.fps", Err: fmt.Errorf("fps must be between 1 and 240")}
	}
	for name, r := range map[string]layout.Region{
		"background": c.Display.Layers.Background,
		"normal":     c.Display.Layers.Normal,
		"top":        c.Display.Layers.Top,
	} {
		if err := r.Validate(); err != nil {
			return &ValidationError{Path: "display.layers." + name, Err: err}
		}
	}

	v := c.Viewer
	if v.MasterScale <= 0 {
		return &ValidationError{Path: "viewer.master_scale", Err: fmt.Errorf("master_scale must be > 0")}
	}
	if v.MinSize <= 0 {
		return &ValidationError{Path: "viewer.min_size", Err: fmt.Errorf("min_size must be > 0")}
	}
	if v.DefaultSize < v.MinSize {
		return &ValidationError{Path: "viewer.default_size", Err: fmt.Errorf("default_size must be >= min_size")}
	}
	if v.AnimDuration <= 0 {
		return &ValidationError{Path: "viewer.anim_duration", Err: fmt.Errorf("anim_duration must be > 0")}
	}
	if v.Padding < 0 {
		return &ValidationError{Path: "viewer.padding", Err: fmt.Errorf("padding must be >= 0")}
	}
	if v.GatherJitter < 0 {
		return &ValidationError{Path: "viewer.gather_jitter", Err: fmt.Errorf("gather_jitter must be >= 0")}
	}
	if v.RemovalTimeout < v.AnimDuration {
		return &ValidationError{Path: "viewer.removal_timeout", Err: fmt.Errorf("removal_timeout must be >= anim_duration")}
	}
	if v.ExitDelay < 0 {
		return &ValidationError{Path: "viewer.exit_delay", Err: fmt.Errorf("exit_delay must be >= 0")}
	}

	if o := c.UI.FullscreenDarkenerOpacity; o < 0 || o > 1 {
		return &ValidationError{Path: "ui.fullscreen_darkener_opacity", Err: fmt.Errorf("fullscreen_darkener_opacity must be between 0 and 1")}
	}
	switch c.UI.PaletteBackend {
	case "", "auto", "rofi", "fuzzel", "wofi", "dmenu":
	default:
		return &ValidationError{Path: "ui.palette_backend", Err: fmt.Errorf("unknown palette backend %q", c.UI.PaletteBackend)}
	}

	if len(c.Composite.AspectRatio) != 2 || c.Composite.AspectRatio[0] <= 0 || c.Composite.AspectRatio[1] <= 0 {
		return &ValidationError{Path: "composite.aspect_ratio", Err: fmt.Errorf("aspect_ratio must be two positive numbers")}
	}
	if strings.TrimSpace(c.Composite.Key) == "" {
		return &ValidationError{Path: "composite.key", Err: fmt.Errorf("key is required")}
	}

	for tag, n := range c.Limits.MaxPerType {
		if strings.TrimSpace(tag) == "" {
			return &ValidationError{Path: "limits.max_per_type", Err: fmt.Errorf("max_per_type contains an empty view type")}
		}
		if n < 1 {
			return &ValidationError{Path: "limits.max_per_type." + tag, Err: fmt.Errorf("max must be >= 1")}
		}
	}

	if amqp := c.Bridge.AMQP; amqp.URL != "" && strings.TrimSpace(amqp.Queue) == "" {
		return &ValidationError{Path: "bridge.amqp.queue", Err: fmt.Errorf("queue is required when url is set")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}

	if warnings := c.validationWarnings(); len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	return nil
}

func (c *Config) validationWarnings() []string {
	if c == nil {
		return nil
	}

	var warnings []string

	if c.Content.Catalog != "" {
		if _, err := os.Stat(c.Content.Catalog); err != nil {
			warnings = append(warnings, fmt.Sprintf("content.catalog %q is not readable; starting with an empty catalog", c.Content.Catalog))
		}
	}

	seen := map[string]string{}
	for name, chord := range map[string]string{
		"arrange":   c.Hotkeys.Arrange,
		"gather":    c.Hotkeys.Gather,
		"close_all": c.Hotkeys.CloseAll,
		"advance":   c.Hotkeys.Advance,
		"back":      c.Hotkeys.Back,
		"palette":   c.Hotkeys.Palette,
	} {
		if chord == "" {
			continue
		}
		if other, ok := seen[chord]; ok {
			warnings = append(warnings, fmt.Sprintf("hotkeys.%s and hotkeys.%s share %q; only one will fire", other, name, chord))
		}
		seen[chord] = name
	}

	return warnings
}
