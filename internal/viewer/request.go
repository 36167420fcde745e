package viewer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/geom"
)

// Layer is one of the three z-ordered display groups.
type Layer int

const (
	LayerBackground Layer = iota
	LayerNormal
	LayerTop
)

// Layers lists every layer from back to front.
var Layers = []Layer{LayerBackground, LayerNormal, LayerTop}

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerNormal:
		return "normal"
	case LayerTop:
		return "top"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Valid reports whether l names one of the three layers.
func (l Layer) Valid() bool {
	return l >= LayerBackground && l <= LayerTop
}

// ParseLayer accepts a layer name or its numeric index.
func ParseLayer(s string) (Layer, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "background", "bg":
		return LayerBackground, nil
	case "normal", "":
		return LayerNormal, nil
	case "top":
		return LayerTop, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLayer, s)
	}
	l := Layer(n)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLayer, n)
	}
	return l, nil
}

// NoPosition is the sentinel location meaning "center of the target layer".
var NoPosition = geom.Vec3{X: -1, Y: -1, Z: -1}

// Request describes a viewer to spawn and how to place it. It carries intent
// only; the orchestrator validates it when used.
type Request struct {
	Content  *content.Model `json:"content,omitempty"`
	ViewType string         `json:"view_type"`
	Layer    Layer          `json:"layer"`

	Location    geom.Vec3 `json:"location"`
	FromCenter  bool      `json:"from_center"`
	StartWidth  float64   `json:"start_width,omitempty"`
	CheckBounds bool      `json:"check_bounds"`

	EnforceMinSize           bool `json:"enforce_min_size"`
	Fullscreen               bool `json:"fullscreen,omitempty"`
	ShowFullscreenController bool `json:"show_fullscreen_controller"`
	TouchEnabled             bool `json:"touch_enabled"`
	StartLocked              bool `json:"start_locked,omitempty"`
	StartDrawing             bool `json:"start_drawing,omitempty"`

	Volume       int           `json:"volume"`
	Page         int           `json:"page,omitempty"`
	Loop         bool          `json:"loop,omitempty"`
	AutoStart    bool          `json:"autostart"`
	Mute         bool          `json:"mute,omitempty"`
	TimePosition time.Duration `json:"time_position,omitempty"`

	UseHotspots  bool `json:"use_hotspots,omitempty"`
	SlideContent bool `json:"slide_content,omitempty"`

	// ShowPresentationController applies to presentation launches only.
	ShowPresentationController bool `json:"show_presentation_controller,omitempty"`
}

// NewRequest returns a "no preference" request for viewType.
func NewRequest(ref *content.Model, viewType string) Request {
	return Request{
		Content:                  ref,
		ViewType:                 viewType,
		Layer:                    LayerNormal,
		Location:                 NoPosition,
		FromCenter:               true,
		CheckBounds:              true,
		EnforceMinSize:           true,
		ShowFullscreenController: true,
		TouchEnabled:             true,
		Volume:                   100,
		AutoStart:                true,
	}
}

// NewRequestAt is NewRequest with an explicit location and layer.
func NewRequestAt(ref *content.Model, viewType string, loc geom.Vec3, layer Layer) Request {
	r := NewRequest(ref, viewType)
	r.Location = loc
	r.Layer = layer
	return r
}

// HasPosition reports whether the request names a concrete location.
func (r Request) HasPosition() bool {
	return !(r.Location.X < 0 && r.Location.Y < 0 && r.Location.Z < 0)
}
