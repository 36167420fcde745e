package mcp

import "github.com/1broseidon/viewwall/internal/viewer"

// LaunchViewerInput is the input for the launch_viewer tool.
type LaunchViewerInput struct {
	ViewType   string   `json:"view_type,omitempty" jsonschema:"Viewer kind (titled_media_viewer, launcher, search, settings, diagnostic, state_viewer, ...). Default: titled_media_viewer"`
	Layer      string   `json:"layer,omitempty" jsonschema:"Layer to place the viewer on: background, normal or top (default: the kind's default layer)"`
	X          *float64 `json:"x,omitempty" jsonschema:"Optional x coordinate of the viewer's center on the wall"`
	Y          *float64 `json:"y,omitempty" jsonschema:"Optional y coordinate of the viewer's center on the wall"`
	Width      float64  `json:"width,omitempty" jsonschema:"Optional starting width in pixels; disables the minimum size"`
	Fullscreen bool     `json:"fullscreen,omitempty" jsonschema:"Open the viewer fullscreen"`
	ContentID  int      `json:"content_id,omitempty" jsonschema:"Catalog content id to show"`
	MediaPath  string   `json:"media_path,omitempty" jsonschema:"Path or URL of a media file to show when no content_id is given"`
	UserString string   `json:"user_string,omitempty" jsonschema:"A raw user string (path, URL or search text); overrides every other field"`
	Page       int      `json:"page,omitempty" jsonschema:"Starting PDF page (1-based)"`
	Loop       bool     `json:"loop,omitempty" jsonschema:"Loop video playback"`
}

// LaunchViewerOutput is the output for the launch_viewer tool.
type LaunchViewerOutput struct {
	ViewerID string `json:"viewer_id,omitempty"`
	ViewType string `json:"view_type,omitempty"`
}

// CloseAllInput is the input for the close_all tool.
type CloseAllInput struct {
	CloseSlideContent bool `json:"close_slide_content,omitempty" jsonschema:"Also close viewers that belong to the running presentation"`
}

// GatherInput is the input for the gather_viewers tool.
type GatherInput struct {
	X *float64 `json:"x,omitempty" jsonschema:"x coordinate to gather around (default: center of the normal layer)"`
	Y *float64 `json:"y,omitempty" jsonschema:"y coordinate to gather around (default: center of the normal layer)"`
}

// ViewerInput addresses a single viewer.
type ViewerInput struct {
	ViewerID string `json:"viewer_id" jsonschema:"required,Id of the viewer as returned by list_viewers or launch_viewer"`
}

// AdvanceInput is the input for the advance tool.
type AdvanceInput struct {
	Back bool `json:"back,omitempty" jsonschema:"Go back instead of forwards"`
}

// PresentationInput is the input for the presentation tool.
type PresentationInput struct {
	ID      int  `json:"id,omitempty" jsonschema:"Catalog id of a presentation to start"`
	SlideID int  `json:"slide_id,omitempty" jsonschema:"Catalog id of a slide to jump to"`
	End     bool `json:"end,omitempty" jsonschema:"End the running presentation"`
}

// ListViewersInput is the input for the list_viewers tool.
type ListViewersInput struct {
	ViewType string `json:"view_type,omitempty" jsonschema:"Only list viewers of this kind"`
}

// ListViewersOutput is the output for the list_viewers tool.
type ListViewersOutput struct {
	Viewers []viewer.Info `json:"viewers"`
}

// WallStatusInput is the input for the wall_status tool.
type WallStatusInput struct{}

// WallStatusOutput is the output for the wall_status tool.
type WallStatusOutput struct {
	Width         float64        `json:"width"`
	Height        float64        `json:"height"`
	Live          int            `json:"live"`
	CountByType   map[string]int `json:"count_by_type"`
	Idle          bool           `json:"idle"`
	Presentation  int            `json:"presentation_id,omitempty"`
	Slide         int            `json:"slide_id,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
}
