package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/orchestrator"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandListViewers  CommandType = "LIST_VIEWERS"
	CommandGetDisplays  CommandType = "GET_DISPLAYS"
	CommandLaunch       CommandType = "LAUNCH"
	CommandCloseAll     CommandType = "CLOSE_ALL"
	CommandArrange      CommandType = "ARRANGE"
	CommandGather       CommandType = "GATHER"
	CommandFullscreen   CommandType = "FULLSCREEN"
	CommandUnfullscreen CommandType = "UNFULLSCREEN"
	CommandAdvance      CommandType = "ADVANCE"
	CommandPDFPage      CommandType = "PDF_PAGE"
	CommandPresentation CommandType = "PRESENTATION"
	CommandExit         CommandType = "EXIT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	orchestrator.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// ViewersData represents the data returned by LIST_VIEWERS
type ViewersData struct {
	Viewers []viewer.Info `json:"viewers"`
}

// DisplayInfo represents information about a single display
type DisplayInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
	// Wall is the surface the controller lays viewers out on.
	Wall DisplayInfo `json:"wall"`
}

// LaunchPayload describes a viewer to open. UserString, when set, is parsed
// as "key:value ! key:value" and wins over every other field.
type LaunchPayload struct {
	ViewType   string   `json:"view_type,omitempty"`
	Layer      string   `json:"layer,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Fullscreen bool     `json:"fullscreen,omitempty"`
	ContentID  int      `json:"content_id,omitempty"`
	MediaPath  string   `json:"media_path,omitempty"`
	UserString string   `json:"user_string,omitempty"`
	Volume     *int     `json:"volume,omitempty"`
	Page       int      `json:"page,omitempty"`
	Loop       bool     `json:"loop,omitempty"`
	Locked     bool     `json:"locked,omitempty"`
}

// LaunchData is returned by LAUNCH. ViewerID is empty when the launch
// opened a presentation, slide or pinboard.
type LaunchData struct {
	ViewerID string `json:"viewer_id,omitempty"`
	ViewType string `json:"view_type,omitempty"`
}

type CloseAllPayload struct {
	CloseSlideContent bool `json:"close_slide_content,omitempty"`
}

// GatherPayload is the gather point in display coordinates. Missing
// coordinates mean the center of the normal layer.
type GatherPayload struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

type ViewerPayload struct {
	ViewerID string `json:"viewer_id"`
}

type DirectionPayload struct {
	Forwards bool `json:"forwards"`
}

// PresentationPayload starts presentation ID, or jumps to SlideID. End
// clears the current presentation.
type PresentationPayload struct {
	ID             int  `json:"id,omitempty"`
	SlideID        int  `json:"slide_id,omitempty"`
	ShowController bool `json:"show_controller,omitempty"`
	End            bool `json:"end,omitempty"`
}

// Validate checks a presentation payload names exactly one action.
func (p PresentationPayload) Validate() error {
	n := 0
	if p.ID != 0 {
		n++
	}
	if p.SlideID != 0 {
		n++
	}
	if p.End {
		n++
	}
	if n != 1 {
		return fmt.Errorf("exactly one of id, slide_id or end is required")
	}
	return nil
}

// BuildRequest turns the payload into a creation request. lookup resolves
// ContentID against the catalog.
func (p LaunchPayload) BuildRequest(lookup func(int) *content.Model) (viewer.Request, error) {
	viewType := p.ViewType
	if viewType == "" {
		viewType = viewer.TypeMediaViewer
	}

	var m *content.Model
	switch {
	case p.ContentID != 0:
		if lookup != nil {
			m = lookup(p.ContentID)
		}
		if m == nil {
			return viewer.Request{}, fmt.Errorf("content %d is not in the catalog", p.ContentID)
		}
	case p.MediaPath != "":
		m = &content.Model{Name: p.MediaPath}
		m.SetResource(content.KeyMedia, content.NewResource(p.MediaPath))
	}

	req := viewer.NewRequest(m, viewType)
	if p.Layer != "" {
		l, err := viewer.ParseLayer(p.Layer)
		if err != nil {
			return viewer.Request{}, err
		}
		req.Layer = l
	}
	if p.X != nil || p.Y != nil {
		req.Location.X, req.Location.Y, req.Location.Z = 0, 0, 0
		if p.X != nil {
			req.Location.X = *p.X
		}
		if p.Y != nil {
			req.Location.Y = *p.Y
		}
	}
	if p.Width > 0 {
		req.StartWidth = p.Width
		req.EnforceMinSize = false
	}
	req.Fullscreen = p.Fullscreen
	if p.Volume != nil {
		req.Volume = *p.Volume
	}
	req.Page = p.Page
	req.Loop = p.Loop
	req.StartLocked = p.Locked
	return req, nil
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
