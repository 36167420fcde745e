// Package mcp exposes the display wall to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/viewwall/internal/ipc"
)

const (
	ServerName    = "viewwall"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call. *ipc.Client
// satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListViewers() (*ipc.ViewersData, error)
	Launch(p ipc.LaunchPayload) (*ipc.LaunchData, error)
	CloseAll(slides bool) error
	Arrange() error
	Gather(x, y *float64) error
	Fullscreen(id string) error
	Unfullscreen(id string) error
	Advance(forwards bool) error
	Presentation(p ipc.PresentationPayload) error
}

// Server is the MCP server for the wall. Every tool proxies to the running
// daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that talks to the daemon over IPC.
func NewServer() *Server {
	return NewServerWithDaemon(ipc.NewClient())
}

// NewServerWithDaemon creates an MCP server backed by d.
func NewServerWithDaemon(d Daemon) *Server {
	s := &Server{daemon: d}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "launch_viewer",
		Description: "Open a viewer on the wall. Give a content_id from the catalog, a media_path, or a user_string (path, URL or search text). Without x/y the viewer opens at the kind's default position. Returns the new viewer id; presentations, slides and pinboards open several viewers and return no id.",
	}, s.handleLaunchViewer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_all",
		Description: "Close every viewer on the wall. Presentation slides stay open unless close_slide_content is true. While the wall is idle, persistent launchers and background media stay open.",
	}, s.handleCloseAll)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_viewers",
		Description: "Pack the normal-layer viewers into a tidy non-overlapping layout.",
	}, s.handleArrange)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "gather_viewers",
		Description: "Pull every normal-layer viewer toward a point (default: the center of the normal layer).",
	}, s.handleGather)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "fullscreen_viewer",
		Description: "Fullscreen a viewer. Any other fullscreen viewer is restored first.",
	}, s.handleFullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "unfullscreen_viewer",
		Description: "Restore a fullscreen viewer to its windowed size.",
	}, s.handleUnfullscreen)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "advance",
		Description: "Advance the running presentation, or turn the page of the topmost PDF when no presentation runs.",
	}, s.handleAdvance)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "presentation",
		Description: "Start a presentation by id, jump to a slide by id, or end the running presentation. Exactly one of id, slide_id or end must be given.",
	}, s.handlePresentation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_viewers",
		Description: "List the viewers on the wall in activation order with their frames and state.",
	}, s.handleListViewers)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wall_status",
		Description: "Report the wall size, viewer counts per kind, idle state and presentation position.",
	}, s.handleWallStatus)
}
