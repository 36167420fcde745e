package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/viewer"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleLaunchViewer(_ context.Context, _ *mcpsdk.CallToolRequest, args LaunchViewerInput) (*mcpsdk.CallToolResult, LaunchViewerOutput, error) {
	p := ipc.LaunchPayload{
		ViewType:   args.ViewType,
		Layer:      args.Layer,
		X:          args.X,
		Y:          args.Y,
		Width:      args.Width,
		Fullscreen: args.Fullscreen,
		ContentID:  args.ContentID,
		MediaPath:  args.MediaPath,
		UserString: args.UserString,
		Page:       args.Page,
		Loop:       args.Loop,
	}
	data, err := s.daemon.Launch(p)
	if err != nil {
		return nil, LaunchViewerOutput{}, fmt.Errorf("launch failed: %w", err)
	}
	return nil, LaunchViewerOutput{ViewerID: data.ViewerID, ViewType: data.ViewType}, nil
}

func (s *Server) handleCloseAll(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseAllInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.CloseAll(args.CloseSlideContent); err != nil {
		return nil, nil, fmt.Errorf("close_all failed: %w", err)
	}
	return textResult("Closing all viewers"), nil, nil
}

func (s *Server) handleArrange(_ context.Context, _ *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.Arrange(); err != nil {
		return nil, nil, fmt.Errorf("arrange failed: %w", err)
	}
	return textResult("Arranged viewers"), nil, nil
}

func (s *Server) handleGather(_ context.Context, _ *mcpsdk.CallToolRequest, args GatherInput) (*mcpsdk.CallToolResult, any, error) {
	if (args.X == nil) != (args.Y == nil) {
		return nil, nil, fmt.Errorf("gather needs both x and y, or neither")
	}
	if err := s.daemon.Gather(args.X, args.Y); err != nil {
		return nil, nil, fmt.Errorf("gather failed: %w", err)
	}
	if args.X == nil {
		return textResult("Gathered viewers at the center"), nil, nil
	}
	return textResult("Gathered viewers at (%.0f, %.0f)", *args.X, *args.Y), nil, nil
}

func (s *Server) handleFullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewerInput) (*mcpsdk.CallToolResult, any, error) {
	if args.ViewerID == "" {
		return nil, nil, fmt.Errorf("viewer_id is required")
	}
	if err := s.daemon.Fullscreen(args.ViewerID); err != nil {
		return nil, nil, fmt.Errorf("fullscreen %s failed: %w", args.ViewerID, err)
	}
	return textResult("Viewer %s is fullscreen", args.ViewerID), nil, nil
}

func (s *Server) handleUnfullscreen(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewerInput) (*mcpsdk.CallToolResult, any, error) {
	if args.ViewerID == "" {
		return nil, nil, fmt.Errorf("viewer_id is required")
	}
	if err := s.daemon.Unfullscreen(args.ViewerID); err != nil {
		return nil, nil, fmt.Errorf("unfullscreen %s failed: %w", args.ViewerID, err)
	}
	return textResult("Viewer %s restored", args.ViewerID), nil, nil
}

func (s *Server) handleAdvance(_ context.Context, _ *mcpsdk.CallToolRequest, args AdvanceInput) (*mcpsdk.CallToolResult, any, error) {
	if err := s.daemon.Advance(!args.Back); err != nil {
		return nil, nil, fmt.Errorf("advance failed: %w", err)
	}
	if args.Back {
		return textResult("Went back"), nil, nil
	}
	return textResult("Advanced"), nil, nil
}

func (s *Server) handlePresentation(_ context.Context, _ *mcpsdk.CallToolRequest, args PresentationInput) (*mcpsdk.CallToolResult, any, error) {
	p := ipc.PresentationPayload{ID: args.ID, SlideID: args.SlideID, End: args.End}
	if err := s.daemon.Presentation(p); err != nil {
		return nil, nil, fmt.Errorf("presentation failed: %w", err)
	}
	switch {
	case args.End:
		return textResult("Presentation ended"), nil, nil
	case args.ID != 0:
		return textResult("Started presentation %d", args.ID), nil, nil
	default:
		return textResult("Moved to slide %d", args.SlideID), nil, nil
	}
}

func (s *Server) handleListViewers(_ context.Context, _ *mcpsdk.CallToolRequest, args ListViewersInput) (*mcpsdk.CallToolResult, ListViewersOutput, error) {
	data, err := s.daemon.ListViewers()
	if err != nil {
		return nil, ListViewersOutput{}, fmt.Errorf("list_viewers failed: %w", err)
	}
	out := ListViewersOutput{Viewers: make([]viewer.Info, 0, len(data.Viewers))}
	for _, v := range data.Viewers {
		if args.ViewType != "" && v.Type != args.ViewType {
			continue
		}
		out.Viewers = append(out.Viewers, v)
	}
	return nil, out, nil
}

func (s *Server) handleWallStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ WallStatusInput) (*mcpsdk.CallToolResult, WallStatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, WallStatusOutput{}, fmt.Errorf("wall_status failed: %w", err)
	}
	out := WallStatusOutput{
		Width:         st.Display.Width,
		Height:        st.Display.Height,
		Live:          len(st.Viewers),
		CountByType:   st.CountByType,
		Idle:          st.Idle,
		Presentation:  st.Presentation.PresentationID,
		Slide:         st.Presentation.SlideID,
		UptimeSeconds: st.UptimeSeconds,
	}
	if out.CountByType == nil {
		out.CountByType = map[string]int{}
	}
	return nil, out, nil
}
