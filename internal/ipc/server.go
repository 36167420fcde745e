package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/daemon"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/orchestrator"
	"github.com/1broseidon/viewwall/internal/platform"
	"github.com/1broseidon/viewwall/internal/runtimepath"
	"github.com/1broseidon/viewwall/internal/telemetry"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// commandTimeout bounds how long a request waits on the daemon loop.
const commandTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	loadConfig   func() (*config.Config, error)
	loop         *daemon.Loop
	backend      platform.Backend
	metrics      *telemetry.Metrics
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. backend may be nil when the daemon
// runs without a display server.
func NewServer(cfg *config.Config, loop *daemon.Loop, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		loadConfig: config.Load,
		loop:       loop,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// SetConfigLoader replaces the function RELOAD reads the config with.
func (s *Server) SetConfigLoader(fn func() (*config.Config, error)) {
	if fn != nil {
		s.loadConfig = fn
	}
}

// SetMetrics enables command counters.
func (s *Server) SetMetrics(m *telemetry.Metrics) { s.metrics = m }

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.Handle("ipc", req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// Handle processes a request arriving from source and counts it.
func (s *Server) Handle(source string, req *Request) *Response {
	resp := s.handleCommand(req)
	if s.metrics != nil {
		var cmdErr error
		if resp.Status != "OK" {
			cmdErr = errors.New(resp.Error)
		}
		s.metrics.Command(source, string(req.Command), cmdErr)
	}
	return resp
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandListViewers:
		return s.handleListViewers()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandLaunch:
		return s.handleLaunch(req.Payload)
	case CommandCloseAll:
		return s.handleCloseAll(req.Payload)
	case CommandArrange:
		return s.run(func(c *orchestrator.Controller) error {
			c.ArrangeViewers()
			return nil
		})
	case CommandGather:
		return s.handleGather(req.Payload)
	case CommandFullscreen:
		return s.handleViewer(req.Payload, (*orchestrator.Controller).FullscreenByID)
	case CommandUnfullscreen:
		return s.handleViewer(req.Payload, (*orchestrator.Controller).UnfullscreenByID)
	case CommandAdvance:
		return s.handleDirection(req.Payload, func(c *orchestrator.Controller, fwd bool) { c.Advance(fwd) })
	case CommandPDFPage:
		return s.handleDirection(req.Payload, func(c *orchestrator.Controller, fwd bool) { c.AdvancePDF(fwd) })
	case CommandPresentation:
		return s.handlePresentation(req.Payload)
	case CommandExit:
		return s.run(func(c *orchestrator.Controller) error {
			c.Exit()
			return nil
		})
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// run executes a user command on the daemon loop.
func (s *Server) run(fn func(*orchestrator.Controller) error) *Response {
	ctx, cancel := s.commandContext()
	defer cancel()
	if err := s.loop.Command(ctx, fn); err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := s.loadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	ctx, cancel := s.commandContext()
	defer cancel()
	st, err := daemon.Query(ctx, s.loop, (*orchestrator.Controller).Snapshot)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read status: %v", err))
	}

	status := StatusData{
		Status:        st,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleListViewers() *Response {
	ctx, cancel := s.commandContext()
	defer cancel()
	list, err := daemon.Query(ctx, s.loop, (*orchestrator.Controller).List)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list viewers: %v", err))
	}
	resp, _ := NewOKResponse(ViewersData{Viewers: list})
	return resp
}

// handleGetDisplays returns the physical displays and the wall surface
func (s *Server) handleGetDisplays() *Response {
	ctx, cancel := s.commandContext()
	defer cancel()
	size, err := daemon.Query(ctx, s.loop, (*orchestrator.Controller).Display)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read display: %v", err))
	}
	wall := DisplayInfo{Name: "wall", Width: int(size.Width), Height: int(size.Height)}

	data := DisplaysData{Wall: wall}
	if s.backend == nil {
		data.Displays = []DisplayInfo{wall}
		resp, _ := NewOKResponse(data)
		return resp
	}

	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}
	data.Displays = make([]DisplayInfo, len(displays))
	for i, d := range displays {
		data.Displays[i] = DisplayInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.X,
			Y:      d.Bounds.Y,
			Width:  d.Bounds.Width,
			Height: d.Bounds.Height,
		}
	}

	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleLaunch(payload json.RawMessage) *Response {
	var p LaunchPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid launch payload: %v", err))
	}

	var data LaunchData
	resp := s.run(func(c *orchestrator.Controller) error {
		ev := events.LaunchViewer{UserString: p.UserString, Origin: viewer.NoPosition}
		if p.UserString == "" {
			req, err := p.BuildRequest(c.Catalog().Lookup)
			if err != nil {
				return err
			}
			ev.Request = req
		}
		v, err := c.Launch(ev)
		if err != nil {
			return err
		}
		if v != nil {
			data = LaunchData{ViewerID: v.ID(), ViewType: v.Type()}
		}
		return nil
	})
	if resp.Status != "OK" {
		return resp
	}
	resp, _ = NewOKResponse(data)
	return resp
}

func (s *Server) handleCloseAll(payload json.RawMessage) *Response {
	var p CloseAllPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
	}
	return s.run(func(c *orchestrator.Controller) error {
		c.CloseAll(p.CloseSlideContent)
		return nil
	})
}

func (s *Server) handleGather(payload json.RawMessage) *Response {
	var p GatherPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid gather payload: %v", err))
	}
	return s.run(func(c *orchestrator.Controller) error {
		lb := c.LayerBounds(viewer.LayerNormal)
		cx, cy := lb.Center()
		at := geom.Vec3{X: cx, Y: cy}
		if p.X != nil {
			at.X = *p.X
		}
		if p.Y != nil {
			at.Y = *p.Y
		}
		c.GatherViewers(at)
		return nil
	})
}

func (s *Server) handleViewer(payload json.RawMessage, fn func(*orchestrator.Controller, string) error) *Response {
	var p ViewerPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid viewer payload: %v", err))
	}
	if p.ViewerID == "" {
		return NewErrorResponse("viewer_id is required")
	}
	return s.run(func(c *orchestrator.Controller) error {
		return fn(c, p.ViewerID)
	})
}

func (s *Server) handleDirection(payload json.RawMessage, fn func(*orchestrator.Controller, bool)) *Response {
	p := DirectionPayload{Forwards: true}
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid direction payload: %v", err))
	}
	return s.run(func(c *orchestrator.Controller) error {
		fn(c, p.Forwards)
		return nil
	})
}

func (s *Server) handlePresentation(payload json.RawMessage) *Response {
	var p PresentationPayload
	if err := decodePayload(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid presentation payload: %v", err))
	}
	if err := p.Validate(); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.run(func(c *orchestrator.Controller) error {
		switch {
		case p.End:
			c.EndPresentation()
		case p.ID != 0:
			return c.StartPresentationByID(p.ID, p.ShowController)
		default:
			if c.Catalog().Lookup(p.SlideID) == nil {
				return fmt.Errorf("slide %d is not in the catalog", p.SlideID)
			}
			c.SetPresentationSlide(p.SlideID)
		}
		return nil
	})
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
