package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/viewwall/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    10 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// send marshals payload into a request for cmd and decodes the response
// data into out when out is non-nil.
func (c *Client) send(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.send(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.send(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListViewers retrieves every live viewer in activation order.
func (c *Client) ListViewers() (*ViewersData, error) {
	var data ViewersData
	if err := c.send(CommandListViewers, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetDisplays retrieves display information
func (c *Client) GetDisplays() (*DisplaysData, error) {
	var data DisplaysData
	if err := c.send(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Launch opens a viewer.
func (c *Client) Launch(p LaunchPayload) (*LaunchData, error) {
	var data LaunchData
	if err := c.send(CommandLaunch, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CloseAll closes every viewer, keeping slide content unless slides is set.
func (c *Client) CloseAll(slides bool) error {
	return c.send(CommandCloseAll, CloseAllPayload{CloseSlideContent: slides}, nil)
}

// Arrange packs the normal layer.
func (c *Client) Arrange() error {
	return c.send(CommandArrange, nil, nil)
}

// Gather pulls viewers toward a point. Nil coordinates mean the center of
// the normal layer.
func (c *Client) Gather(x, y *float64) error {
	return c.send(CommandGather, GatherPayload{X: x, Y: y}, nil)
}

// Fullscreen fullscreens a viewer by id.
func (c *Client) Fullscreen(id string) error {
	return c.send(CommandFullscreen, ViewerPayload{ViewerID: id}, nil)
}

// Unfullscreen restores a viewer by id.
func (c *Client) Unfullscreen(id string) error {
	return c.send(CommandUnfullscreen, ViewerPayload{ViewerID: id}, nil)
}

// Advance moves the PDF page or presentation slide.
func (c *Client) Advance(forwards bool) error {
	return c.send(CommandAdvance, DirectionPayload{Forwards: forwards}, nil)
}

// PDFPage turns the page of the active PDF only.
func (c *Client) PDFPage(forwards bool) error {
	return c.send(CommandPDFPage, DirectionPayload{Forwards: forwards}, nil)
}

// Presentation starts, jumps within or ends a presentation.
func (c *Client) Presentation(p PresentationPayload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return c.send(CommandPresentation, p, nil)
}

// Exit closes every viewer and stops the daemon.
func (c *Client) Exit() error {
	return c.send(CommandExit, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
