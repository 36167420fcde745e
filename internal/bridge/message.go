package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/viewwall/internal/ipc"
)

// Message is a command published to the wall's queue. Type names an IPC
// command ("launch", "close_all", ...) and Payload is that command's payload.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Reply is published to a delivery's reply_to queue.
type Reply struct {
	ID       string        `json:"id"`
	Response *ipc.Response `json:"response"`
}

// allowed lists the commands remote publishers may send. Reload, exit and
// status reads stay local.
var allowed = map[ipc.CommandType]bool{
	ipc.CommandLaunch:       true,
	ipc.CommandCloseAll:     true,
	ipc.CommandArrange:      true,
	ipc.CommandGather:       true,
	ipc.CommandFullscreen:   true,
	ipc.CommandUnfullscreen: true,
	ipc.CommandAdvance:      true,
	ipc.CommandPDFPage:      true,
	ipc.CommandPresentation: true,
	ipc.CommandListViewers:  true,
}

// ParseMessage decodes a delivery body.
func ParseMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("invalid message: %w", err)
	}
	if strings.TrimSpace(msg.Type) == "" {
		return Message{}, fmt.Errorf("message type is required")
	}
	return msg, nil
}

// Request maps the message onto an IPC request.
func (m Message) Request() (*ipc.Request, error) {
	cmd := ipc.CommandType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(m.Type), "-", "_")))
	if !allowed[cmd] {
		return nil, fmt.Errorf("command %q is not accepted over the bridge", m.Type)
	}
	return &ipc.Request{Command: cmd, Payload: m.Payload}, nil
}
