package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without choosing.
var ErrCancelled = errors.New("palette cancelled")

// Item is one row of the palette.
type Item struct {
	Label    string
	Action   string
	Icon     string
	Meta     string // extra search keywords, rofi only
	IsHeader bool
	IsActive bool
}

// SelectResult is the chosen row and the launcher's exit code.
type SelectResult struct {
	Item     Item
	ExitCode int
}

// Backend shows items and returns the selection.
type Backend interface {
	Show(prompt string, items []Item, message string) (SelectResult, error)
	Name() string
}

var knownBackends = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// DetectBackend returns the first launcher found in PATH.
func DetectBackend() (string, error) {
	for _, name := range knownBackends {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no palette backend found in PATH (looked for: %s)", strings.Join(knownBackends, ", "))
}

// NewBackend creates a backend by name. Empty or "auto" detects one.
func NewBackend(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := DetectBackend()
		if err != nil {
			return nil, err
		}
		name = detected
	}

	var b *launcher
	switch name {
	case "rofi":
		b = &launcher{command: name, kind: kindRofi}
	case "fuzzel":
		b = &launcher{command: name, kind: kindFuzzel}
	case "wofi":
		b = &launcher{command: name, kind: kindWofi}
	case "dmenu":
		b = &launcher{command: name, kind: kindDmenu}
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, %s)", name, strings.Join(knownBackends, ", "))
	}
	if _, err := exec.LookPath(b.command); err != nil {
		return nil, fmt.Errorf("palette backend %q not found in PATH", b.command)
	}
	return b, nil
}
