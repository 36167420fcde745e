package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/orchestrator"
	"github.com/1broseidon/viewwall/internal/viewer"
)

type fakeDaemon struct {
	viewers    []viewer.Info
	err        error
	arranged   int
	fullscreen []string
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{Status: orchestrator.Status{
		Display: geom.Size{Width: 1920, Height: 1080},
		Viewers: f.viewers,
	}, DaemonRunning: true}, nil
}
func (f *fakeDaemon) Arrange() error             { f.arranged++; return nil }
func (f *fakeDaemon) Gather(x, y *float64) error { return nil }
func (f *fakeDaemon) CloseAll(slides bool) error { return nil }
func (f *fakeDaemon) Fullscreen(id string) error {
	f.fullscreen = append(f.fullscreen, id)
	return nil
}
func (f *fakeDaemon) Unfullscreen(id string) error { return nil }
func (f *fakeDaemon) Advance(forwards bool) error  { return nil }

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, d *fakeDaemon) model {
	t.Helper()
	m := newModel(d, time.Second)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)
	next, _ = m.Update(m.poll()())
	return next.(model)
}

func TestSnapshotFillsList(t *testing.T) {
	d := &fakeDaemon{viewers: []viewer.Info{
		{ID: "a", Type: viewer.TypeMediaViewer, Name: "Clip"},
		{ID: "b", Type: viewer.TypeLauncher},
	}}
	m := loaded(t, d)

	if len(m.list.Items()) != 2 {
		t.Fatalf("expected 2 list items, got %d", len(m.list.Items()))
	}
	if m.selectedID() != "a" {
		t.Fatalf("expected first viewer selected, got %q", m.selectedID())
	}
	if !strings.Contains(m.View(), "Clip") {
		t.Fatalf("expected viewer name in view")
	}
}

func TestKeysDriveDaemon(t *testing.T) {
	d := &fakeDaemon{viewers: []viewer.Info{{ID: "a", Type: viewer.TypeMediaViewer}}}
	m := loaded(t, d)

	_, cmd := m.Update(key("a"))
	if cmd == nil {
		t.Fatalf("expected arrange command")
	}
	msg := cmd()
	if d.arranged != 1 {
		t.Fatalf("expected arrange sent, got %d", d.arranged)
	}
	next, _ := m.Update(msg)
	if next.(model).flash != "arranged" {
		t.Fatalf("expected flash, got %q", next.(model).flash)
	}

	_, cmd = m.Update(key("f"))
	cmd()
	if len(d.fullscreen) != 1 || d.fullscreen[0] != "a" {
		t.Fatalf("expected fullscreen of selected viewer, got %v", d.fullscreen)
	}
}

func TestFullscreenWithoutSelection(t *testing.T) {
	m := loaded(t, &fakeDaemon{})
	next, cmd := m.Update(key("f"))
	if cmd != nil || next.(model).flash != "no viewer selected" {
		t.Fatalf("expected no-op with flash, got %q", next.(model).flash)
	}
}

func TestDaemonDownShowsError(t *testing.T) {
	m := loaded(t, &fakeDaemon{err: errors.New("failed to connect to daemon")})
	view := m.View()
	if !strings.Contains(view, "daemon not running") || !strings.Contains(view, "failed to connect") {
		t.Fatalf("expected disconnected view, got:\n%s", view)
	}
}

func TestTabSwitching(t *testing.T) {
	m := loaded(t, &fakeDaemon{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if next.(model).activeTab != TabWall {
		t.Fatalf("expected wall tab, got %v", next.(model).activeTab)
	}
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	if next.(model).activeTab != TabViewers {
		t.Fatalf("expected wrap to viewers tab, got %v", next.(model).activeTab)
	}
}

func TestRenderWallPreview(t *testing.T) {
	display := geom.Size{Width: 1920, Height: 1080}
	viewers := []viewer.Info{{Frame: geom.Rect{X: 0, Y: 0, Width: 960, Height: 1080}}}
	lines := renderWallPreview(display, viewers, 40, 12)

	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "╔") || !strings.HasSuffix(lines[11], "╝") {
		t.Fatalf("expected border, got %q / %q", lines[0], lines[11])
	}
	if !strings.Contains(lines[1], "┌") {
		t.Fatalf("expected frame corner on first inner row, got %q", lines[1])
	}
	if !strings.Contains(strings.Join(lines, "\n"), "1") {
		t.Fatalf("expected frame number drawn")
	}

	if got := renderWallPreview(geom.Size{}, viewers, 10, 4); strings.TrimSpace(strings.Join(got, "")) != "" {
		t.Fatalf("expected empty canvas without a display")
	}
}

func TestSummarizeWall(t *testing.T) {
	display := geom.Size{Width: 1920, Height: 1080}
	if got := summarizeWall(display, nil); !strings.Contains(got, "empty") {
		t.Fatalf("expected empty summary, got %q", got)
	}
	got := summarizeWall(display, []viewer.Info{
		{Frame: geom.Rect{Width: 400}},
		{Frame: geom.Rect{Width: 800}},
	})
	if !strings.Contains(got, "2 viewers") || !strings.Contains(got, "400-800") {
		t.Fatalf("expected range summary, got %q", got)
	}
}
