package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Daemon is what the dashboard polls and drives. *ipc.Client satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Arrange() error
	Gather(x, y *float64) error
	CloseAll(slides bool) error
	Fullscreen(id string) error
	Unfullscreen(id string) error
	Advance(forwards bool) error
}

// snapshot is one poll of the daemon.
type snapshot struct {
	status  ipc.StatusData
	viewers []viewer.Info
	err     error
}

type tickMsg time.Time

type snapshotMsg snapshot

// actionMsg is sent after a key-triggered command completes.
type actionMsg struct {
	text string
	err  error
}

// clearFlashMsg clears the flash line after a delay.
type clearFlashMsg struct{}

// viewerItem implements list.Item for the viewer list.
type viewerItem struct {
	num  int
	info viewer.Info
}

func (i viewerItem) Title() string {
	flags := ""
	if i.info.Fullscreen {
		flags += " [full]"
	}
	if i.info.Removing {
		flags += " [closing]"
	}
	if i.info.Fatal {
		flags += " [error]"
	}
	name := i.info.Name
	if name == "" {
		name = i.info.Type
	}
	return fmt.Sprintf("%2d %s%s", i.num, name, flags)
}

func (i viewerItem) Description() string {
	f := i.info.Frame
	return fmt.Sprintf("%s • %s • %.0f×%.0f at (%.0f, %.0f)", i.info.Type, i.info.Layer, f.Width, f.Height, f.X, f.Y)
}

func (i viewerItem) FilterValue() string { return i.info.Name + " " + i.info.Type }

// model is the root bubbletea model for the dashboard.
type model struct {
	daemon   Daemon
	interval time.Duration

	activeTab Tab
	list      list.Model
	last      *snapshot
	flash     string

	width  int
	height int
}

func newModel(d Daemon, interval time.Duration) model {
	if interval <= 0 {
		interval = time.Second
	}
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Viewers"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{
		daemon:    d,
		interval:  interval,
		activeTab: TabViewers,
		list:      l,
	}
}

func (m model) poll() tea.Cmd {
	d := m.daemon
	return func() tea.Msg {
		st, err := d.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{status: *st, viewers: st.Viewers}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// run executes a daemon command off the UI goroutine.
func run(text string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{text: text, err: fn()}
	}
}

func (m model) selectedID() string {
	item, ok := m.list.SelectedItem().(viewerItem)
	if !ok {
		return ""
	}
	return item.info.ID
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.contentHeight())
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.poll(), m.tick())

	case snapshotMsg:
		s := snapshot(msg)
		m.last = &s
		if s.err != nil {
			return m, nil
		}
		items := make([]list.Item, 0, len(s.viewers))
		for i, v := range s.viewers {
			items = append(items, viewerItem{num: i + 1, info: v})
		}
		return m, m.list.SetItems(items)

	case actionMsg:
		if msg.err != nil {
			m.flash = "error: " + msg.err.Error()
		} else {
			m.flash = msg.text
		}
		return m, tea.Batch(m.poll(), tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearFlashMsg{} }))

	case clearFlashMsg:
		m.flash = ""
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabViewers
			return m, nil
		case "2":
			m.activeTab = TabWall
			return m, nil
		case "a":
			return m, run("arranged", m.daemon.Arrange)
		case "g":
			return m, run("gathered", func() error { return m.daemon.Gather(nil, nil) })
		case "c":
			return m, run("closing all viewers", func() error { return m.daemon.CloseAll(false) })
		case "n":
			return m, run("advanced", func() error { return m.daemon.Advance(true) })
		case "p":
			return m, run("went back", func() error { return m.daemon.Advance(false) })
		case "f", "u":
			id := m.selectedID()
			if id == "" {
				m.flash = "no viewer selected"
				return m, nil
			}
			if msg.String() == "f" {
				return m, run("fullscreen "+id, func() error { return m.daemon.Fullscreen(id) })
			}
			return m, run("restored "+id, func() error { return m.daemon.Unfullscreen(id) })
		}
	}

	if m.activeTab == TabViewers {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.last, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width, m.flash)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.last != nil && m.last.err != nil:
		content = lipgloss.NewStyle().
			Width(m.width).
			Height(contentHeight).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render(m.last.err.Error())
	case m.activeTab == TabWall:
		content = m.wallView(contentHeight)
	default:
		content = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func (m model) wallView(height int) string {
	if m.last == nil {
		return strings.Join(emptyCanvas(m.width, height), "\n")
	}
	summary := summarizeWall(m.last.status.Display, m.last.viewers)
	lines := renderWallPreview(m.last.status.Display, m.last.viewers, m.width, height-1)
	return summary + "\n" + strings.Join(lines, "\n")
}
