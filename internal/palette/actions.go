package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// Action identifiers. Parameterised actions carry an id after a colon.
const (
	ActionArrange      = "arrange"
	ActionGather       = "gather"
	ActionCloseAll     = "close_all"
	ActionAdvance      = "advance"
	ActionBack         = "back"
	ActionEndPresent   = "end_presentation"
	ActionFullscreen   = "fullscreen"
	ActionUnfullscreen = "unfullscreen"
	ActionOpen         = "open"
	ActionPresent      = "present"
)

// Daemon is the subset of the IPC client the palette drives.
type Daemon interface {
	Arrange() error
	Gather(x, y *float64) error
	CloseAll(slides bool) error
	Advance(forwards bool) error
	Fullscreen(id string) error
	Unfullscreen(id string) error
	Launch(p ipc.LaunchPayload) (*ipc.LaunchData, error)
	Presentation(p ipc.PresentationPayload) error
}

var _ Daemon = (*ipc.Client)(nil)

// BuildItems lays out the palette: wall actions, then live viewers, then
// openable catalog content. Viewers being removed are left out.
func BuildItems(viewers []viewer.Info, catalog []*content.Model) []Item {
	items := []Item{
		{Label: "Wall", IsHeader: true},
		{Label: "Arrange viewers", Action: ActionArrange, Icon: "view-grid"},
		{Label: "Gather viewers", Action: ActionGather, Icon: "view-restore"},
		{Label: "Next page or slide", Action: ActionAdvance, Icon: "go-next"},
		{Label: "Previous page or slide", Action: ActionBack, Icon: "go-previous"},
		{Label: "Close all viewers", Action: ActionCloseAll, Icon: "window-close"},
	}

	var live []Item
	for _, v := range viewers {
		if v.Removing {
			continue
		}
		name := v.Name
		if name == "" {
			name = v.Type
		}
		if v.Fullscreen {
			live = append(live, Item{
				Label:    "Restore " + name,
				Action:   ActionUnfullscreen + ":" + v.ID,
				Icon:     "view-restore",
				Meta:     v.Type + " " + v.ID,
				IsActive: true,
			})
			continue
		}
		live = append(live, Item{
			Label:  "Fullscreen " + name,
			Action: ActionFullscreen + ":" + v.ID,
			Icon:   "view-fullscreen",
			Meta:   v.Type + " " + v.ID,
		})
	}
	if len(live) > 0 {
		items = append(items, Item{Label: "Viewers", IsHeader: true})
		items = append(items, live...)
	}

	var open []Item
	presenting := false
	for _, m := range catalog {
		if m == nil || m.ID == 0 {
			continue
		}
		label := m.Name
		if label == "" {
			label = fmt.Sprintf("#%d", m.ID)
		}
		switch m.Type {
		case content.TypePresentation:
			presenting = true
			open = append(open, Item{
				Label:  "Present " + label,
				Action: ActionPresent + ":" + strconv.Itoa(m.ID),
				Icon:   "x-office-presentation",
				Meta:   m.Type,
			})
		case content.TypeSlide:
			// Slides are reached through their presentation.
		default:
			if m.Media().Empty() {
				continue
			}
			open = append(open, Item{
				Label:  "Open " + label,
				Action: ActionOpen + ":" + strconv.Itoa(m.ID),
				Icon:   "document-open",
				Meta:   m.Type + " " + m.Media().Path,
			})
		}
	}
	if presenting {
		open = append(open, Item{Label: "End presentation", Action: ActionEndPresent, Icon: "media-playback-stop"})
	}
	if len(open) > 0 {
		items = append(items, Item{Label: "Content", IsHeader: true})
		items = append(items, open...)
	}
	return items
}

// Dispatch performs the action behind a selected item.
func Dispatch(action string, d Daemon) error {
	name, arg, _ := strings.Cut(action, ":")
	switch name {
	case ActionArrange:
		return d.Arrange()
	case ActionGather:
		return d.Gather(nil, nil)
	case ActionCloseAll:
		return d.CloseAll(false)
	case ActionAdvance:
		return d.Advance(true)
	case ActionBack:
		return d.Advance(false)
	case ActionEndPresent:
		return d.Presentation(ipc.PresentationPayload{End: true})
	case ActionFullscreen, ActionUnfullscreen:
		if arg == "" {
			return fmt.Errorf("palette: %s needs a viewer id", name)
		}
		if name == ActionFullscreen {
			return d.Fullscreen(arg)
		}
		return d.Unfullscreen(arg)
	case ActionOpen, ActionPresent:
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return fmt.Errorf("palette: %s needs a content id, got %q", name, arg)
		}
		if name == ActionPresent {
			return d.Presentation(ipc.PresentationPayload{ID: id})
		}
		_, err = d.Launch(ipc.LaunchPayload{ContentID: id})
		return err
	case "":
		return errors.New("palette: empty action")
	default:
		return fmt.Errorf("palette: unknown action %q", action)
	}
}

// Run shows the palette once and dispatches the choice. A cancelled palette
// is not an error.
func Run(b Backend, d Daemon, viewers []viewer.Info, catalog []*content.Model) error {
	items := BuildItems(viewers, catalog)
	msg := fmt.Sprintf("%d viewers on the wall", countLive(viewers))
	res, err := b.Show("viewwall", items, msg)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	return Dispatch(res.Item.Action, d)
}

func countLive(viewers []viewer.Info) int {
	n := 0
	for _, v := range viewers {
		if !v.Removing {
			n++
		}
	}
	return n
}
