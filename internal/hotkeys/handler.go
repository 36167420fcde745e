package hotkeys

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/platform"
	"github.com/1broseidon/viewwall/internal/viewer"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Poster queues an event for the orchestrator.
type Poster func(ev any) error

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	post Poster
}

// Binding pairs a key chord with the event it posts.
type Binding struct {
	Name  string
	Keys  string
	Event any
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. It returns an error when the
// backend has no X11 connection to grab keys on.
func NewHandler(backend platform.Backend, post Poster) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys need an X11 backend")
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:   xu,
		root: accessor.RootWindow(),
		post: post,
	}, nil
}

// Bindings maps the configured chords to wall actions. Empty chords are
// skipped.
func Bindings(h config.Hotkeys) []Binding {
	all := []Binding{
		{Name: "arrange", Keys: h.Arrange, Event: events.Arrange{}},
		{Name: "gather", Keys: h.Gather, Event: events.Gather{Origin: viewer.NoPosition}},
		{Name: "close_all", Keys: h.CloseAll, Event: events.CloseAll{}},
		{Name: "advance", Keys: h.Advance, Event: events.Advance{Forwards: true}},
		{Name: "back", Keys: h.Back, Event: events.Advance{Forwards: false}},
	}
	out := all[:0]
	for _, b := range all {
		if strings.TrimSpace(b.Keys) != "" {
			out = append(out, b)
		}
	}
	return out
}

// RegisterAll grabs every binding. A chord that fails to grab is logged
// and skipped; the count of registered bindings is returned.
func (h *Handler) RegisterAll(bindings []Binding) int {
	n := 0
	for _, b := range bindings {
		if err := h.Register(b); err != nil {
			log.Printf("Warning: failed to register %s hotkey %q: %v", b.Name, b.Keys, err)
			continue
		}
		log.Printf("Registered %s hotkey: %s", b.Name, b.Keys)
		n++
	}
	return n
}

// Register grabs one binding.
func (h *Handler) Register(b Binding) error {
	return h.RegisterFunc(b.Keys, func() {
		if err := h.post(b.Event); err != nil {
			log.Printf("Hotkey %s dropped: %v", b.Name, err)
		}
	})
}

// RegisterSelf grabs keys to start this executable with args, e.g. the
// palette subcommand. The child is not waited on by the caller.
func (h *Handler) RegisterSelf(name, keys string, args ...string) error {
	if strings.TrimSpace(keys) == "" {
		return nil
	}
	return h.RegisterFunc(keys, func() {
		exe, err := os.Executable()
		if err != nil {
			log.Printf("%s: failed to find executable: %v", name, err)
			return
		}
		cmd := exec.Command(exe, args...)
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			log.Printf("%s: failed to launch: %v", name, err)
			return
		}
		go cmd.Wait()
	})
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
