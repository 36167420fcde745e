package hotkeys

import (
	"testing"

	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/events"
	"github.com/1broseidon/viewwall/internal/platform"
)

func TestBindingsFromDefaults(t *testing.T) {
	b := Bindings(config.DefaultConfig().Hotkeys)
	if len(b) != 5 {
		t.Fatalf("expected 5 bindings, got %d", len(b))
	}
	if b[3].Name != "advance" || b[3].Event != (events.Advance{Forwards: true}) {
		t.Fatalf("expected advance forwards binding, got %+v", b[3])
	}
	if b[4].Event != (events.Advance{Forwards: false}) {
		t.Fatalf("expected back binding to go backwards, got %+v", b[4])
	}
}

func TestBindingsSkipEmptyChords(t *testing.T) {
	h := config.Hotkeys{Arrange: "Mod4-a", Gather: "  "}
	b := Bindings(h)
	if len(b) != 1 || b[0].Name != "arrange" {
		t.Fatalf("expected only arrange, got %+v", b)
	}
}

func TestNewHandlerNeedsX11(t *testing.T) {
	if _, err := NewHandler(platform.NewStatic(100, 100), func(any) error { return nil }); err == nil {
		t.Fatalf("expected error for a backend without X11")
	}
}
