package main

import (
	"strings"
	"testing"

	"github.com/1broseidon/viewwall/internal/config"
)

func TestParseLaunchArgs(t *testing.T) {
	p, err := parseLaunchArgs([]string{"--type", "launcher", "--layer", "top", "--x", "0", "--width", "320", "--volume", "0"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ViewType != "launcher" || p.Layer != "top" || p.Width != 320 {
		t.Fatalf("expected launcher on top at 320 wide, got %+v", p)
	}
	if p.X == nil || *p.X != 0 || p.Y != nil {
		t.Fatalf("expected explicit x=0 and no y, got %v %v", p.X, p.Y)
	}
	if p.Volume == nil || *p.Volume != 0 {
		t.Fatalf("expected volume 0 kept, got %v", p.Volume)
	}
}

func TestParseLaunchArgsUserString(t *testing.T) {
	p, err := parseLaunchArgs([]string{"media:/srv/a.mp4 ! loop:1"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.UserString != "media:/srv/a.mp4 ! loop:1" || p.Volume != nil {
		t.Fatalf("expected positional user string, got %+v", p)
	}

	if _, err := parseLaunchArgs([]string{"--string", "a", "b"}); err == nil {
		t.Fatalf("expected conflict between --string and positional")
	}
	if _, err := parseLaunchArgs([]string{"a", "b"}); err == nil {
		t.Fatalf("expected too many arguments")
	}
	if _, err := parseLaunchArgs([]string{"--x", "left"}); err == nil {
		t.Fatalf("expected bad float to fail")
	}
}

func TestFormatSource(t *testing.T) {
	got := formatSource(config.Source{Kind: config.SourceFile, File: "/etc/vw.yaml", Line: 3, Column: 5})
	if got != "file:/etc/vw.yaml:3:5" {
		t.Fatalf("expected file position, got %q", got)
	}
	if got := formatSource(config.Source{Kind: config.SourceDefault}); got != "default" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestCatalogRoot(t *testing.T) {
	cfg := config.DefaultConfig()
	if catalogRoot(cfg) != "" {
		t.Fatalf("expected empty root without catalog")
	}
	cfg.Content.Catalog = "/srv/wall/catalog.yaml"
	if !strings.HasSuffix(catalogRoot(cfg), "/srv/wall") {
		t.Fatalf("expected catalog dir, got %q", catalogRoot(cfg))
	}
}
