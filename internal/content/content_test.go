package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/viewwall/internal/geom"
)

func TestLoadCatalogYAMLIndexesTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `
nodes:
  - id: 10
    uid: deck-a
    name: Deck A
    type: presentation
    resources:
      background_media:
        path: /media/bg.png
        type: image
        width: 1920
        height: 1080
    children:
      - id: 11
        type: slide
        properties:
          layout_option_save_value: fill
      - id: 12
        type: slide-grid
  - id: 20
    type: pinboard
    references:
      pinboard_items: [11, 12, 99]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	slide := cat.Lookup(11)
	if slide == nil {
		t.Fatalf("expected slide 11 to be indexed")
	}
	if slide.ParentID != 10 {
		t.Fatalf("expected ParentID=10, got %d", slide.ParentID)
	}
	if got := cat.Parent(slide); got == nil || got.UID != "deck-a" {
		t.Fatalf("expected parent deck-a, got %+v", got)
	}
	if slide.Prop(KeyLayoutOption) != "fill" {
		t.Fatalf("expected layout option fill, got %q", slide.Prop(KeyLayoutOption))
	}
	if cat.LookupUID("deck-a") == nil {
		t.Fatalf("expected uid lookup to succeed")
	}

	refs := cat.References(cat.Lookup(20), KeyPinboardItems)
	if len(refs) != 2 {
		t.Fatalf("expected 2 resolved references, got %d", len(refs))
	}
	if len(cat.All()) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(cat.All()))
	}
}

func TestLoadCatalogYAMLRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("nodes:\n  - id: 1\n    colour: red\n"), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadCatalogTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	data := `
[[nodes]]
id = 5
name = "Lobby loop"
type = "media"

[nodes.resources.media]
path = "/media/loop.mp4"
type = "video"
width = 1280.0
height = 720.0
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	m := cat.Lookup(5)
	if m == nil {
		t.Fatalf("expected node 5")
	}
	if m.Media().Type != ResourceVideo {
		t.Fatalf("expected video resource, got %q", m.Media().Type)
	}
	if a := m.Media().Aspect(); a < 1.77 || a > 1.78 {
		t.Fatalf("expected aspect ~1.777, got %f", a)
	}
}

func TestResourceEqualityAndCrop(t *testing.T) {
	a := Resource{Path: "/a.png", Type: ResourceImage, Width: 100, Height: 50}
	b := a
	b.Crop = &geom.Rect{X: 0, Y: 0, Width: 1, Height: 1}
	if !a.Equal(b) {
		t.Fatalf("expected nil crop to equal full-frame crop")
	}
	if !a.SameFrame(b) {
		t.Fatalf("expected same frame")
	}

	c := a
	c.Crop = &geom.Rect{X: 0, Y: 0, Width: 0.5, Height: 1}
	if a.SameFrame(c) {
		t.Fatalf("expected different crop to differ")
	}
	if got := c.CroppedAspect(); got != 1 {
		t.Fatalf("expected cropped aspect 1, got %f", got)
	}
}

func TestResourceEmpty(t *testing.T) {
	if !(Resource{}).Empty() {
		t.Fatalf("expected zero resource to be empty")
	}
	if (Resource{Type: ResourceStream}).Empty() {
		t.Fatalf("expected stream without path to be non-empty")
	}
}

func TestFileResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "here.png"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := FileResolver{Root: dir}

	if !r.Exists(Resource{Path: "here.png", Type: ResourceImage}) {
		t.Fatalf("expected relative file to resolve")
	}
	if r.Exists(Resource{Path: "missing.png", Type: ResourceImage}) {
		t.Fatalf("expected missing file to fail")
	}
	if !r.Exists(Resource{Path: "https://example.com", Type: ResourceWeb}) {
		t.Fatalf("expected web resource to skip the disk check")
	}
}

func TestNewErrorModel(t *testing.T) {
	failed := &Model{Name: "Tour video"}
	failed.SetResource(KeyMedia, Resource{Path: "/gone.mp4", Type: ResourceVideo})

	m := NewErrorModel(failed, "not found")
	if m.Prop("media_path") != "/gone.mp4" {
		t.Fatalf("expected media_path=/gone.mp4, got %q", m.Prop("media_path"))
	}
	if m.Prop("media_name") != "Tour video" {
		t.Fatalf("expected media_name, got %q", m.Prop("media_name"))
	}
	if m.Prop("error") != "not found" {
		t.Fatalf("expected error message, got %q", m.Prop("error"))
	}
}
