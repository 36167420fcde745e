package platform

import "testing"

func TestWallBoundsSpansDisplays(t *testing.T) {
	displays := []Display{
		{ID: 0, Bounds: Rect{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Bounds: Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}},
		{ID: 2, Bounds: Rect{X: 0, Y: 1080, Width: 1920, Height: 1080}},
	}
	got, err := WallBounds(displays)
	if err != nil {
		t.Fatalf("WallBounds: %v", err)
	}
	if got != (Rect{Width: 3840, Height: 2160}) {
		t.Fatalf("expected 3840x2160, got %+v", got)
	}

	if _, err := WallBounds(nil); err == nil {
		t.Fatalf("expected error for no displays")
	}
}

func TestStaticBackend(t *testing.T) {
	b := NewStatic(1280, 720)
	d, err := b.PrimaryDisplay()
	if err != nil {
		t.Fatalf("PrimaryDisplay: %v", err)
	}
	if d.Bounds.Width != 1280 || d.Usable.Height != 720 {
		t.Fatalf("expected 1280x720, got %+v", d)
	}

	list, _ := b.Displays()
	list[0].Name = "changed"
	again, _ := b.Displays()
	if again[0].Name != "static" {
		t.Fatalf("expected Displays to return a copy")
	}

	if _, err := (Static{}).PrimaryDisplay(); err == nil {
		t.Fatalf("expected error from empty backend")
	}
}
