package events

import "testing"

func TestBusDeliversByType(t *testing.T) {
	b := NewBus()
	var added []string
	removed := 0
	Listen(b, func(e ViewerAdded) { added = append(added, e.ViewerID) })
	Listen(b, func(ViewerRemoved) { removed++ })

	b.Notify(ViewerAdded{ViewerID: "a"})
	b.Notify(ViewerRemoved{ViewerID: "a"})
	b.Notify(ViewerAdded{ViewerID: "b"})

	if len(added) != 2 || added[1] != "b" {
		t.Fatalf("expected added=[a b], got %v", added)
	}
	if removed != 1 {
		t.Fatalf("expected removed=1, got %d", removed)
	}
}

func TestBusListenAllAndNil(t *testing.T) {
	b := NewBus()
	n := 0
	b.ListenAll(func(any) { n++ })
	b.Notify(ViewerSetChanged{})
	b.Notify(Arrange{})
	if n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}

	var nilBus *Bus
	nilBus.Notify(Arrange{})
}

func TestBusListenerMayNotify(t *testing.T) {
	b := NewBus()
	got := 0
	Listen(b, func(ViewerRemoved) { b.Notify(ViewerSetChanged{}) })
	Listen(b, func(ViewerSetChanged) { got++ })
	b.Notify(ViewerRemoved{})
	if got != 1 {
		t.Fatalf("expected nested notify to deliver, got %d", got)
	}
}
