package events

import (
	"reflect"
	"sync"
)

// Bus delivers events synchronously to listeners registered for the event's
// concrete type. Listeners run on the caller's goroutine in registration
// order, so a Notify from the tick loop stays on the tick loop.
type Bus struct {
	mu        sync.RWMutex
	listeners map[reflect.Type][]func(any)
	wildcard  []func(any)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[reflect.Type][]func(any))}
}

// Listen registers fn for events of type E.
func Listen[E any](b *Bus, fn func(E)) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[t] = append(b.listeners[t], func(ev any) { fn(ev.(E)) })
}

// ListenAll registers fn for every event.
func (b *Bus) ListenAll(fn func(any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, fn)
}

// Notify delivers ev. A nil bus drops the event.
func (b *Bus) Notify(ev any) {
	if b == nil || ev == nil {
		return
	}
	b.mu.RLock()
	typed := b.listeners[reflect.TypeOf(ev)]
	all := b.wildcard
	b.mu.RUnlock()

	for _, fn := range typed {
		fn(ev)
	}
	for _, fn := range all {
		fn(ev)
	}
}
