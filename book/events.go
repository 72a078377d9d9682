package book

import (
	"sync"
)

// Event is delivered to session listeners.
type Event struct {
	Kind EventKind
	// Facet is set for EventKindReady.
	Facet Facet
	// Chapter is set for EventKindChapterDisplayed and EventKindPageChanged.
	Chapter *Chapter
	// Location is renderer location for EventKindPageChanged.
	Location string
}

// Listener receives session events. Listeners are called synchronously from
// the goroutine which produced the event and must not block.
type Listener func(Event)

// Events is per session listener registry.
type Events struct {
	mu        sync.RWMutex
	listeners map[EventKind][]Listener
}

func newEvents() *Events {
	return &Events{listeners: make(map[EventKind][]Listener)}
}

// On registers listener for event kind.
func (e *Events) On(kind EventKind, fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[kind] = append(e.listeners[kind], fn)
}

func (e *Events) emit(ev Event) {
	e.mu.RLock()
	ls := e.listeners[ev.Kind]
	e.mu.RUnlock()

	for _, fn := range ls {
		fn(ev)
	}
}
