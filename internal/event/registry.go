package event

import (
	"slices"
	"sort"
	"sync"

	"github.com/dshills/announcement/internal/event/topic"
)

// Registry holds the event table (name -> ordered listeners) and the ordered
// command handler collection. It is safe for concurrent access; readers get
// copies, so callers may iterate while listeners mutate the registry.
type Registry struct {
	mu       sync.RWMutex
	events   map[topic.Topic][]*Listener
	handlers []*CommandHandler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		events: make(map[topic.Topic][]*Listener),
	}
}

// AddListener appends l to the bucket for its name, creating the bucket on
// first use. The same callback may be registered several times; each
// registration gets its own handle.
func (r *Registry) AddListener(l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[l.name] = append(r.events[l.name], l)
}

// RemoveListener removes l from the bucket for name. It reports whether l
// was found there. The bucket itself is kept even when it becomes empty.
func (r *Registry) RemoveListener(name topic.Topic, l *Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	listeners, ok := r.events[name]
	if !ok {
		return false
	}
	i := slices.Index(listeners, l)
	if i < 0 {
		return false
	}
	r.events[name] = slices.Delete(listeners, i, i+1)
	return true
}

// Listeners returns a snapshot of the listeners registered for name, in
// registration order.
func (r *Registry) Listeners(name topic.Topic) []*Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listeners := r.events[name]
	if len(listeners) == 0 {
		return nil
	}
	return slices.Clone(listeners)
}

// AddHandler appends h to the handler collection. Handlers are unique by
// identity: adding a handler that is already present is a no-op and returns
// false.
func (r *Registry) AddHandler(h *CommandHandler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.handlers, h) {
		return false
	}
	r.handlers = append(r.handlers, h)
	return true
}

// RemoveHandler removes h from the handler collection and reports whether it
// was present.
func (r *Registry) RemoveHandler(h *CommandHandler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.handlers, h)
	if i < 0 {
		return false
	}
	r.handlers = slices.Delete(r.handlers, i, i+1)
	return true
}

// RemoveMarker removes every handler registered for exactly marker and
// returns them.
func (r *Registry) RemoveMarker(marker Marker) []*CommandHandler {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*CommandHandler
	r.handlers = slices.DeleteFunc(r.handlers, func(h *CommandHandler) bool {
		if h.marker == marker {
			removed = append(removed, h)
			return true
		}
		return false
	})
	return removed
}

// Handlers returns a snapshot of the handler collection in registration
// order.
func (r *Registry) Handlers() []*CommandHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.handlers) == 0 {
		return nil
	}
	return slices.Clone(r.handlers)
}

// ListenerCount returns the number of listeners registered for name.
func (r *Registry) ListenerCount(name topic.Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.events[name])
}

// Count returns the total number of listeners across all names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, listeners := range r.events {
		count += len(listeners)
	}
	return count
}

// HandlerCount returns the number of command handlers.
func (r *Registry) HandlerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

// Names returns every event name a bucket exists for, sorted. Buckets whose
// listeners were all removed are included.
func (r *Registry) Names() []topic.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.events) == 0 {
		return nil
	}

	names := make([]topic.Topic, 0, len(r.events))
	for name := range r.events {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i] < names[j]
	})
	return names
}

// Clear removes all listeners and handlers.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make(map[topic.Topic][]*Listener)
	r.handlers = nil
}
