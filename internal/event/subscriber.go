package event

import (
	"sync"
)

// HandleType registers fn for commands that are instances of T.
//
//	event.HandleType(a, func(cmd RegisterUser) { ... })
func HandleType[T any](a *Announcement, fn func(cmd T)) *CommandHandler {
	if fn == nil {
		panic(ErrNilListener)
	}
	return a.Handle(MarkerOf[T](), typed(fn))
}

// HandleTypeOnce registers fn for the first command that is an instance
// of T.
func HandleTypeOnce[T any](a *Announcement, fn func(cmd T)) *CommandHandler {
	if fn == nil {
		panic(ErrNilListener)
	}
	return a.HandleOnce(MarkerOf[T](), typed(fn))
}

func typed[T any](fn func(cmd T)) CommandFunc {
	return func(cmd any) {
		fn(cmd.(T))
	}
}

// Subscriber tracks the registrations one component makes on an
// Announcement so they can be removed together when the component shuts
// down.
type Subscriber struct {
	a         *Announcement
	listeners []*Listener
	handlers  []*CommandHandler
	mu        sync.Mutex
	closed    bool
}

// NewSubscriber creates a Subscriber registering on a.
func NewSubscriber(a *Announcement) *Subscriber {
	return &Subscriber{a: a}
}

// On registers fn for the event name. It returns nil once the subscriber
// is closed.
func (s *Subscriber) On(name string, fn ListenerFunc) *Listener {
	return s.track(func() *Listener { return s.a.On(name, fn) })
}

// Once registers fn to fire once for the event name. It returns nil once
// the subscriber is closed.
func (s *Subscriber) Once(name string, fn ListenerFunc) *Listener {
	return s.track(func() *Listener { return s.a.Once(name, fn) })
}

func (s *Subscriber) track(register func() *Listener) *Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.pruneLocked()
	l := register()
	s.listeners = append(s.listeners, l)
	return l
}

// pruneLocked drops once listeners that have already fired; they have
// removed themselves from the Announcement.
func (s *Subscriber) pruneLocked() {
	kept := s.listeners[:0]
	for _, l := range s.listeners {
		if !(l.Once() && l.Fired()) {
			kept = append(kept, l)
		}
	}
	clear(s.listeners[len(kept):])
	s.listeners = kept
}

// Handle registers fn for commands that are instances of marker. It
// returns nil once the subscriber is closed.
func (s *Subscriber) Handle(marker Marker, fn CommandFunc) *CommandHandler {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	h := s.a.Handle(marker, fn)
	s.handlers = append(s.handlers, h)
	return h
}

// Off removes a listener registered through this subscriber.
func (s *Subscriber) Off(l *Listener) bool {
	if l == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tracked := range s.listeners {
		if tracked == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return s.a.Off(l.Name(), l)
		}
	}
	return false
}

// Lookup returns the tracked listener with the given ID.
func (s *Subscriber) Lookup(id string) *Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	for _, l := range s.listeners {
		if l.id == id {
			return l
		}
	}
	return nil
}

// Close removes every registration made through the subscriber and
// prevents new ones.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, l := range s.listeners {
		s.a.Off(l.Name(), l)
	}
	for _, h := range s.handlers {
		s.a.OffHandler(h)
	}
	s.listeners = nil
	s.handlers = nil
	return nil
}

// Count returns the number of tracked registrations. Once listeners that
// have fired are no longer tracked.
func (s *Subscriber) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	return len(s.listeners) + len(s.handlers)
}

// IsClosed returns true if the subscriber has been closed.
func (s *Subscriber) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
