package event

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/announcement/internal/event/topic"
)

// ListenerFunc is called with the payload arguments of a named event.
type ListenerFunc func(args ...any)

// CommandFunc is called with a dispatched command.
type CommandFunc func(cmd any)

// Listener is the handle returned when a callback is registered for an event
// name. Pass it to Off to remove the callback; the handle, not the function,
// identifies the registration.
type Listener struct {
	id    string
	name  topic.Topic
	fn    ListenerFunc
	once  bool
	fired atomic.Bool
}

func newListener(name topic.Topic, fn ListenerFunc, once bool) *Listener {
	if fn == nil {
		panic(ErrNilListener)
	}
	return &Listener{
		id:   uuid.NewString(),
		name: name,
		fn:   fn,
		once: once,
	}
}

// ID returns the unique listener identifier.
func (l *Listener) ID() string {
	return l.id
}

// Name returns the event name the listener is registered under.
func (l *Listener) Name() string {
	return string(l.name)
}

// Once reports whether the listener removes itself after firing.
func (l *Listener) Once() bool {
	return l.once
}

// Fired reports whether a once listener has already fired.
func (l *Listener) Fired() bool {
	return l.fired.Load()
}

// claim reports whether this invocation may call the user callback.
// Regular listeners always may; once listeners exactly one time.
func (l *Listener) claim() bool {
	if !l.once {
		return true
	}
	return l.fired.CompareAndSwap(false, true)
}

// CommandHandler is the handle returned when a callback is registered for a
// type Marker. Pass it to OffHandler to remove the callback.
type CommandHandler struct {
	id     string
	marker Marker
	fn     CommandFunc
	once   bool
	fired  atomic.Bool
}

func newCommandHandler(marker Marker, fn CommandFunc, once bool) *CommandHandler {
	if marker.IsZero() {
		panic(ErrInvalidMarker)
	}
	if fn == nil {
		panic(ErrNilListener)
	}
	return &CommandHandler{
		id:     uuid.NewString(),
		marker: marker,
		fn:     fn,
		once:   once,
	}
}

// ID returns the unique handler identifier.
func (h *CommandHandler) ID() string {
	return h.id
}

// Marker returns the type marker the handler is registered for.
func (h *CommandHandler) Marker() Marker {
	return h.marker
}

// Once reports whether the handler removes itself after firing.
func (h *CommandHandler) Once() bool {
	return h.once
}

// Matches reports whether cmd is an instance of the handler's marker type.
func (h *CommandHandler) Matches(cmd any) bool {
	return h.marker.Matches(cmd)
}

func (h *CommandHandler) claim() bool {
	if !h.once {
		return true
	}
	return h.fired.CompareAndSwap(false, true)
}
