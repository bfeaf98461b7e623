package event

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/announcement/internal/event/dispatch"
	"github.com/dshills/announcement/internal/event/topic"
)

const tracerName = "github.com/dshills/announcement"

// Announcement registers listeners by event name and command handlers by
// type marker, and invokes them asynchronously on a Scheduler.
//
// Registration methods are safe to call from any goroutine and from inside
// listeners. Listeners themselves run only on the scheduler.
type Announcement struct {
	scheduler dispatch.Scheduler
	registry  *Registry
	executor  *dispatch.Executor
	gate      dispatch.Gate

	serialize    atomic.Bool
	logger       logrus.FieldLogger
	tracer       trace.Tracer
	panicHandler PanicHandler

	// Stats
	eventsEmitted      atomic.Uint64
	emitsDeferred      atomic.Uint64
	commandsDispatched atomic.Uint64
	commandsSkipped    atomic.Uint64
	listenersInvoked   atomic.Uint64
	listenerPanics     atomic.Uint64
	totalInvokeNs      atomic.Int64
}

// New creates an Announcement that schedules listener invocations on s.
// It panics with dispatch.ErrNilScheduler if s is nil.
func New(s dispatch.Scheduler, opts ...Option) *Announcement {
	if s == nil {
		panic(dispatch.ErrNilScheduler)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Announcement{
		scheduler:    s,
		registry:     NewRegistry(),
		executor:     dispatch.NewExecutor(),
		logger:       o.logger,
		tracer:       o.tracerProvider.Tracer(tracerName),
		panicHandler: o.panicHandler,
	}
	a.serialize.Store(o.serialize)
	return a
}

// On registers fn for the event name and returns its handle.
// Registering the same function twice yields two independent listeners.
func (a *Announcement) On(name string, fn ListenerFunc) *Listener {
	return a.addListener(name, fn, false)
}

// Once registers fn for the event name; it fires at most once and removes
// itself before it is called.
func (a *Announcement) Once(name string, fn ListenerFunc) *Listener {
	return a.addListener(name, fn, true)
}

func (a *Announcement) addListener(name string, fn ListenerFunc, once bool) *Listener {
	l := newListener(topic.Topic(name), fn, once)
	a.registry.AddListener(l)

	a.logger.WithFields(logrus.Fields{
		"event":      name,
		"listenerID": l.id,
		"once":       once,
	}).Debug("Added listener")
	return l
}

// Off removes the listener from the event name. It reports whether the
// listener was registered there. Invocations that were already scheduled
// still run.
func (a *Announcement) Off(name string, l *Listener) bool {
	if l == nil {
		return false
	}
	removed := a.registry.RemoveListener(topic.Topic(name), l)
	if removed {
		a.logger.WithFields(logrus.Fields{
			"event":      name,
			"listenerID": l.id,
		}).Debug("Removed listener")
	}
	return removed
}

// Handle registers fn for commands that are instances of marker and
// returns its handle.
func (a *Announcement) Handle(marker Marker, fn CommandFunc) *CommandHandler {
	return a.addHandler(marker, fn, false)
}

// HandleOnce registers fn for commands that are instances of marker; it
// fires at most once and removes itself before it is called.
func (a *Announcement) HandleOnce(marker Marker, fn CommandFunc) *CommandHandler {
	return a.addHandler(marker, fn, true)
}

func (a *Announcement) addHandler(marker Marker, fn CommandFunc, once bool) *CommandHandler {
	h := newCommandHandler(marker, fn, once)
	a.registry.AddHandler(h)

	a.logger.WithFields(logrus.Fields{
		"command":   marker.String(),
		"handlerID": h.id,
		"once":      once,
	}).Debug("Added command handler")
	return h
}

// OffHandler removes the command handler and reports whether it was
// registered.
func (a *Announcement) OffHandler(h *CommandHandler) bool {
	if h == nil {
		return false
	}
	removed := a.registry.RemoveHandler(h)
	if removed {
		a.logger.WithFields(logrus.Fields{
			"command":   h.marker.String(),
			"handlerID": h.id,
		}).Debug("Removed command handler")
	}
	return removed
}

// OffMarker removes every command handler registered for exactly marker and
// returns how many were removed. Handlers for other markers that happen to
// match the same commands are kept.
func (a *Announcement) OffMarker(marker Marker) int {
	removed := a.registry.RemoveMarker(marker)
	if len(removed) > 0 {
		a.logger.WithFields(logrus.Fields{
			"command":  marker.String(),
			"handlers": len(removed),
		}).Debug("Removed command handlers")
	}
	return len(removed)
}

// ListenerCount returns the number of listeners registered for name.
func (a *Announcement) ListenerCount(name string) int {
	return a.registry.ListenerCount(topic.Topic(name))
}

// HandlerCount returns the number of registered command handlers.
func (a *Announcement) HandlerCount() int {
	return a.registry.HandlerCount()
}

// Names returns the event names that have ever had a listener, sorted.
func (a *Announcement) Names() []string {
	topics := a.registry.Names()
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = string(t)
	}
	return names
}

// Clear removes every listener and command handler and forgets every event
// name. Invocations that were already scheduled still run.
func (a *Announcement) Clear() {
	listeners, handlers := a.registry.Count(), a.registry.HandlerCount()
	a.registry.Clear()

	a.logger.WithFields(logrus.Fields{
		"listeners": listeners,
		"handlers":  handlers,
	}).Debug("Cleared registrations")
}

// SetSerialized switches the emit policy at runtime. Batches already
// deferred are still drained in order.
func (a *Announcement) SetSerialized(enabled bool) {
	a.serialize.Store(enabled)
}

// Serialized reports whether emits are serialized.
func (a *Announcement) Serialized() bool {
	return a.serialize.Load()
}

// Stats returns a snapshot of dispatcher statistics.
func (a *Announcement) Stats() Stats {
	invoked := a.listenersInvoked.Load()
	var avgNs int64
	if invoked > 0 {
		avgNs = a.totalInvokeNs.Load() / int64(invoked)
	}

	return Stats{
		EventsEmitted:      a.eventsEmitted.Load(),
		EmitsDeferred:      a.emitsDeferred.Load(),
		CommandsDispatched: a.commandsDispatched.Load(),
		CommandsSkipped:    a.commandsSkipped.Load(),
		ListenersInvoked:   invoked,
		ListenerPanics:     a.listenerPanics.Load(),
		AvgInvokeTimeNs:    avgNs,
		Listeners:          a.registry.Count(),
		Handlers:           a.registry.HandlerCount(),
		Pending:            a.gate.Pending(),
		Deferred:           a.gate.Deferred(),
	}
}
