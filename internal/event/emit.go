package event

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/announcement/internal/event/dispatch"
	"github.com/dshills/announcement/internal/event/topic"
)

// Span and attribute names.
const (
	spanEmit     = "announce.emit"
	spanDispatch = "announce.dispatch"

	attrEvent     = attribute.Key("announce.event")
	attrCommand   = attribute.Key("announce.command")
	attrListeners = attribute.Key("announce.listeners")
)

// Emit invokes every listener registered for name with args. Listeners are
// taken from a snapshot of the registry made when the batch starts, and run
// in registration order on later turns of the scheduler; Emit itself never
// calls a listener.
//
// With serialized emits, a batch started while another is running waits
// for it to drain, and its snapshot is taken only then.
func (a *Announcement) Emit(name string, args ...any) {
	a.eventsEmitted.Add(1)
	key := topic.Topic(name)
	a.enter(logrus.Fields{"event": name}, func(serialized bool) {
		a.emitBatch(key, args, serialized)
	})
}

// Dispatch invokes every command handler whose marker cmd is an instance
// of, in registration order. Handlers for other types are skipped. A nil
// cmd is ignored.
func (a *Announcement) Dispatch(cmd any) {
	if cmd == nil {
		return
	}
	a.commandsDispatched.Add(1)
	marker := MarkerFor(cmd)
	a.enter(logrus.Fields{"command": marker.String()}, func(serialized bool) {
		a.dispatchBatch(cmd, marker, serialized)
	})
}

// enter starts a batch, through the gate when emits are serialized.
func (a *Announcement) enter(fields logrus.Fields, start func(serialized bool)) {
	if !a.serialize.Load() {
		start(false)
		return
	}
	if !a.gate.Enter(func() { start(true) }) {
		a.emitsDeferred.Add(1)
		a.logger.WithFields(fields).Trace("Deferred until in-flight batch drains")
	}
}

func (a *Announcement) emitBatch(name topic.Topic, args []any, serialized bool) {
	listeners := a.registry.Listeners(name)
	if len(listeners) == 0 {
		a.finish(nil, serialized)
		return
	}

	_, span := a.tracer.Start(context.Background(), spanEmit,
		trace.WithAttributes(
			attrEvent.String(string(name)),
			attrListeners.Int(len(listeners)),
		),
	)
	a.logger.WithFields(logrus.Fields{
		"event":     string(name),
		"listeners": len(listeners),
	}).Trace("Emitting event")

	steps := make([]func(), len(listeners))
	for i, l := range listeners {
		steps[i] = func() { a.invokeListener(span, l, args) }
	}
	a.run(steps, span, serialized)
}

func (a *Announcement) dispatchBatch(cmd any, marker Marker, serialized bool) {
	handlers := a.registry.Handlers()
	matched := handlers[:0]
	for _, h := range handlers {
		if h.Matches(cmd) {
			matched = append(matched, h)
		} else {
			a.commandsSkipped.Add(1)
		}
	}
	if len(matched) == 0 {
		a.finish(nil, serialized)
		return
	}

	_, span := a.tracer.Start(context.Background(), spanDispatch,
		trace.WithAttributes(
			attrCommand.String(marker.String()),
			attrListeners.Int(len(matched)),
		),
	)
	a.logger.WithFields(logrus.Fields{
		"command":   marker.String(),
		"listeners": len(matched),
	}).Trace("Dispatching command")

	steps := make([]func(), len(matched))
	for i, h := range matched {
		steps[i] = func() { a.invokeHandler(span, h, cmd, marker) }
	}
	a.run(steps, span, serialized)
}

// run schedules the steps of a batch and finishes it after the last one.
func (a *Announcement) run(steps []func(), span trace.Span, serialized bool) {
	done := func() { a.finish(span, serialized) }
	if serialized {
		dispatch.RunSequence(a.scheduler, steps, done)
		return
	}

	last := steps[len(steps)-1]
	steps[len(steps)-1] = func() {
		last()
		done()
	}
	dispatch.ScheduleEach(a.scheduler, steps)
}

func (a *Announcement) finish(span trace.Span, serialized bool) {
	if span != nil {
		span.End()
	}
	if serialized {
		a.gate.Release()
	}
}

func (a *Announcement) invokeListener(span trace.Span, l *Listener, args []any) {
	if !l.claim() {
		return
	}
	if l.once {
		a.registry.RemoveListener(l.name, l)
	}

	result := a.executor.Execute(l.name, func() {
		l.fn(args...)
	})
	a.record(span, result, string(l.name), l.id, logrus.Fields{
		"event":      string(l.name),
		"listenerID": l.id,
	})
}

func (a *Announcement) invokeHandler(span trace.Span, h *CommandHandler, cmd any, marker Marker) {
	if !h.claim() {
		return
	}
	if h.once {
		a.registry.RemoveHandler(h)
	}

	result := a.executor.Execute(cmd, func() {
		h.fn(cmd)
	})
	a.record(span, result, marker.String(), h.id, logrus.Fields{
		"command":   marker.String(),
		"handlerID": h.id,
	})
}

func (a *Announcement) record(span trace.Span, result dispatch.Result, key, id string, fields logrus.Fields) {
	a.listenersInvoked.Add(1)
	a.totalInvokeNs.Add(int64(result.Duration))
	if !result.IsPanic() {
		return
	}

	a.listenerPanics.Add(1)
	err := &PanicError{
		Key:        key,
		ListenerID: id,
		Value:      result.PanicValue,
		Stack:      string(result.PanicStack),
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	a.logger.WithFields(fields).WithError(err).Error("Listener panicked")

	// A panicking hook must not stall the batch.
	a.executor.Execute(key, func() {
		a.panicHandler(err)
	})
}
