package event

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestAnnouncement_PanicIsolated(t *testing.T) {
	t.Parallel()

	var reported []*PanicError
	a, q := newTestAnnouncement(WithPanicHandler(func(err *PanicError) {
		reported = append(reported, err)
	}))

	rec := &recorder{}
	bad := a.On("a", func(...any) { panic("boom") })
	a.On("a", rec.listener("after"))
	a.On("b", rec.listener("b"))

	a.Emit("a")
	a.Emit("b")
	q.drain()

	assert.Equal(t, []string{"after", "b"}, rec.calls)
	require.Len(t, reported, 1)
	err := reported[0]
	assert.ErrorIs(t, err, ErrListenerPanic)
	assert.Equal(t, "a", err.Key)
	assert.Equal(t, bad.ID(), err.ListenerID)
	assert.Equal(t, "boom", err.Value)
	assert.NotEmpty(t, err.Stack)

	stats := a.Stats()
	assert.Equal(t, uint64(1), stats.ListenerPanics)
	assert.False(t, stats.Pending)
}

func TestAnnouncement_CommandHandlerPanic(t *testing.T) {
	t.Parallel()

	var reported *PanicError
	a, q := newTestAnnouncement(WithPanicHandler(func(err *PanicError) {
		reported = err
	}))
	cause := errors.New("cause")
	h := a.Handle(MarkerOf[ping](), func(any) { panic(cause) })
	calls := 0
	a.Handle(MarkerOf[ping](), func(any) { calls++ })

	a.Dispatch(ping{})
	q.drain()

	assert.Equal(t, 1, calls)
	require.NotNil(t, reported)
	assert.Equal(t, "event.ping", reported.Key)
	assert.Equal(t, h.ID(), reported.ListenerID)
	assert.ErrorIs(t, reported, cause)
}

func TestAnnouncement_PanickingPanicHandler(t *testing.T) {
	t.Parallel()

	a, q := newTestAnnouncement(WithPanicHandler(func(*PanicError) {
		panic("handler boom")
	}))
	calls := 0
	a.On("a", func(...any) { panic("boom") })
	a.On("a", func(...any) { calls++ })

	a.Emit("a")
	a.Emit("a")
	q.drain()

	assert.Equal(t, 2, calls)
	assert.False(t, a.Stats().Pending)
}

func TestAnnouncement_PanicLogged(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	a, q := newTestAnnouncement(WithLogger(logger))

	l := a.On("a", func(...any) { panic("boom") })
	a.Emit("a")
	q.drain()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Listener panicked", entry.Message)
	assert.Equal(t, "a", entry.Data["event"])
	assert.Equal(t, l.ID(), entry.Data["listenerID"])
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), ErrListenerPanic)
}

func TestAnnouncement_RegistrationLogged(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	a, _ := newTestAnnouncement(WithLogger(logger))

	l := a.On("a", nop)
	a.Off("a", l)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Added listener", entries[0].Message)
	assert.Equal(t, "Removed listener", entries[1].Message)
	assert.Equal(t, l.ID(), entries[1].Data["listenerID"])
}

func TestAnnouncement_TracesBatches(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	a, q := newTestAnnouncement(WithTracerProvider(tp))

	a.On("a", nop)
	a.On("a", nop)
	a.Handle(MarkerOf[ping](), func(any) {})

	a.Emit("a")
	a.Emit("nobody")
	a.Dispatch(ping{})

	q.tick()
	assert.Empty(t, sr.Ended(), "span stays open until the batch drains")
	q.drain()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, spanEmit, spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attrEvent.String("a"))
	assert.Contains(t, spans[0].Attributes(), attrListeners.Int(2))

	assert.Equal(t, spanDispatch, spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.String("announce.command", "event.ping"))
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestAnnouncement_TracesPanics(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	a, q := newTestAnnouncement(WithTracerProvider(tp))

	a.On("a", func(...any) { panic("boom") })
	a.Emit("a")
	q.drain()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestAnnouncement_TracesIndependentBatches(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	a, q := newTestAnnouncement(WithTracerProvider(tp), WithSerializedEmits(false))

	a.On("a", nop)
	a.On("a", nop)
	a.Emit("a")

	q.tick()
	assert.Empty(t, sr.Ended())
	q.tick()
	assert.Len(t, sr.Ended(), 1)
}
