package event

import (
	"io"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Option configures an Announcement.
type Option func(*options)

// PanicHandler is called after a listener or command handler panicked and
// the panic was recovered.
type PanicHandler func(err *PanicError)

// options contains configuration for an Announcement.
type options struct {
	// logger receives registration and dispatch diagnostics.
	logger logrus.FieldLogger

	// serialize selects serialized draining of emit batches.
	serialize bool

	// panicHandler is called when a listener panics.
	panicHandler PanicHandler

	// tracerProvider creates the tracer for batch spans.
	tracerProvider trace.TracerProvider
}

func defaultOptions() options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return options{
		logger:         logger,
		serialize:      true,
		panicHandler:   func(*PanicError) {},
		tracerProvider: noop.NewTracerProvider(),
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSerializedEmits selects the emit policy. When enabled (the default),
// an emit that arrives while an earlier batch is still running waits until
// that batch has drained. When disabled, every invocation is scheduled at
// once and batches may interleave.
func WithSerializedEmits(enabled bool) Option {
	return func(o *options) {
		o.serialize = enabled
	}
}

// WithPanicHandler sets a hook that receives recovered listener panics.
// A nil handler is ignored.
func WithPanicHandler(h PanicHandler) Option {
	return func(o *options) {
		if h != nil {
			o.panicHandler = h
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for batch
// spans. A nil provider is ignored.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}
