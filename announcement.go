// Package announcement is an in-process event and command dispatcher.
//
// Listeners are registered by event name and command handlers by type
// marker. Emit and Dispatch never call them directly: every invocation is
// scheduled on a cooperative task queue, and by default the batches of
// back-to-back emits are drained one after another in registration order.
//
//	loop := announcement.NewLoop()
//	a := announcement.New(loop)
//
//	a.On("ping", func(args ...any) { fmt.Println("ping", args[0]) })
//	a.Emit("ping", 42)
//
//	_ = loop.Start(nil) // prints "ping 42"
//
// The implementation lives in internal packages; this package re-exports
// the public surface and wires configuration into a running dispatcher.
package announcement

import (
	"io"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/dshills/announcement/internal/config"
	"github.com/dshills/announcement/internal/config/watcher"
	"github.com/dshills/announcement/internal/event"
	"github.com/dshills/announcement/internal/event/dispatch"
	"github.com/dshills/announcement/internal/event/envelope"
	"github.com/dshills/announcement/internal/eventloop"
	"github.com/dshills/announcement/internal/luabind"
)

// ConfigReloaded is emitted on a watched Announcement after its
// configuration file was reloaded. The argument is the new Config.
const ConfigReloaded = "announce.config.reloaded"

type (
	// Announcement is the dispatcher.
	Announcement = event.Announcement

	// Listener is the handle of a listener registered by event name.
	Listener = event.Listener

	// ListenerFunc receives the arguments of an emit.
	ListenerFunc = event.ListenerFunc

	// CommandHandler is the handle of a handler registered by marker.
	CommandHandler = event.CommandHandler

	// CommandFunc receives a dispatched command.
	CommandFunc = event.CommandFunc

	// Marker identifies the command types a handler accepts.
	Marker = event.Marker

	// Option configures an Announcement.
	Option = event.Option

	// PanicError describes a recovered listener panic.
	PanicError = event.PanicError

	// Stats is a snapshot of dispatcher counters.
	Stats = event.Stats

	// Scheduler runs listener invocations.
	Scheduler = dispatch.Scheduler

	// Loop is the cooperative task queue provided by this module.
	Loop = eventloop.Loop

	// Remote forwards emits from other goroutines onto a Loop.
	Remote = event.Remote

	// Subscriber groups registrations so they can be removed together.
	Subscriber = event.Subscriber

	// Config holds dispatcher settings.
	Config = config.Config

	// Watcher watches a configuration file.
	Watcher = watcher.Watcher

	// Adapter bridges JSON envelopes and an Announcement.
	Adapter = envelope.Adapter

	// LuaModule exposes an Announcement to Lua.
	LuaModule = luabind.Module
)

// Options.
var (
	WithLogger          = event.WithLogger
	WithSerializedEmits = event.WithSerializedEmits
	WithPanicHandler    = event.WithPanicHandler
	WithTracerProvider  = event.WithTracerProvider
)

// Errors.
var (
	ErrNilListener   = event.ErrNilListener
	ErrInvalidMarker = event.ErrInvalidMarker
	ErrListenerPanic = event.ErrListenerPanic
	ErrRemoteClosed  = event.ErrRemoteClosed
	ErrNilScheduler  = dispatch.ErrNilScheduler
)

// New creates an Announcement scheduling on s.
func New(s Scheduler, opts ...Option) *Announcement {
	return event.New(s, opts...)
}

// NewLoop creates an empty Loop.
func NewLoop(opts ...eventloop.Option) *Loop {
	return eventloop.New(opts...)
}

// NewRemote creates a Remote that forwards onto loop. The loop keeps
// running until the Remote is closed.
func NewRemote(a *Announcement, loop *Loop) *Remote {
	return event.NewRemote(a, loop.RegisterCallback)
}

// NewSubscriber creates a Subscriber for a.
func NewSubscriber(a *Announcement) *Subscriber {
	return event.NewSubscriber(a)
}

// NewAdapter creates a JSON envelope adapter for a.
func NewAdapter(a *Announcement, opts ...envelope.Option) *Adapter {
	return envelope.NewAdapter(a, opts...)
}

// MarkerOf returns the marker for T.
func MarkerOf[T any]() Marker {
	return event.MarkerOf[T]()
}

// MarkerFor returns the marker for the dynamic type of v.
func MarkerFor(v any) Marker {
	return event.MarkerFor(v)
}

// HandleType registers fn for commands assignable to T.
func HandleType[T any](a *Announcement, fn func(cmd T)) *CommandHandler {
	return event.HandleType(a, fn)
}

// HandleTypeOnce is HandleType for a single invocation.
func HandleTypeOnce[T any](a *Announcement, fn func(cmd T)) *CommandHandler {
	return event.HandleTypeOnce(a, fn)
}

// LoadConfig returns the consolidated configuration from the file at path
// and the process environment.
func LoadConfig(path string) (Config, error) {
	return config.GetConsolidatedConfig(path, config.Environ())
}

// FromConfig creates an Announcement and its logger from cfg. The logger
// writes to out. When cfg enables tracing, batch spans go to the global
// OpenTelemetry tracer provider.
func FromConfig(cfg Config, s Scheduler, out io.Writer, opts ...Option) (*Announcement, *logrus.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := config.NewLogger(cfg, out)
	if err != nil {
		return nil, nil, err
	}

	base := []Option{
		WithLogger(logger),
		WithSerializedEmits(cfg.Serialize.Bool),
	}
	if cfg.Trace.Bool {
		base = append(base, WithTracerProvider(otel.GetTracerProvider()))
	}

	return New(s, append(base, opts...)...), logger, nil
}

// NewLuaModule creates a Lua module for a using the namespace from cfg.
func NewLuaModule(a *Announcement, cfg Config, logger logrus.FieldLogger) *LuaModule {
	return luabind.New(a,
		luabind.WithNamespace(cfg.LuaNamespace.String),
		luabind.WithLogger(logger),
	)
}

// WatchConfig reloads the configuration file at path whenever it changes
// and applies the serialization policy and logger settings to a. A remote,
// if not nil, receives a ConfigReloaded emit for every successful reload.
// Reload failures are logged and leave the current settings in place. The
// caller must Stop the returned watcher.
func WatchConfig(path string, env map[string]string, a *Announcement, logger *logrus.Logger, remote *Remote, opts ...watcher.Option) (*Watcher, error) {
	opts = append([]watcher.Option{watcher.WithLogger(logger)}, opts...)

	return config.WatchFile(path, env, func(cfg Config, err error) {
		entry := logger.WithField("path", path)
		if err != nil {
			entry.WithError(err).Warn("Cannot reload configuration")
			return
		}

		a.SetSerialized(cfg.Serialize.Bool)
		if err := config.ApplyLogger(logger, cfg); err != nil {
			entry.WithError(err).Warn("Cannot apply logger settings")
		}
		entry.WithFields(cfg.Fields()).Info("Configuration reloaded")

		if remote != nil {
			if err := remote.Emit(ConfigReloaded, cfg); err != nil {
				entry.WithError(err).Debug("Reload not announced")
			}
		}
	}, opts...)
}
