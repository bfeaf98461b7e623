package event

// Stats contains dispatcher statistics.
type Stats struct {
	// EventsEmitted is the total number of Emit calls.
	EventsEmitted uint64

	// EmitsDeferred is the number of emits and dispatches that had to wait
	// for an in-flight batch to drain.
	EmitsDeferred uint64

	// CommandsDispatched is the total number of Dispatch calls with a
	// non-nil command.
	CommandsDispatched uint64

	// CommandsSkipped is the number of handlers passed over because the
	// command was not an instance of their marker type.
	CommandsSkipped uint64

	// ListenersInvoked is the total number of listener and command handler
	// invocations.
	ListenersInvoked uint64

	// ListenerPanics is the number of invocations that panicked.
	ListenerPanics uint64

	// AvgInvokeTimeNs is the average invocation time in nanoseconds.
	AvgInvokeTimeNs int64

	// Listeners is the current number of registered event listeners.
	Listeners int

	// Handlers is the current number of registered command handlers.
	Handlers int

	// Pending reports whether a batch is in flight.
	Pending bool

	// Deferred is the number of batches waiting for the in-flight one.
	Deferred int
}
