// Package event provides Announcement, an in-process event and command
// dispatcher.
//
// Callers register listeners either by event name or by command type, then
// emit a named event with arbitrary arguments or dispatch a command value.
// Matching listeners run asynchronously on a cooperative task queue.
//
// # Architecture
//
//	                    ┌──────────────────────────────────────────┐
//	                    │              Announcement                │
//	                    │  - Emit / Dispatch                       │
//	                    │  - Batch gate (serialized emits)         │
//	                    │  - Panic recovery, stats, tracing        │
//	                    └──────────────────────────────────────────┘
//	                                      │
//	          ┌───────────────────────────┼───────────────────────────┐
//	          ▼                           ▼                           ▼
//	┌─────────────────┐         ┌─────────────────┐         ┌─────────────────┐
//	│    Registry     │         │    Scheduler    │         │     Remote      │
//	│  - name table   │         │  - event loop   │         │  - goroutine-   │
//	│  - handlers     │         │    task queue   │         │    safe ingress │
//	└─────────────────┘         └─────────────────┘         └─────────────────┘
//
// # Events
//
// Event names are compared exactly. Dot notation ("user.created") is only
// a naming convention; there are no wildcards.
//
//	a := event.New(loop)
//	a.On("ping", func(args ...any) {
//	    fmt.Println(args[0]) // 42
//	})
//	a.Emit("ping", 42)
//
// On returns a *Listener handle. The handle identifies the registration:
// registering the same function twice creates two listeners, and Off
// removes exactly the one it is given.
//
// # Commands
//
// Command handlers are registered for a Marker. A command reaches every
// handler whose marker type it is an instance of: the marker is the
// command's own type, or an interface the command implements.
//
//	event.HandleType(a, func(cmd UserCommand) { audit(cmd) })
//	event.HandleType(a, func(cmd RegisterUser) { welcome(cmd) })
//	a.Dispatch(RegisterUser{ID: "7"}) // both handlers run
//
// # Ordering
//
// Listeners run in registration order. The set of listeners for a batch is
// snapshotted when the batch starts; registrations made while it runs
// affect later batches only.
//
// By default batches are serialized per Announcement: listener i+1 is
// scheduled after listener i returned, and an Emit or Dispatch issued while
// a batch is in flight waits until it drains. WithSerializedEmits(false)
// schedules every invocation at once instead.
//
// # Once
//
// Once and HandleOnce listeners fire at most once. When the invocation runs
// the listener first claims its single firing, then removes itself, then
// calls the callback.
//
// # Failures
//
// A panicking listener does not affect the rest of its batch. The panic is
// recovered, logged, recorded on the batch span, counted in Stats and
// passed to the WithPanicHandler hook as a *PanicError. Nothing is
// reported back to the emitter.
//
// # Thread Safety
//
// Registration, Emit and Dispatch are safe to call from any goroutine, but
// the Scheduler decides where listeners run. With an eventloop.Loop they
// run on the goroutine that called Start; use a Remote to emit from other
// goroutines while the loop is running.
package event
