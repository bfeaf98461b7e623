package dispatch

import "time"

// Scheduler defers work to a later turn of a cooperative task queue.
// Implementations must run tasks in the order they were scheduled and must
// allow Schedule to be called from inside a running task.
type Scheduler interface {
	Schedule(task func() error)
}

// SchedulerFunc is a function adapter for Scheduler.
type SchedulerFunc func(task func() error)

// Schedule implements the Scheduler interface.
func (f SchedulerFunc) Schedule(task func() error) {
	f(task)
}

// Result represents the outcome of a single listener invocation.
type Result struct {
	// Panicked is true if the listener panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the listener took to execute.
	Duration time.Duration
}

// IsPanic returns true if the result indicates a panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}
