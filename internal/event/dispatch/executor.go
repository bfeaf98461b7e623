package dispatch

import (
	"runtime/debug"
	"time"
)

// Executor handles the actual execution of listeners with panic recovery
// and timing.
type Executor struct{}

// NewExecutor creates a new executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs fn on behalf of key and returns the result.
// It recovers from panics and captures timing information. The key only
// labels the invocation; it is not interpreted.
func (e *Executor) Execute(key any, fn func()) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	fn()
	return result
}
