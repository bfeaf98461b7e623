package eventloop

import "errors"

var (
	// ErrCallbackReused is raised when a registered callback is called twice.
	ErrCallbackReused = errors.New("registered callback called more than once")

	// ErrLoopRunning is returned when Start is called on a running loop.
	ErrLoopRunning = errors.New("loop is already running")
)
