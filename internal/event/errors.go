package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dispatcher.
var (
	// ErrNilListener is raised when a nil callback is registered.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrInvalidMarker is raised when a handler is registered for a zero Marker.
	ErrInvalidMarker = errors.New("invalid type marker")

	// ErrListenerPanic matches every PanicError via errors.Is.
	ErrListenerPanic = errors.New("listener panicked")

	// ErrRemoteClosed is returned when a Remote is used after Close.
	ErrRemoteClosed = errors.New("remote is closed")
)

// PanicError describes a listener or command handler that panicked while
// being invoked. The rest of the batch is unaffected.
type PanicError struct {
	// Key is the event name, or the dynamic type of the dispatched command.
	Key string

	// ListenerID is the ID of the listener or command handler that panicked.
	ListenerID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener %s panicked handling %s: %v", e.ListenerID, e.Key, e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
