package dispatch

import "errors"

// ErrNilScheduler is returned or raised when a component is built without a
// Scheduler to defer work onto.
var ErrNilScheduler = errors.New("scheduler cannot be nil")
