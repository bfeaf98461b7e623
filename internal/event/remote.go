package event

import (
	"sync"

	"github.com/mstoykov/k6-taskqueue-lib/taskqueue"
)

// Remote forwards emits and dispatches from other goroutines onto the
// goroutine that runs the Announcement's scheduler.
//
// registerCallback is typically (*eventloop.Loop).RegisterCallback. While a
// Remote is open it keeps the loop alive; Close must be called for the loop
// to finish.
type Remote struct {
	a      *Announcement
	tq     *taskqueue.TaskQueue
	mu     sync.RWMutex
	closed bool
}

// NewRemote creates a Remote for a.
func NewRemote(a *Announcement, registerCallback func() func(func() error)) *Remote {
	return &Remote{
		a:  a,
		tq: taskqueue.New(registerCallback),
	}
}

// Emit queues a.Emit(name, args...) to run on the loop.
func (r *Remote) Emit(name string, args ...any) error {
	return r.queue(func() error {
		r.a.Emit(name, args...)
		return nil
	})
}

// Dispatch queues a.Dispatch(cmd) to run on the loop.
func (r *Remote) Dispatch(cmd any) error {
	return r.queue(func() error {
		r.a.Dispatch(cmd)
		return nil
	})
}

func (r *Remote) queue(task func() error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrRemoteClosed
	}
	r.tq.Queue(task)
	return nil
}

// Close releases the loop. Calls queued before Close still run; later
// calls return ErrRemoteClosed.
func (r *Remote) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.tq.Close()
}
