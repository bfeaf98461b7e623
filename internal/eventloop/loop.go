package eventloop

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Loop is a cooperative task queue. The zero value is not usable; create
// loops with New.
type Loop struct {
	queueLock  sync.Mutex
	queue      []func() error
	wakeupCh   chan struct{}
	registered int
	running    bool

	logger logrus.FieldLogger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for task failures. A nil logger is
// ignored.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates an idle loop.
func New(opts ...Option) *Loop {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	l := &Loop{
		wakeupCh: make(chan struct{}, 1),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) wakeup() {
	select {
	case l.wakeupCh <- struct{}{}:
	default:
	}
}

// Schedule queues task to run on a later turn. It is safe to call from
// inside a running task and from other goroutines, but tasks scheduled
// from other goroutines only run if the loop is kept alive with
// RegisterCallback.
func (l *Loop) Schedule(task func() error) {
	if task == nil {
		return
	}
	l.queueLock.Lock()
	l.queue = append(l.queue, task)
	l.queueLock.Unlock()
	l.wakeup()
}

// RegisterCallback signals that a task will be queued later, possibly from
// another goroutine. Start does not return while registered callbacks are
// outstanding. The returned function queues its argument and must be called
// exactly once; calling it again panics.
func (l *Loop) RegisterCallback() func(func() error) {
	l.queueLock.Lock()
	l.registered++
	l.queueLock.Unlock()

	var once sync.Once
	return func(task func() error) {
		called := false
		once.Do(func() {
			called = true
			l.queueLock.Lock()
			if task != nil {
				l.queue = append(l.queue, task)
			}
			l.registered--
			l.queueLock.Unlock()
			l.wakeup()
		})
		if !called {
			panic(ErrCallbackReused)
		}
	}
}

// Start runs first, if not nil, ahead of any already queued tasks, then
// keeps running tasks until the queue is empty and no registered callback
// is outstanding.
//
// If a task returns an error, Start returns it right away. A panicking task
// propagates out of Start. Either way, tasks that had not run yet stay
// queued and run on the next Start.
func (l *Loop) Start(first func() error) error {
	l.queueLock.Lock()
	if l.running {
		l.queueLock.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	if first != nil {
		l.queue = append([]func() error{first}, l.queue...)
	}
	l.queueLock.Unlock()

	defer func() {
		l.queueLock.Lock()
		l.running = false
		l.queueLock.Unlock()
	}()

	for {
		l.queueLock.Lock()
		if len(l.queue) > 0 {
			queue := l.queue
			l.queue = make([]func() error, 0, len(queue))
			l.queueLock.Unlock()

			if err := l.runBatch(queue); err != nil {
				l.logger.WithError(err).Debug("Task failed, stopping loop")
				return err
			}
			continue
		}

		if l.registered == 0 {
			l.queueLock.Unlock()
			return nil
		}
		l.queueLock.Unlock()
		<-l.wakeupCh
	}
}

// runBatch runs queue in order. When a task returns an error or panics, the
// tasks after it are put back at the front of the queue for the next Start.
func (l *Loop) runBatch(queue []func() error) error {
	next := 0
	defer func() {
		if next < len(queue) {
			l.queueLock.Lock()
			l.queue = append(queue[next:], l.queue...)
			l.queueLock.Unlock()
		}
	}()

	for next < len(queue) {
		task := queue[next]
		next++
		if err := task(); err != nil {
			return err
		}
	}
	return nil
}

// WaitOnRegistered blocks until every registered callback has been called.
// Tasks they queue are kept for the next Start. It is meant for cleanup
// after Start returned an error.
func (l *Loop) WaitOnRegistered() {
	for {
		l.queueLock.Lock()
		if l.registered == 0 {
			l.queueLock.Unlock()
			return
		}
		l.queueLock.Unlock()
		<-l.wakeupCh
	}
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.queueLock.Lock()
	defer l.queueLock.Unlock()
	return len(l.queue)
}

// Registered returns the number of outstanding registered callbacks.
func (l *Loop) Registered() int {
	l.queueLock.Lock()
	defer l.queueLock.Unlock()
	return l.registered
}
