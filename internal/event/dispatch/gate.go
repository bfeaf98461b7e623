package dispatch

import "sync"

// Gate serializes batches. At most one batch is in flight at a time; batches
// requested meanwhile are deferred and started in request order as the gate
// is released. The zero value is an idle gate.
//
// A batch may release the gate from inside its own start function, for
// example when it turns out to have nothing to run. Such releases are
// handled by the caller that is starting the batch, so any number of
// deferred batches drain in a loop rather than through nested calls.
type Gate struct {
	mu       sync.Mutex
	pending  bool
	starting bool
	released bool
	deferred []func()
}

// Enter starts a batch. If the gate is idle, it is marked pending and start
// runs immediately; Enter then returns true. Otherwise start is deferred
// until every earlier batch has released the gate and Enter returns false.
//
// Every started batch must eventually call Release exactly once.
func (g *Gate) Enter(start func()) bool {
	g.mu.Lock()
	if g.pending {
		g.deferred = append(g.deferred, start)
		g.mu.Unlock()
		return false
	}
	g.pending = true
	g.mu.Unlock()

	g.drive(start)
	return true
}

// Release ends the in-flight batch. If batches were deferred, the oldest one
// starts and the gate stays pending; otherwise the gate goes idle.
func (g *Gate) Release() {
	g.mu.Lock()
	if g.starting {
		g.released = true
		g.mu.Unlock()
		return
	}
	next := g.nextLocked()
	g.mu.Unlock()

	if next != nil {
		g.drive(next)
	}
}

// drive runs start, then keeps starting deferred batches for as long as
// each one releases the gate before its start function returns.
func (g *Gate) drive(start func()) {
	for start != nil {
		g.mu.Lock()
		g.starting = true
		g.released = false
		g.mu.Unlock()

		start()

		g.mu.Lock()
		g.starting = false
		if !g.released {
			g.mu.Unlock()
			return
		}
		start = g.nextLocked()
		g.mu.Unlock()
	}
}

// nextLocked pops the oldest deferred batch, or marks the gate idle and
// returns nil when there is none.
func (g *Gate) nextLocked() func() {
	if len(g.deferred) == 0 {
		g.pending = false
		return nil
	}
	next := g.deferred[0]
	g.deferred[0] = nil
	g.deferred = g.deferred[1:]
	return next
}

// Pending reports whether a batch is in flight.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Deferred returns the number of batches waiting for the gate.
func (g *Gate) Deferred() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.deferred)
}
