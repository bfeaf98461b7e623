// Package dispatch provides the scheduling primitives the event dispatcher
// is built from.
//
// # Scheduler
//
// A Scheduler is the cooperative "defer to next tick" capability supplied by
// the embedding runtime. Work handed to Schedule runs later, in FIFO order, on
// the goroutine that drains the queue. Nothing in this package assumes
// parallel execution.
//
// # Executor
//
// Executor runs a single listener invocation with panic recovery and timing.
// A panicking listener is reported in the Result instead of unwinding the
// task queue, so one failure never blocks the rest of a batch.
//
// # Sequence
//
// RunSequence drives a batch as an asynchronous run-to-completion sequence:
// step i+1 is scheduled only after step i has returned.
//
// # Gate
//
// Gate is the pending flag. While a batch is in flight, new batches are
// deferred and started, oldest first, as each in-flight batch releases it.
//
// # Usage
//
//	var gate dispatch.Gate
//	exec := dispatch.NewExecutor()
//
//	gate.Enter(func() {
//	    dispatch.RunSequence(loop, []func(){
//	        func() { exec.Execute("ping", first) },
//	        func() { exec.Execute("ping", second) },
//	    }, gate.Release)
//	})
package dispatch
