// Package eventloop provides a cooperative, single-goroutine task queue.
//
// Tasks scheduled on a Loop run one after another on the goroutine that
// called Start, in the order they were scheduled. A task may schedule more
// tasks; they run on later turns of the same Start call.
//
// Work coming from other goroutines enters the loop through
// RegisterCallback: the loop stays alive while any registered callback is
// outstanding, and the function passed to the callback is queued when it is
// called.
//
//	loop := eventloop.New()
//	enqueue := loop.RegisterCallback()
//	go func() {
//	    result := fetch()
//	    enqueue(func() error { return handle(result) })
//	}()
//	err := loop.Start(nil)
package eventloop
