package dispatch

// fifo is a minimal single-goroutine Scheduler for tests.
type fifo struct {
	tasks []func() error
	ticks int
}

func (q *fifo) Schedule(task func() error) {
	q.tasks = append(q.tasks, task)
}

// tick runs the oldest task. It reports false when the queue is empty.
func (q *fifo) tick() bool {
	if len(q.tasks) == 0 {
		return false
	}
	task := q.tasks[0]
	q.tasks = q.tasks[1:]
	q.ticks++
	_ = task()
	return true
}

func (q *fifo) drain() {
	for q.tick() {
	}
}
