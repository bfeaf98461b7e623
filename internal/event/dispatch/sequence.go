package dispatch

// RunSequence schedules steps one at a time on s: step i+1 is scheduled only
// after step i has returned, so the steps of one sequence never interleave
// with each other. done is called in the same task as the last step. With no
// steps, done is called immediately.
//
// Steps must not panic; wrap listener calls with an Executor.
func RunSequence(s Scheduler, steps []func(), done func()) {
	if s == nil {
		panic(ErrNilScheduler)
	}
	if len(steps) == 0 {
		if done != nil {
			done()
		}
		return
	}

	var next func(i int)
	next = func(i int) {
		s.Schedule(func() error {
			steps[i]()
			if i+1 < len(steps) {
				next(i + 1)
			} else if done != nil {
				done()
			}
			return nil
		})
	}
	next(0)
}

// ScheduleEach schedules every step at once, in order. Each step runs in its
// own task with no ordering relative to tasks scheduled by others in the
// meantime.
func ScheduleEach(s Scheduler, steps []func()) {
	if s == nil {
		panic(ErrNilScheduler)
	}
	for _, step := range steps {
		s.Schedule(func() error {
			step()
			return nil
		})
	}
}
