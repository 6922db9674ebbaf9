package forkjoin

import "context"

// Submit is the sync-wait entry point: submit(scheduler, root_task) →
// value. It schedules body as a root task on sched, blocks the calling
// goroutine on the root frame's semaphore, and returns the task's value
// or re-raises its failure as an error.
func Submit(sched Scheduler, body Body) (any, error) {
	return SubmitContext(context.Background(), sched, body)
}

// SubmitContext is Submit with cancellation: if ctx is done before the root
// task completes, it returns ctx.Err() without waiting further. The root
// task itself keeps running to completion on the pool regardless, since
// there is no cancellation-at-task-granularity mechanism; only the waiting
// caller can give up early.
func SubmitContext(ctx context.Context, sched Scheduler, body Body) (any, error) {
	root := newRootFrame(nil)
	root.task = func(w *Worker, f *Frame) Task {
		return body(&Ctx{w: w, f: f})
	}

	sched.submit(root)

	if err := root.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	if err := root.ps.AsError(); err != nil {
		if p, ok := sched.(*Pool); ok {
			p.log.rootFailure(err)
		}
		return nil, err
	}
	return root.result, nil
}
