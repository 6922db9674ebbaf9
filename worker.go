package forkjoin

import "sync"

// Worker owns a deque, a cactus stack, a submission inbox, and a sleep
// wakeword.
type Worker struct {
	id    int
	pool  *Pool
	deque *chaseLevDeque
	stack *cactusStack

	inboxMu sync.Mutex
	inboxQ  []*Frame

	wake chan struct{}
}

func newWorker(p *Pool, id int) *Worker {
	return &Worker{
		id:    id,
		pool:  p,
		deque: newChaseLevDeque(),
		stack: newCactusStack(p.free),
		wake:  make(chan struct{}, 1),
	}
}

// submitInbox implements the MPSC submission queue attached to each
// worker, used both for external root submissions and for context-switch
// targets.
func (w *Worker) submitInbox(f *Frame) {
	w.inboxMu.Lock()
	w.inboxQ = append(w.inboxQ, f)
	w.inboxMu.Unlock()
	w.pool.log.workerEvent(w.id, "inbox push")
	w.pool.wakeOne()
}

func (w *Worker) drainInbox() []*Frame {
	w.inboxMu.Lock()
	if len(w.inboxQ) == 0 {
		w.inboxMu.Unlock()
		return nil
	}
	items := w.inboxQ
	w.inboxQ = nil
	w.inboxMu.Unlock()
	return items
}

func (w *Worker) inboxEmpty() bool {
	w.inboxMu.Lock()
	empty := len(w.inboxQ) == 0
	w.inboxMu.Unlock()
	return empty
}

// wakeOne pulses this worker's wakeword, used both to wake it from sleep
// and to unblock it during shutdown.
func (w *Worker) wakeOne() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// loop is the worker's body: drain inbox, pop local, steal, sleep, repeat.
// It runs on its own goroutine for every scheduler except the inline one,
// which never starts one.
func (w *Worker) loop(wg *sync.WaitGroup) {
	defer wg.Done()
	w.pool.log.workerEvent(w.id, "start")
	for {
		if w.runOnce() {
			continue
		}
		if w.pool.isShutdown() {
			w.pool.log.workerEvent(w.id, "stop")
			return
		}
		if w.pool.spin {
			continue
		}
		if w.sleep() {
			continue
		}
		if w.pool.isShutdown() {
			w.pool.log.workerEvent(w.id, "stop")
			return
		}
	}
}

// runOnce drains the inbox and tries local/stolen work once, reporting
// whether it made progress.
func (w *Worker) runOnce() bool {
	did := false
	for _, f := range w.drainInbox() {
		w.runFrame(f)
		did = true
	}
	if did {
		return true
	}

	if f, ok := w.deque.Pop(); ok {
		w.runFrame(f)
		return true
	}

	if f := w.steal(); f != nil {
		w.runFrame(f)
		return true
	}

	return false
}

// steal chooses a victim per the pool's VictimStrategy and retries up to
// stealRetries times across victims before giving up for this iteration.
func (w *Worker) steal() *Frame {
	n := len(w.pool.workers)
	if n <= 1 {
		return nil
	}
	for attempt := 0; attempt < w.pool.stealRetries; attempt++ {
		vi := w.pool.victims(w.id, n, attempt)
		if vi == w.id {
			continue
		}
		victim := w.pool.workers[vi]
		f, ok := victim.deque.Steal()
		if !ok {
			continue
		}
		stackForSteal(w.stack, victim.stack)
		w.pool.log.workerEvent(w.id, "steal")
		return f
	}
	w.pool.log.stealExhausted(w.id)
	return nil
}

// sleep marks self sleeping, re-checks for work under that state, and
// only actually parks if still empty — closing the race where a publish
// lands between the last empty check and going to sleep. Reports whether
// it found work instead of sleeping.
func (w *Worker) sleep() bool {
	w.pool.sleeping[w.id].Store(true)
	w.pool.log.sleep(w.id)

	if !w.inboxEmpty() || !w.deque.Empty() {
		w.pool.sleeping[w.id].Store(false)
		return true
	}

	<-w.wake
	w.pool.sleeping[w.id].Store(false)
	w.pool.log.wake(w.id)
	return false
}
