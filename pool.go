package forkjoin

import (
	"runtime"
	"sync"
	"sync/atomic"

	_ "go.uber.org/automaxprocs"
)

// Scheduler is the contract any pool embedder must satisfy: something that
// accepts an externally submitted root frame.
type Scheduler interface {
	submit(f *Frame)
	shutdown()
}

// Pool owns the worker set, a shared free list of stack segments, and the
// sleeping-workers coordination state.
type Pool struct {
	workers      []*Worker
	free         *segmentFreeList
	sleeping     []atomic.Bool
	stealRetries int
	victims      VictimStrategy
	spin         bool // busy_pool: never sleep, just keep spin-stealing
	inline       bool // unit_pool: no worker goroutines; submit runs synchronously
	log          *poolLogger

	wg          sync.WaitGroup
	shutdownSet atomic.Bool
}

// VictimStrategy picks which worker a thief should try to steal from next,
// given the thief's own id, the pool size, and the attempt number within
// the current retry budget.
type VictimStrategy func(self, poolSize, attempt int) int

// SequentialVictims scans victims in a fixed round-robin order starting
// just after self.
func SequentialVictims(self, poolSize, attempt int) int {
	return (self + 1 + attempt) % poolSize
}

func defaultWorkerCount() int {
	return runtime.GOMAXPROCS(0)
}

func newPool(opts options) *Pool {
	n := opts.workers
	if n <= 0 {
		n = defaultWorkerCount()
	}
	if n <= 0 {
		n = 1
	}

	p := &Pool{
		free:         &segmentFreeList{},
		sleeping:     make([]atomic.Bool, n),
		stealRetries: opts.stealRetries,
		victims:      opts.victims,
		spin:         opts.spin,
		inline:       opts.inline,
		log:          newPoolLogger(opts.logger),
	}
	if p.victims == nil {
		p.victims = SequentialVictims
	}
	if p.stealRetries <= 0 {
		p.stealRetries = 32
	}

	p.workers = make([]*Worker, n)
	for i := range p.workers {
		p.workers[i] = newWorker(p, i)
	}

	if !p.inline {
		p.wg.Add(n)
		for _, w := range p.workers {
			go w.loop(&p.wg)
		}
	}
	return p
}

// submit implements Scheduler: hands a root frame to a worker's inbox,
// preferring worker 0 for a deterministic, single-queue submission shape.
// An inline pool has no worker goroutine at all, so submission there just
// runs the frame out on the caller's own stack.
func (p *Pool) submit(f *Frame) {
	p.log.workerEvent(-1, "submit")
	if p.inline {
		p.workers[0].runFrame(f)
		return
	}
	p.workers[0].submitInbox(f)
}

// shutdown implements the pool's cooperative shutdown: set the flag, pulse
// every wakeword, and wait for in-flight work to drain.
func (p *Pool) shutdown() {
	if !p.shutdownSet.CompareAndSwap(false, true) {
		return
	}
	p.log.shutdown()
	for _, w := range p.workers {
		w.wakeOne()
	}
	p.wg.Wait()
}

// Shutdown stops every worker goroutine after in-flight work drains. Safe
// to call more than once; safe to call on an inline pool, which has no
// goroutines to stop.
func (p *Pool) Shutdown() { p.shutdown() }

func (p *Pool) isShutdown() bool {
	return p.shutdownSet.Load()
}

// Worker returns the i'th worker in the pool, for combinators like
// [ContextSwitch] that need to name a specific worker as a destination.
func (p *Pool) Worker(i int) *Worker { return p.workers[i] }

// NumWorkers reports how many workers the pool was built with.
func (p *Pool) NumWorkers() int { return len(p.workers) }

// wakeOne runs after a publish: check the sleeping bitmap and wake exactly
// one sleeper, if any.
func (p *Pool) wakeOne() {
	for i := range p.sleeping {
		if p.sleeping[i].CompareAndSwap(true, false) {
			p.workers[i].wakeOne()
			return
		}
	}
}
