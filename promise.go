package forkjoin

// Task is one continuation-passing-style segment of an async function's
// body: an explicit state machine driven by a trampoline. Running
// task(w, f) executes synchronously up to the next suspension point and
// returns the next segment to run with the same frame, or nil once f has
// nothing left to run on this call stack — either because f truly
// finished, or because resuming it has become someone else's
// responsibility under the join protocol.
type Task func(w *Worker, f *Frame) Task

// Body is user code: given the first-argument capability handle, it
// produces the first Task segment of one invocation.
type Body func(ctx *Ctx) Task

// Ctx is the first-argument capability set passed to every task body: tag,
// current-worker access, and exception stashing.
type Ctx struct {
	w *Worker
	f *Frame
}

// Tag reports how the current task was invoked.
func (c *Ctx) Tag() Tag { return c.f.tag }

// Worker returns the worker currently running the task. Task bodies must
// not retain it past a suspension point (fork/join/context switch), since
// the runtime may resume them on a different worker.
func (c *Ctx) Worker() *Worker { return c.w }

// Stash captures err into the current frame's exception slot without
// unwinding. It is re-raised at the next join that observes this frame.
func (c *Ctx) Stash(err error) { c.f.stash(err, nil) }

// Return finishes the current frame with value v.
func Return(v any) Task {
	return func(w *Worker, f *Frame) Task {
		w.finish(f, v)
		return nil
	}
}

// Throw finishes the current frame by stashing err into its exception
// slot, to be propagated at the next join.
func Throw(err error) Task {
	return func(w *Worker, f *Frame) Task {
		f.stash(err, nil)
		w.finish(f, nil)
		return nil
	}
}

// Fork publishes the current frame's continuation (then) onto the local
// deque, making it stealable, then dives into running body's child
// inline. slot receives the child's result; read it only after a Join
// that follows this Fork.
func Fork(body Body, slot *any, then Task) Task {
	return func(w *Worker, f *Frame) Task {
		return w.fork(f, body, slot, then)
	}
}

// Call runs body's child inline without publishing f's continuation; f
// cannot be stolen while the call is in flight.
func Call(body Body, slot *any, then Task) Task {
	return func(w *Worker, f *Frame) Task {
		return w.call(f, body, slot, then)
	}
}

// Join waits for every outstanding forked child of f before running then.
func Join(then Task) Task {
	return func(w *Worker, f *Frame) Task {
		return w.join(f, then)
	}
}

// Invoke forks and joins a nested task in one step, delivering its value
// to then.
func Invoke(body Body, then func(v any) Task) Task {
	var slot any
	return Fork(body, &slot, Join(func(w *Worker, f *Frame) Task {
		return then(slot)
	}))
}

// ContextSwitch submits the current continuation to dest's inbox and
// suspends; then runs once dest resumes it.
func ContextSwitch(dest *Worker, then Task) Task {
	return func(w *Worker, f *Frame) Task {
		return w.contextSwitch(f, dest, then)
	}
}

// runGuarded runs fn, capturing any panic into f's exception slot instead
// of letting it unwind past the trampoline: a task body's uncaught
// failure is captured, not rethrown.
func runGuarded(f *Frame, fn func()) {
	f.ps.Try(fn)
}

// runFrame drives f to completion on w, including every child it forks or
// calls along the way, for as long as resumption keeps landing on w. It
// returns once f has nothing left to run on this call stack.
func (w *Worker) runFrame(f *Frame) {
	for {
		next := f.task(w, f)
		if next == nil {
			return
		}
		f.task = next
	}
}

// finish records f's result and runs its final suspend. Root frames
// signal their semaphore; non-root frames run the child-side join
// protocol against their parent.
func (w *Worker) finish(f *Frame, value any) {
	f.result = value
	switch f.tag {
	case TagRoot:
		w.finishRoot(f)
	case TagCall, TagFork:
		// Absorption and parent resumption for both tags are driven by
		// the caller: call and fork's own not-stolen branch absorb and
		// decide inline via afterChild, and a stolen fork's completion is
		// absorbed and resumed by (*Worker).childReportIn. Nothing
		// further happens at a forked or called frame's own final
		// suspend.
	}
}

// finishRoot signals the semaphore a blocked submitter is waiting on.
func (w *Worker) finishRoot(f *Frame) {
	f.sem.Release(1)
}

// afterChild is the common decision point once a child frame — forked or
// called — has reported in on the same call stack that owns f. If f
// already carries a failure (its own, or absorbed from this or an earlier
// child) and has no other child still outstanding, f finishes right here
// instead of handing control to then: then may be, or lead to, a join
// callback that reads a result slot a failed child never wrote. Otherwise
// then keeps running; if it is itself a join, it makes this same decision
// once every remaining child is accounted for.
func (w *Worker) afterChild(f *Frame, then Task) Task {
	if f.failed() && f.tryJoinFast() {
		f.resetJoinState()
		w.finish(f, nil)
		return nil
	}
	return then
}

// call runs a fresh child frame inline, on the same call stack, writing
// its result into slot before resuming then. The parent is never
// published, so no deque interaction occurs here at all.
func (w *Worker) call(parent *Frame, body Body, slot *any, then Task) Task {
	child, seg := w.stack.allocFrame()
	initChild(child, parent, TagCall, seg, nil)
	ctx := &Ctx{w: w, f: child}
	child.task = body(ctx)

	runGuarded(child, func() { w.runFrame(child) })
	*slot = child.result
	if child.failed() {
		parent.absorb(child)
	}
	return w.afterChild(parent, then)
}

// fork implements the interlocking parent-side / child-side protocol
// halves described in DESIGN.md: steals is incremented eagerly at push
// time (still single-threaded at that instant) and reverted if the owner
// pops its own entry back unstolen.
func (w *Worker) fork(parent *Frame, body Body, slot *any, then Task) Task {
	parent.steals++
	parent.task = then
	w.deque.Push(parent)
	w.pool.wakeOne()

	child, seg := w.stack.allocFrame()
	initChild(child, parent, TagFork, seg, nil)
	ctx := &Ctx{w: w, f: child}
	child.task = body(ctx)

	runGuarded(child, func() { w.runFrame(child) })
	*slot = child.result

	if entry, ok := w.deque.Pop(); ok {
		if entry != parent {
			invariantViolation("deque LIFO discipline violated")
		}
		parent.steals--
		if child.failed() {
			parent.absorb(child)
		}
		return w.afterChild(parent, then)
	}

	return w.childReportIn(parent, child)
}

// childReportIn is the child-side step run when the pushed continuation
// was actually stolen: report completion via the atomic join counter and,
// if we are the last child home, resume the parent ourselves.
func (w *Worker) childReportIn(parent, child *Frame) Task {
	loc := parent.snapshotLocale()

	if child.failed() {
		parent.absorb(child)
	}

	if parent.childReportIn() {
		acquireFence(&parent.joins)
		w.takeOverStack(loc)
		parent.resetJoinState()
		return parent.task
	}

	if !loc.isRoot && loc.top == w.stack.top() {
		w.stack.popASP()
	}
	return nil
}

// join runs the parent-side protocol: fast path, slow path, and genuine
// suspend. On every path that resolves, it defers to afterChild rather than
// running then directly, so a failure absorbed from any joined child is
// re-raised through f's own final suspend instead of reaching then's
// result-slot reads.
func (w *Worker) join(f *Frame, then Task) Task {
	if f.tryJoinFast() {
		f.resetJoinState()
		return w.afterChild(f, then)
	}
	if f.tryJoinSlow() {
		w.takeOverStack(f.snapshotLocale())
		f.resetJoinState()
		return w.afterChild(f, then)
	}
	if f.beginSuspend() {
		w.takeOverStack(f.snapshotLocale())
		f.resetJoinState()
		return w.afterChild(f, then)
	}
	// Genuine suspend: some child's childReportIn will resume f from here.
	return nil
}

// takeOverStack re-establishes f's stack segment as the calling worker's
// active top if it is not already; a no-op for root frames, which have
// none.
func (w *Worker) takeOverStack(loc locale) {
	if loc.isRoot || loc.top == nil {
		return
	}
	if w.stack.top() != loc.top {
		w.stack.pushASP(loc.top)
	}
}

// contextSwitch parks f's continuation in dest's inbox and lets this call
// stack stop driving f; dest's worker loop resumes it by calling
// runFrame(f) itself.
func (w *Worker) contextSwitch(f *Frame, dest *Worker, then Task) Task {
	if dest.pool != w.pool {
		invariantViolation("context switch target is not in this pool")
	}
	f.task = then
	dest.submitInbox(f)
	return nil
}
