// Package forkjoin is a structured fork/join parallelism runtime: a
// work-stealing scheduler together with the task protocol that runs on top
// of it.
//
// Application code expresses recursive divide-and-conquer computations by
// composing [Fork], [Call], [Join] and [Invoke] into a [Task] chain; the
// scheduler transparently parallelises forked continuations across a pool
// of worker threads, stealing idle workers' way into whichever branch is
// still outstanding.
//
// # Fork vs. Call
//
// [Fork] publishes the forking frame's continuation onto its worker's
// local deque before diving into the forked child, so another worker may
// steal it while the child runs. [Call] never publishes anything: it
// transfers control to its child inline, on the same worker, and is
// indistinguishable in cost from an ordinary function call.
//
// On a [UnitPool], nothing ever steals, so every fork degenerates to a
// call: the two are observationally identical there.
//
// # Joining
//
// [Join] is the barrier that waits for every outstanding forked child of
// the current frame. Whichever worker happens to finish the last
// outstanding child resumes the joining frame; there is no guarantee it
// resumes on the worker that started it.
//
// # Failures
//
// A task body fails by panicking (or by calling [Ctx.Stash] directly). The
// failure is captured into the frame's exception slot, not rethrown at the
// point it occurred; it surfaces at the next [Join] that observes it, and
// ultimately at [Submit]'s caller if it escapes every join along the way.
// Failures from multiple concurrently-failing children are chained, not
// dropped: the resulting error implements Unwrap() []error.
//
// # Schedulers
//
// Three schedulers satisfy the package's Scheduler contract: [UnitPool]
// (single worker, no goroutines, forks degrade to calls), [BusyPool]
// (every worker spin-steals continuously) and [LazyPool] (workers steal
// with a bounded retry budget, then sleep until woken by a push).
package forkjoin
