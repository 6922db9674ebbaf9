package forkjoin

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Tag records how a task was invoked: root tasks are submitted externally
// and heap-allocated, call tasks run inline and are never published, fork
// tasks publish their continuation and so may be stolen.
type Tag uint8

const (
	TagRoot Tag = iota
	TagCall
	TagFork
)

func (t Tag) String() string {
	switch t {
	case TagRoot:
		return "root"
	case TagCall:
		return "call"
	case TagFork:
		return "fork"
	default:
		return "tag(?)"
	}
}

// noPendingJoins is the sentinel joins value (U32_MAX) that decodes to
// zero pending joins.
const noPendingJoins = ^uint32(0)

// locale is the (is_root, stack_top) snapshot a finishing child must
// capture before touching anything that might race the parent being reset
// or recycled out from under it.
type locale struct {
	isRoot bool
	top    *segment
}

// Frame is the per-task control block of the scheduler. It is reachable
// from any worker that currently owns it; ownership transfers at steal
// time and at join-race resolution, never implicitly.
type Frame struct {
	parent *Frame
	tag    Tag

	// task is the next continuation to run when this frame is resumed — the
	// CPS trampoline's program counter, the opaque handle to the suspended
	// computation. See promise.go.
	task Task

	stackTop *segment // segment holding this frame's locals; nil for root

	steals uint32        // owner-only
	joins  atomic.Uint32 // encoded U32_MAX − pending_joins

	ps panicstack // stashed exception(s)

	// root-only: completion signal and outcome.
	sem    *semaphore.Weighted
	result any
}

func newRootFrame(t Task) *Frame {
	f := &Frame{tag: TagRoot, task: t, sem: semaphore.NewWeighted(1)}
	f.resetJoinState()
	// Acquired here, at zero cost since nothing else holds it yet, so the
	// waiter in SubmitContext blocks until finishRoot releases it.
	_ = f.sem.Acquire(context.Background(), 1)
	return f
}

// initChild installs f as a fresh fork/call frame bump-allocated from seg,
// owned by parent.
func initChild(f *Frame, parent *Frame, tag Tag, seg *segment, t Task) *Frame {
	f.parent = parent
	f.tag = tag
	f.task = t
	f.stackTop = seg
	f.steals = 0
	f.joins.Store(noPendingJoins)
	f.ps = nil
	f.sem = nil
	f.result = nil
	return f
}

// resetJoinState restores the frame to the invariant required at
// destruction, and that a completed join also re-establishes: steals == 0
// and joins decodes to zero pending.
func (f *Frame) resetJoinState() {
	f.steals = 0
	f.joins.Store(noPendingJoins)
}

// joinedSoFar returns how many forked children have reported completion,
// decoded from the atomic joins field with acquire ordering.
func (f *Frame) joinedSoFar() uint32 {
	return noPendingJoins - f.joins.Load()
}

// snapshotLocale captures f's locale before any operation that might race
// f being concurrently reset or recycled.
func (f *Frame) snapshotLocale() locale {
	return locale{isRoot: f.tag == TagRoot, top: f.stackTop}
}

// tryJoinFast is the parent-side fast path: no children ever escaped onto
// the deque, so the owner already ran them all sequentially.
func (f *Frame) tryJoinFast() bool {
	return f.steals == 0
}

// tryJoinSlow is the parent-side slow path: check whether every stolen
// child has already reported in.
func (f *Frame) tryJoinSlow() bool {
	return f.joinedSoFar() == f.steals
}

// beginSuspend is the parent-side path for when the parent genuinely has
// outstanding children. It re-bases joins to read as steals-minus-completed
// and reports whether the caller itself raced the last child home (in
// which case the caller must resume synchronously rather than suspend).
func (f *Frame) beginSuspend() bool {
	delta := noPendingJoins - f.steals
	old := fetchSub(&f.joins, delta)
	if old == delta {
		acquireFence(&f.joins)
		return true
	}
	return false
}

// childReportIn is the child-side fetch_sub(1, release): called by a
// finishing non-root frame once it has determined its parent's
// continuation was actually stolen (not sitting unclaimed in the local
// deque). Reports whether the caller is the last child, and must resume
// the parent itself.
func (f *Frame) childReportIn() bool {
	old := fetchSub(&f.joins, 1)
	return old == 1
}

// stash captures a failure raised while running this frame's task body.
func (f *Frame) stash(v any, stack []byte) {
	f.ps.push(v, stack)
}

// absorb merges a joined child's stashed failures into f; see the
// chained-causes decision recorded in DESIGN.md.
func (f *Frame) absorb(child *Frame) {
	f.ps.absorb(child.ps)
}

// failed reports whether f (or a child it has absorbed) stashed a failure.
func (f *Frame) failed() bool {
	return len(f.ps) != 0
}
