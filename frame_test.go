package forkjoin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameResetJoinStateInvariant(t *testing.T) {
	f := newRootFrame(nil)
	f.steals = 3
	f.joins.Store(5)

	f.resetJoinState()

	require.Equal(t, uint32(0), f.steals)
	require.Equal(t, noPendingJoins, f.joins.Load())
	require.Equal(t, uint32(0), f.joinedSoFar())
}

func TestFrameTryJoinFastNoChildrenEverForked(t *testing.T) {
	f := newRootFrame(nil)
	require.True(t, f.tryJoinFast(), "a frame nothing was ever forked from joins immediately")
}

// All children report in before the parent ever reaches join: tryJoinSlow
// must catch this directly from the joinedSoFar count, since none of the
// individual report-ins had a rebased counter to detect "last" against.
func TestFrameTryJoinSlowAllStolenChildrenReportedBeforeJoin(t *testing.T) {
	f := newRootFrame(nil)
	f.steals = 2
	require.False(t, f.tryJoinFast())
	require.False(t, f.tryJoinSlow(), "no child has reported yet")

	f.childReportIn()
	require.False(t, f.tryJoinSlow(), "one of two children still outstanding")

	f.childReportIn()
	require.True(t, f.tryJoinSlow(), "both children reported in, join should now resolve without suspending")
}

// The parent reaches join while its lone forked child is still running:
// beginSuspend must rebase the counter and report that a genuine suspend
// is required, and the child's later report-in must recognize itself as
// last against the rebased counter.
func TestFrameBeginSuspendSingleChildStillOutstanding(t *testing.T) {
	f := newRootFrame(nil)
	f.steals = 1

	require.False(t, f.tryJoinFast())
	require.False(t, f.tryJoinSlow())

	resolvedSynchronously := f.beginSuspend()
	require.False(t, resolvedSynchronously, "no child has reported in yet, so the join must suspend")

	last := f.childReportIn()
	require.True(t, last, "the lone child is always the last child once the rebase happened")
}

// When the lone forked child finishes and reports in before the parent
// ever calls join, the eventual join call should resolve via the fast
// slow-path check rather than needing to suspend at all.
func TestFrameSingleChildReportsInBeforeJoinIsCalled(t *testing.T) {
	f := newRootFrame(nil)
	f.steals = 1

	last := f.childReportIn()
	require.False(t, last, "report-ins ahead of any join/beginSuspend call carry no 'last' signal")

	require.False(t, f.tryJoinFast())
	require.True(t, f.tryJoinSlow(), "the slow path must see the child's completion directly")
}

// Of three forked children, one reports in before the parent reaches
// join; beginSuspend rebases around that one completion, and the
// remaining two report-ins must still correctly identify the truly last
// one.
func TestFrameBeginSuspendMultipleChildrenMixedOrdering(t *testing.T) {
	f := newRootFrame(nil)
	f.steals = 3

	require.False(t, f.childReportIn(), "first report-in precedes any rebase and carries no signal")

	resolvedSynchronously := f.beginSuspend()
	require.False(t, resolvedSynchronously, "two children are still outstanding after the rebase")

	require.False(t, f.childReportIn(), "second of three overall, still one outstanding")
	last := f.childReportIn()
	require.True(t, last, "the third report-in, arriving after the rebase, must be recognized as last")
}

func TestFrameAbsorbChainsFailuresWithoutDropping(t *testing.T) {
	parent := newRootFrame(nil)
	childA := &Frame{}
	childB := &Frame{}
	childA.stash("boom a", nil)
	childB.stash("boom b", nil)

	parent.absorb(childA)
	parent.absorb(childB)

	require.True(t, parent.failed())
	require.Len(t, parent.ps, 2)

	err := parent.ps.AsError()
	require.Error(t, err)
	unwrapped, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	require.Len(t, unwrapped.Unwrap(), 2)
}

func TestFrameSnapshotLocaleReportsRootWithNoStack(t *testing.T) {
	f := newRootFrame(nil)
	loc := f.snapshotLocale()
	require.True(t, loc.isRoot)
	require.Nil(t, loc.top)
}
