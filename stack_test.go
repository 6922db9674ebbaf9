package forkjoin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentAllocFillsAndReports(t *testing.T) {
	s := newSegment()
	for i := 0; i < segmentCapacity; i++ {
		require.NotNil(t, s.alloc())
	}
	require.Nil(t, s.alloc(), "segment should refuse allocation once full")
}

func TestSegmentFreeListReusesClearedSegments(t *testing.T) {
	fl := &segmentFreeList{}
	s := newSegment()
	s.alloc()
	fl.push(s)

	got := fl.pop()
	require.Same(t, s, got)
	require.Equal(t, int32(0), got.used.Load(), "popped segment must come back cleared")
	require.Nil(t, fl.pop(), "free list should be empty after draining its one entry")
}

func TestCactusStackAllocFrameCrossesSegments(t *testing.T) {
	fl := &segmentFreeList{}
	cs := newCactusStack(fl)
	first := cs.top()

	for i := 0; i < segmentCapacity; i++ {
		_, seg := cs.allocFrame()
		require.Same(t, first, seg)
	}

	_, seg := cs.allocFrame()
	require.NotSame(t, first, seg, "allocating past capacity must push a fresh segment")
	require.Same(t, seg, cs.top())
}

func TestStackForStealTransfersOwnership(t *testing.T) {
	fl := &segmentFreeList{}
	thief := newCactusStack(fl)
	victim := newCactusStack(fl)
	victimTop := victim.top()

	stolen := stackForSteal(thief, victim)

	require.Same(t, victimTop, stolen)
	require.Same(t, victimTop, thief.top())
	require.NotSame(t, victimTop, victim.top(), "victim must swap to a fresh segment")
}
