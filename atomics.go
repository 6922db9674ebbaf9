package forkjoin

import "sync/atomic"

// acquireFence observes v with acquire ordering, establishing a
// happens-before relationship with whatever release-ordered store last wrote
// it. Used where the join protocol needs an acquire fence without itself
// needing the loaded value.
func acquireFence(v *atomic.Uint32) {
	_ = v.Load()
}

// fetchSub atomically subtracts delta from v and returns the prior value,
// matching the fetch_sub semantics the join counter relies on. sync/atomic
// has no native FetchSub for unsigned types, so it is expressed as a
// two's-complement add.
func fetchSub(v *atomic.Uint32, delta uint32) uint32 {
	return v.Add(-delta) + delta
}
