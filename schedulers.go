package forkjoin

// UnitPool is a single-threaded scheduler with no worker goroutine at
// all. A submitted root task runs out on the calling goroutine. Because
// nothing exists to steal from it, every fork's owner always pops its own
// push back, so call-fork equivalence falls out of the join protocol
// automatically rather than needing a special case here.
func UnitPool(opts ...Option) *Pool {
	o := buildOptions(opts)
	o.workers = 1
	o.inline = true
	return newPool(o)
}

// BusyPool is a scheduler where every worker spin-steals continuously and
// never parks on its wakeword.
func BusyPool(opts ...Option) *Pool {
	o := buildOptions(opts)
	o.spin = true
	return newPool(o)
}

// LazyPool is a scheduler where workers steal with a bounded retry
// budget, then sleep until woken by a publish.
func LazyPool(opts ...Option) *Pool {
	o := buildOptions(opts)
	return newPool(o)
}
