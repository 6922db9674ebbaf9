package forkjoin

// options collects functional-option state for constructing a Pool.
type options struct {
	workers      int
	logger       *Logger
	victims      VictimStrategy
	stealRetries int
	spin         bool
	inline       bool
}

// Option configures a Pool before construction.
type Option func(*options)

// WithWorkers sets the worker count. Zero or unset sizes the pool from
// runtime.GOMAXPROCS(0), after automaxprocs has had a chance to correct it
// for a cgroup-limited container.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger attaches a structured logger.
func WithLogger(l *Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithVictims overrides the victim-selection strategy used when stealing.
func WithVictims(v VictimStrategy) Option {
	return func(o *options) { o.victims = v }
}

// WithStealRetries sets how many victims a worker tries before giving up
// and either spinning again or sleeping.
func WithStealRetries(k int) Option {
	return func(o *options) { o.stealRetries = k }
}

func buildOptions(opts []Option) options {
	var o options
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
