package forkjoin

import (
	"io"

	"github.com/joeycumines/go-utilpkg/logiface"
	"github.com/joeycumines/go-utilpkg/logiface/stumpy"
)

// Logger is the structured logger a Pool optionally reports to. A nil
// Logger is valid and silences every call site below.
type Logger = logiface.Logger[*stumpy.Event]

// NewLogger builds a stumpy-backed JSON logger writing to w, for callers
// that don't already have a logiface.Logger[*stumpy.Event] of their own.
func NewLogger(w io.Writer) *Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w)))
}

// poolLogger adapts a *Logger into the handful of call sites the pool and
// its workers need, tolerating a nil logger (the zero-value Pool logs
// nothing).
type poolLogger struct {
	l *Logger
}

func newPoolLogger(l *Logger) *poolLogger {
	return &poolLogger{l: l}
}

func (pl *poolLogger) workerEvent(id int, what string) {
	if pl == nil || pl.l == nil {
		return
	}
	pl.l.Debug().Int("worker", id).Str("event", what).Log("forkjoin worker event")
}

func (pl *poolLogger) stealExhausted(id int) {
	if pl == nil || pl.l == nil {
		return
	}
	pl.l.Warning().Int("worker", id).Log("forkjoin steal retries exhausted")
}

func (pl *poolLogger) sleep(id int) {
	if pl == nil || pl.l == nil {
		return
	}
	pl.l.Debug().Int("worker", id).Log("forkjoin worker sleeping")
}

func (pl *poolLogger) wake(id int) {
	if pl == nil || pl.l == nil {
		return
	}
	pl.l.Debug().Int("worker", id).Log("forkjoin worker woke")
}

func (pl *poolLogger) shutdown() {
	if pl == nil || pl.l == nil {
		return
	}
	pl.l.Debug().Log("forkjoin pool shutdown")
}

func (pl *poolLogger) rootFailure(err error) {
	if pl == nil || pl.l == nil {
		return
	}
	pl.l.Err().Err(err).Log("forkjoin root task failed")
}
