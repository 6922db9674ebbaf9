package forkjoin

import "fmt"

// invariantViolation panics with a consistently prefixed message,
// reporting a runtime invariant violation: an internal bug, not a
// recoverable task failure.
func invariantViolation(format string, args ...any) {
	panic("forkjoin: internal error: " + fmt.Sprintf(format, args...))
}
