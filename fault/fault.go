// Package fault holds the fatal error taxonomy of the setup pass.
//
// A consistency violation (duplicate set name, unknown color, ordinal out of range, missing subphase)
// is an upstream contract breach and aborts the pass. Nothing here is recoverable or retried.
package fault

import (
	"errors"
	"fmt"
)

var (
	ErrConsistency    = errors.New("consistency violation")
	ErrNotImplemented = errors.New("not implemented")
)

// Assert panics with an ErrConsistency error carrying the formatted message when cond is false
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Errorf("%w: %s", ErrConsistency, fmt.Sprintf(format, args...)))
	}
}

// Panicf always panics with an ErrConsistency error
func Panicf(format string, args ...interface{}) {
	panic(fmt.Errorf("%w: %s", ErrConsistency, fmt.Sprintf(format, args...)))
}

// NotImplemented panics with an ErrNotImplemented error naming the unsupported case
func NotImplemented(format string, args ...interface{}) {
	panic(fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, args...)))
}

// Recover converts a fault panic back into an error, re-panicking on anything else.
// Use it in a deferred call at the boundary that reports the failure.
func Recover(errp *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok && (errors.Is(err, ErrConsistency) || errors.Is(err, ErrNotImplemented)) {
			*errp = err
			return
		}
		panic(r)
	}
}
