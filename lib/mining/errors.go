// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import "fmt"

// InvalidParameterError reports a caller-supplied parameter outside
// its documented domain (a support/confidence outside (0,1], an
// inverted or out-of-range bucket range, and the like).
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// ConcurrentBatchError is returned by Coordinator.ProcessBatch when a
// previous batch's supersets are still being mined. The coordinator
// has no concept of queuing; the caller must wait for the previous
// call to return before starting another.
type ConcurrentBatchError struct{}

func (e *ConcurrentBatchError) Error() string {
	return "a batch is already being processed"
}

// InvariantViolationError signals that internal bookkeeping (tilted
// time window bucket math, oldestBucketFilled accounting, pattern
// tree node counts) has gone out of sync with itself. This is always
// a programming error, never a consequence of bad input; see
// AssertInvariant.
type InvariantViolationError struct {
	What string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.What)
}

// Debug gates whether AssertInvariant panics (development builds) or
// silently turns the offending operation into a no-op (release
// builds). The core has no I/O and no partial-failure modes, so this
// is the only place severity is configurable.
var Debug = false

// AssertInvariant panics with an InvariantViolationError when Debug is
// set and cond is false. In non-debug builds it returns the error so
// the caller can make the operation a no-op instead.
func AssertInvariant(cond bool, what string) error {
	if cond {
		return nil
	}
	err := &InvariantViolationError{What: what}
	if Debug {
		panic(err)
	}
	return err
}
