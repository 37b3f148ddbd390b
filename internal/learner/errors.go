package learner

import (
	"context"
	"errors"
	"fmt"
)

// ErrAuthExpired indicates the platform no longer accepts the session
// cookies. The core surfaces it to the caller; it never tries to re-login.
var ErrAuthExpired = errors.New("platform session expired")

// TransportError wraps a network-level failure (timeout, connection reset,
// non-success status). Transport errors are retryable.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolShapeError indicates an expected field was absent from a response
// body. Shape errors are item-scoped and never retried: the remote page does
// not have the form we depend on, so trying again cannot help.
type ProtocolShapeError struct {
	Field string
}

func (e *ProtocolShapeError) Error() string {
	return fmt.Sprintf("response missing expected field %q", e.Field)
}

// IsShapeError reports whether err (or anything it wraps) is a
// ProtocolShapeError.
func IsShapeError(err error) bool {
	var shape *ProtocolShapeError
	return errors.As(err, &shape)
}

// IsRetryable reports whether the worker should back off and try the same
// submission again. Context cancellation and shape problems are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !IsShapeError(err)
}
