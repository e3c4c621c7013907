package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxRetries bounds how often a transient failure is retried
// before it escalates to a failed run.
const DefaultMaxRetries = 3

// TransientIOError marks a network or storage hiccup that is eligible
// for bounded retry. Anything not wrapped in it is treated as permanent.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("transient i/o error during %s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// ErrorCode implements the metrics error-code contract.
func (e *TransientIOError) ErrorCode() string { return "transient_io" }

// Transient wraps err as a TransientIOError. Returns nil for nil err.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientIOError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientIOError.
func IsTransient(err error) bool {
	var t *TransientIOError
	return errors.As(err, &t)
}

// Do runs fn, retrying with exponential backoff while it keeps returning
// transient errors, up to maxRetries additional attempts. Permanent errors
// (schema violations, duplicate identities, invariant failures) are never
// retried and are returned on first occurrence.
func Do(ctx context.Context, maxRetries uint64, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(op, b)
}
