package cache

import (
	"context"
	"errors"
	"time"
)

// Retry policy for remote backends.
const (
	retryAttempts = 3
	retryDelay    = 50 * time.Millisecond
)

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn up to three times, doubling the delay after each
// retryable failure. Errors not wrapped with Retryable are returned at once.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	var last error
	for i := range retryAttempts {
		last = fn()
		if last == nil || !IsRetryable(last) {
			return last
		}
		if i == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return last
}
