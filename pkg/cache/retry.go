package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is wrapped by errors from a remote backend that could not
// be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// transientError marks a backend failure worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// unavailable wraps a remote failure as transient, or returns the context
// error when ctx is already done.
func unavailable(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &transientError{err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
}

// IsTransient reports whether err was marked as worth retrying.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// backoff retries transient failures with a doubling delay.
type backoff struct {
	attempts int
	delay    time.Duration
}

// remoteBackoff is used by the redis and mongo backends. Cache reads sit on
// the request path, so the total wait stays well under a second.
var remoteBackoff = backoff{attempts: 3, delay: 50 * time.Millisecond}

// do runs fn until it succeeds, fails permanently, or the attempts run out.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	var err error
	for i := range max(b.attempts, 1) {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == b.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
