package retry

import (
	"context"
	"errors"
	"time"
)

type options struct {
	maxRetries int
	baseWait   time.Duration
	maxWait    time.Duration
}

type Option func(*options)

// WithMaxRetries sets how many times to retry after the first attempt.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithBaseWait sets the wait before the first retry. Subsequent waits
// double up to the maximum.
func WithBaseWait(d time.Duration) Option {
	return func(o *options) { o.baseWait = d }
}

// WithMaxWait caps the wait between retries.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) { o.maxWait = d }
}

// Do runs fn, retrying recoverable failures with exponential backoff
// until the attempts are exhausted or the context ends. The last error
// is returned unwrapped of any recoverable marker.
func Do(ctx context.Context, fn func() error, opts ...Option) error {
	o := options{
		maxRetries: 3,
		baseWait:   time.Second,
		maxWait:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	wait := o.baseWait
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsRecoverable(err) || attempt >= o.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > o.maxWait {
			wait = o.maxWait
		}
	}
	var recoverable *recoverableError
	if errors.As(err, &recoverable) {
		return recoverable.err
	}
	return err
}
