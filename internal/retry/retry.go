// Package retry wraps unreliable remote calls with bounded attempts and
// exponential backoff. Only transient failures are retried; anything else
// propagates immediately to the caller.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Config holds retry configuration for one source client.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig returns the standard source-client retry policy:
// three attempts with 1s → 2s → 4s waits capped at 8s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    8 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	return c
}

// TransientError marks a failure worth retrying, such as a non-2xx HTTP
// status. Network-level errors are classified transient without wrapping.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so IsTransient reports true for it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Transientf builds a transient error from a format string.
func Transientf(format string, args ...any) error {
	return &TransientError{Err: fmt.Errorf(format, args...)}
}

// IsTransient reports whether err should be retried: explicitly marked
// transient errors, network errors, and timeouts.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// ExhaustedError reports that every attempt against one source failed.
// Callers treat it as "this source yielded nothing", never as fatal.
type ExhaustedError struct {
	Source   string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempts exhausted: %v", e.Source, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// LogFunc is invoked before each backoff wait with the failed attempt
// number, its error, and the upcoming delay.
type LogFunc func(attempt int, err error, nextDelay time.Duration)

// Do executes fn up to cfg.MaxAttempts times with exponential backoff
// between attempts. Non-transient errors propagate immediately without
// retry; exhausting all attempts yields an ExhaustedError naming the
// source. Waits honor ctx cancellation.
func Do(ctx context.Context, cfg Config, source string, fn func() error, logFn LogFunc) error {
	cfg = cfg.withDefaults()

	delay := cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if logFn != nil {
			logFn(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return &ExhaustedError{Source: source, Attempts: attempt, Last: lastErr}
		case <-time.After(delay):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return &ExhaustedError{Source: source, Attempts: cfg.MaxAttempts, Last: lastErr}
}
