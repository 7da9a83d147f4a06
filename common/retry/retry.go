// Package retry repeats an operation with exponential backoff.
//
//	err := retry.Do(ctx, retry.Config{MaxAttempts: 3}, func() error {
//	    if err := call(); isFatal(err) {
//	        return retry.Permanent(err)
//	    }
//	    return call()
//	})
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config controls the backoff. Zero fields take DefaultConfig's values,
// except MaxAttempts, where zero or less means a single attempt.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	// MaxDelay caps the doubling delay.
	MaxDelay time.Duration
	// ShouldRetry classifies errors not already marked Permanent. Nil
	// retries every error.
	ShouldRetry func(err error) bool
}

// DefaultConfig suits short network calls.
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     10 * time.Second,
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns the unwrapped err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, or the attempts
// run out. Cancelling ctx stops the loop between attempts; the last error is
// joined with ctx.Err().
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoValue(ctx, cfg, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	cfg = withDefaults(cfg)

	var zero T
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, errors.Join(lastErr, err)
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return zero, p.err
		}
		lastErr = err
		if attempt >= cfg.MaxAttempts || (cfg.ShouldRetry != nil && !cfg.ShouldRetry(err)) {
			return zero, lastErr
		}

		slog.Debug("retry: attempt failed", "attempt", attempt, "max", cfg.MaxAttempts, "delay", delay, "err", err)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, errors.Join(lastErr, ctx.Err())
		case <-t.C:
		}
		delay = min(delay*2, cfg.MaxDelay)
	}
}

func withDefaults(cfg Config) Config {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	return cfg
}
