package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
)

// RetryPolicy bounds a retried operation: at most MaxAttempts attempts in
// total, Interval apart.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultRetryPolicy is 10 attempts, 400ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, Interval: 400 * time.Millisecond}
}

func (p RetryPolicy) validate() error {
	if p.MaxAttempts < 1 || p.Interval <= 0 {
		return fmt.Errorf("%w: %d attempts, %s interval", ErrInvalidRetryPolicy, p.MaxAttempts, p.Interval)
	}
	return nil
}

// RemoveFunc removes a directory tree. A missing path must not be an error.
type RemoveFunc func(path string) error

// Eraser removes directory trees, retrying while the filesystem reports
// transient contention (files held open by a process that is shutting down).
type Eraser struct {
	remove RemoveFunc
	logger *logger.Logger
}

// EraserOption configures an [Eraser].
type EraserOption func(*Eraser)

// WithRemoveFunc replaces os.RemoveAll.
func WithRemoveFunc(fn RemoveFunc) EraserOption {
	return func(e *Eraser) {
		e.remove = fn
	}
}

// NewEraser returns an Eraser backed by os.RemoveAll.
func NewEraser(log *logger.Logger, opts ...EraserOption) *Eraser {
	e := &Eraser{
		remove: os.RemoveAll,
		logger: log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EraseDir recursively removes path. A failed attempt is followed by a pause
// of policy.Interval; after policy.MaxAttempts failed attempts the error of
// the last attempt is returned wrapped in [ErrEraseFailed]. A path that does
// not exist counts as success.
func (e *Eraser) EraseDir(ctx context.Context, path string, policy RetryPolicy) error {
	if err := policy.validate(); err != nil {
		return err
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(policy.MaxAttempts-1), retry.NewConstant(policy.Interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := e.remove(path); err != nil {
			e.logger.Warn().Err(err).
				Str("func", "*Eraser.EraseDir").
				Str("path", path).
				Int("attempt", attempt).
				Int("max_attempts", policy.MaxAttempts).
				Msg("failed to remove directory")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s after %d attempts: %w", ErrEraseFailed, path, attempt, err)
	}

	if attempt > 1 {
		e.logger.Warn().Str("func", "*Eraser.EraseDir").Str("path", path).Int("attempt", attempt).
			Msg("directory removed after retrying")
	}

	return nil
}

// EraseDir removes path with os.RemoveAll under policy, logging nothing.
func EraseDir(ctx context.Context, path string, policy RetryPolicy) error {
	return NewEraser(logger.Nop()).EraseDir(ctx, path, policy)
}
