// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
)

var errBusy = errors.New("resource busy")

// failingRemove fails the first n calls with errBusy and counts every call.
func failingRemove(n int32, calls *atomic.Int32) RemoveFunc {
	return func(string) error {
		if calls.Add(1) <= n {
			return errBusy
		}
		return nil
	}
}

func TestEraseDir_SucceedsAfterTransientFailures(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	for _, attempts := range []int{1, 2, 5, 10} {
		var calls atomic.Int32
		eraser := NewEraser(logger.Nop(), WithRemoveFunc(failingRemove(int32(attempts-1), &calls)))

		err := eraser.EraseDir(context.Background(), "/x", RetryPolicy{MaxAttempts: attempts, Interval: time.Millisecond})

		require.NoError(t, err, "attempts=%d", attempts)
		assert.Equal(t, int32(attempts), calls.Load())
	}
}

func TestEraseDir_ExhaustsExactlyMaxAttempts(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var calls atomic.Int32
	eraser := NewEraser(logger.Nop(), WithRemoveFunc(failingRemove(1<<20, &calls)))

	err := eraser.EraseDir(context.Background(), "/x", RetryPolicy{MaxAttempts: 4, Interval: time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEraseFailed)
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, int32(4), calls.Load())
}

func TestEraseDir_WaitsIntervalBetweenAttempts(t *testing.T) {
	var calls atomic.Int32
	eraser := NewEraser(logger.Nop(), WithRemoveFunc(failingRemove(2, &calls)))

	start := time.Now()
	err := eraser.EraseDir(context.Background(), "/x", RetryPolicy{MaxAttempts: 3, Interval: 20 * time.Millisecond})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestEraseDir_RemovesTree(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "session-bot01")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Default", "IndexedDB"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Default", "Cookies"), []byte("x"), 0o600))

	err := EraseDir(context.Background(), dir, DefaultRetryPolicy())

	require.NoError(t, err)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEraseDir_MissingPathIsSuccess(t *testing.T) {
	err := EraseDir(context.Background(), filepath.Join(t.TempDir(), "nothing-here"), DefaultRetryPolicy())
	assert.NoError(t, err)
}

func TestEraseDir_InvalidPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy RetryPolicy
	}{
		{name: "zero attempts", policy: RetryPolicy{MaxAttempts: 0, Interval: time.Millisecond}},
		{name: "zero interval", policy: RetryPolicy{MaxAttempts: 3}},
		{name: "negative interval", policy: RetryPolicy{MaxAttempts: 3, Interval: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			eraser := NewEraser(logger.Nop(), WithRemoveFunc(failingRemove(0, &calls)))

			err := eraser.EraseDir(context.Background(), "/x", tt.policy)

			assert.ErrorIs(t, err, ErrInvalidRetryPolicy)
			assert.Zero(t, calls.Load())
		})
	}
}

func TestEraseDir_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	eraser := NewEraser(logger.Nop(), WithRemoveFunc(func(string) error {
		calls.Add(1)
		cancel()
		return errBusy
	}))

	err := eraser.EraseDir(ctx, "/x", RetryPolicy{MaxAttempts: 10, Interval: time.Second})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEraseFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 10, p.MaxAttempts)
	assert.Equal(t, 400*time.Millisecond, p.Interval)
}
