// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
)

type fakeLifecycle struct {
	mu       sync.Mutex
	started  int
	closed   int
	startErr error
	closeErr error
}

func (f *fakeLifecycle) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return f.startErr
}

func (f *fakeLifecycle) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return errors.New("close received a cancelled context")
	}
	f.closed++
	return f.closeErr
}

func (f *fakeLifecycle) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.closed
}

type fakeJournal struct {
	ran chan struct{}
}

func (f *fakeJournal) Run(ctx context.Context) error {
	close(f.ran)
	<-ctx.Done()
	return nil
}

type fakeWatcher struct {
	err     error
	changes []bool
}

func (f *fakeWatcher) Watch(ctx context.Context, onChange func(bool)) error {
	if f.err != nil {
		return f.err
	}
	for _, present := range f.changes {
		onChange(present)
	}
	<-ctx.Done()
	return nil
}

func runWorkers(t *testing.T, ws *Workers) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()
	return cancel, done
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
		return nil
	}
}

func TestWorkers_Run_StartsAndClosesController(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := &fakeLifecycle{}
	journal := &fakeJournal{ran: make(chan struct{})}
	ws := NewWorkers(lc, journal, &fakeWatcher{changes: []bool{true, false}}, logger.Nop())
	require.Len(t, ws.workers, 3)

	cancel, done := runWorkers(t, ws)

	<-journal.ran
	require.Eventually(t, func() bool {
		started, _ := lc.counts()
		return started == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, waitResult(t, done))

	started, closed := lc.counts()
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, closed)
}

func TestWorkers_Run_StartFailureStopsAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := &fakeLifecycle{startErr: errors.New("controller is closed")}
	journal := &fakeJournal{ran: make(chan struct{})}
	ws := NewWorkers(lc, journal, nil, logger.Nop())

	_, done := runWorkers(t, ws)

	err := waitResult(t, done)
	require.Error(t, err)
	assert.ErrorIs(t, err, lc.startErr)
	assert.Contains(t, err.Error(), "start controller")
}

func TestWorkers_Run_CloseFailureIsReturned(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := &fakeLifecycle{closeErr: errors.New("goroutine panicked")}
	ws := NewWorkers(lc, nil, nil, logger.Nop())
	require.Len(t, ws.workers, 1)

	cancel, done := runWorkers(t, ws)
	require.Eventually(t, func() bool {
		started, _ := lc.counts()
		return started == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	err := waitResult(t, done)
	assert.ErrorIs(t, err, lc.closeErr)
}

func TestWorkers_Run_WatcherFailureIsNotFatal(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := &fakeLifecycle{}
	ws := NewWorkers(lc, nil, &fakeWatcher{err: errors.New("watcher unavailable")}, logger.Nop())

	cancel, done := runWorkers(t, ws)

	// the watcher returns immediately; the controller keeps running
	require.Eventually(t, func() bool {
		started, _ := lc.counts()
		return started == 1
	}, time.Second, 5*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("workers stopped early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	require.NoError(t, waitResult(t, done))
}
