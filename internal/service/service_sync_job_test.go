// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyQueue reports a fixed pending list and counts Pending calls.
type spyQueue struct {
	MutationQueue
	pending []schema.StoreName
	err     error
	calls   atomic.Int64
}

func (s *spyQueue) Pending(context.Context) ([]schema.StoreName, error) {
	s.calls.Add(1)
	return s.pending, s.err
}

// spyBackup counts Backup calls and records the last store list.
type spyBackup struct {
	calls  atomic.Int64
	last   atomic.Value
	result models.BackupResult
	err    error
}

func (s *spyBackup) Backup(_ context.Context, stores []schema.StoreName) (models.BackupResult, error) {
	s.calls.Add(1)
	s.last.Store(stores)
	return s.result, s.err
}

// spyTelemetry counts Flush calls.
type spyTelemetry struct {
	flushes atomic.Int64
	err     error
}

func (s *spyTelemetry) Report(context.Context, string, error) {}

func (s *spyTelemetry) Flush(context.Context) (int, error) {
	s.flushes.Add(1)
	return 0, s.err
}

func newSpyJob(q *spyQueue, b *spyBackup, tel *spyTelemetry) *syncJob {
	return NewSyncJob(q, b, tel, logger.Nop()).(*syncJob)
}

// ── runOnce ──────────────────────────────────────────────────────────────────

func TestSyncJob_RunOnce_PushesPendingThenFlushes(t *testing.T) {
	q := &spyQueue{pending: []schema.StoreName{schema.BackupAddClient, schema.BackupAddHorse}}
	b := &spyBackup{result: models.BackupResult{OK: true}}
	tel := &spyTelemetry{}

	err := newSpyJob(q, b, tel).runOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), b.calls.Load())
	assert.Equal(t, q.pending, b.last.Load())
	assert.Equal(t, int64(1), tel.flushes.Load())
}

func TestSyncJob_RunOnce_NothingPending_SkipsBackup(t *testing.T) {
	q := &spyQueue{}
	b := &spyBackup{}
	tel := &spyTelemetry{}

	require.NoError(t, newSpyJob(q, b, tel).runOnce(context.Background()))
	assert.Zero(t, b.calls.Load())
	assert.Equal(t, int64(1), tel.flushes.Load())
}

func TestSyncJob_RunOnce_AuthRequired_SkipsFlush(t *testing.T) {
	q := &spyQueue{pending: []schema.StoreName{schema.BackupAddClient}}
	b := &spyBackup{err: ErrAuthRequired}
	tel := &spyTelemetry{}

	err := newSpyJob(q, b, tel).runOnce(context.Background())

	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, tel.flushes.Load())
}

func TestSyncJob_RunOnce_PendingError(t *testing.T) {
	q := &spyQueue{err: assert.AnError}
	b := &spyBackup{}
	tel := &spyTelemetry{}

	err := newSpyJob(q, b, tel).runOnce(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, b.calls.Load())
}

func TestSyncJob_RunOnce_FailedStoresAndFlushErrorAreNotFatal(t *testing.T) {
	q := &spyQueue{pending: []schema.StoreName{schema.BackupAddClient}}
	b := &spyBackup{result: models.BackupResult{Stores: []models.StoreReport{{Store: schema.BackupAddClient, State: models.IndicatorRed}}}}
	tel := &spyTelemetry{err: assert.AnError}

	assert.NoError(t, newSpyJob(q, b, tel).runOnce(context.Background()))
	assert.Equal(t, int64(1), tel.flushes.Load())
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestSyncJob_Start_RunsOnTicker(t *testing.T) {
	q := &spyQueue{}
	job := newSpyJob(q, &spyBackup{}, &spyTelemetry{})

	// 10ms interval: about five ticks in 55ms
	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := q.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "expected several runs, got %d", got)
}

func TestSyncJob_Stop_StopsGoroutine(t *testing.T) {
	q := &spyQueue{}
	job := newSpyJob(q, &spyBackup{}, &spyTelemetry{})

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := q.calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, callsAfterStop, q.calls.Load(), "no runs after Stop")
}

func TestSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := newSpyJob(&spyQueue{}, &spyBackup{}, &spyTelemetry{})
	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_DoubleStop_NoPanic(t *testing.T) {
	job := newSpyJob(&spyQueue{}, &spyBackup{}, &spyTelemetry{})

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()

	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_Start_DefaultInterval(t *testing.T) {
	q := &spyQueue{}
	job := newSpyJob(q, &spyBackup{}, &spyTelemetry{})
	ctx, cancel := context.WithCancel(context.Background())

	// interval <= 0 falls back to five minutes, so nothing runs in 20ms
	job.Start(ctx, 0)
	time.Sleep(20 * time.Millisecond)
	cancel()
	job.Stop()

	assert.Zero(t, q.calls.Load())
}

func TestSyncJob_Restart_KeepsRunning(t *testing.T) {
	q := &spyQueue{}
	job := newSpyJob(q, &spyBackup{}, &spyTelemetry{})
	ctx := context.Background()

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	callsBefore := q.calls.Load()
	assert.Greater(t, callsBefore, int64(0))

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, q.calls.Load(), callsBefore)
}

func TestSyncJob_ContextCancel_StopsJob(t *testing.T) {
	job := newSpyJob(&spyQueue{}, &spyBackup{}, &spyTelemetry{})
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after context cancel")
	}
}
