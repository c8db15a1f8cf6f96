package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
)

const defaultSyncInterval = 5 * time.Minute

type syncJob struct {
	queue     MutationQueue
	backup    BackupService
	telemetry TelemetryService

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewSyncJob creates a syncJob that pushes pending queues and then flushes the
// error queue on a ticker. The job is idle until Start is called.
func NewSyncJob(queue MutationQueue, backup BackupService, telemetry TelemetryService, logger *logger.Logger) SyncJob {
	return &syncJob{queue: queue, backup: backup, telemetry: telemetry, logger: logger}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine that runs one sync every interval. If
// interval is zero or negative it defaults to 5 minutes. The goroutine exits
// when ctx is cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = j.runOnce(jobCtx)
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

// runOnce pushes whatever is pending and then flushes queued error reports.
// An auth failure stops the background push until the next tick; the user
// has to log in again before anything can be sent.
func (j *syncJob) runOnce(ctx context.Context) error {
	pending, err := j.queue.Pending(ctx)
	if err != nil {
		j.logger.Err(err).Str("func", "*syncJob.runOnce").Msg("error listing pending queues")
		return err
	}

	if len(pending) > 0 {
		result, err := j.backup.Backup(ctx, pending)
		switch {
		case errors.Is(err, ErrAuthRequired):
			j.logger.Warn().Str("func", "*syncJob.runOnce").Msg("background push needs re-authentication")
			return err
		case err != nil:
			j.logger.Err(err).Str("func", "*syncJob.runOnce").Msg("background push aborted")
			return err
		case !result.OK:
			j.logger.Warn().Str("func", "*syncJob.runOnce").Int("failed", len(result.Failures())).Msg("background push finished with failures")
		}
	}

	if _, err = j.telemetry.Flush(ctx); err != nil {
		j.logger.Debug().Err(err).Str("func", "*syncJob.runOnce").Msg("error queue not flushed")
	}
	return nil
}
