package workers

import (
	"context"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
)

// syncWorker drives the periodic background push.
type syncWorker struct {
	job service.SyncJob
	cfg config.ClientWorkers

	logger *logger.Logger
}

func NewSyncWorker(job service.SyncJob, cfg config.ClientWorkers, logger *logger.Logger) Worker {
	return &syncWorker{job: job, cfg: cfg, logger: logger}
}

func (w *syncWorker) Run(ctx context.Context) {
	w.logger.Info().Dur("interval", w.cfg.SyncInterval).Msg("starting background sync")
	w.job.Start(ctx, w.cfg.SyncInterval)
}

func (w *syncWorker) Stop() {
	w.job.Stop()
	w.logger.Info().Msg("background sync stopped")
}
