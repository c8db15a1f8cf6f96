package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/handler"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/offline"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/server"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/internal/workers"
	"github.com/MKhiriev/go-farrier-sync/models"
)

type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	adapter  adapter.ServerAdapter
	services *service.ClientServices
	cache    *offline.Cache

	logger *logger.Logger
}

// NewApp opens the local database and wires the sync services over it. The
// offline cache is only built when an origin is configured.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, cfg.App, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create server adapter: %w", err), storages.Close())
	}

	services, err := service.NewClientServices(storages.Database, serverAdapter, cfg.App, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create client services: %w", err), storages.Close())
	}

	app := &App{
		cfg:      cfg,
		storages: storages,
		adapter:  serverAdapter,
		services: services,
		logger:   logger,
	}

	if cfg.Offline.Origin != "" {
		app.cache, err = offline.New(storages.Cache, cfg.Offline, logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("create offline cache: %w", err), storages.Close())
		}
	}

	return app, nil
}

// Services exposes the wired services, e.g. the indicator board for the UI.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Push backs up every pending queue.
func (a *App) Push(ctx context.Context) (models.BackupResult, error) {
	pending, err := a.services.MutationQueue.Pending(ctx)
	if err != nil {
		return models.BackupResult{}, fmt.Errorf("list pending queues: %w", err)
	}
	return a.services.BackupService.Backup(ctx, pending)
}

// Pull refreshes the given tables, or every table when none are given.
func (a *App) Pull(ctx context.Context, tables []schema.Table) (models.TransferResult, error) {
	if len(tables) == 0 {
		tables = schema.Tables()
	}
	return a.services.TransferService.Transfer(ctx, tables)
}

// Indicators returns the indicator board shared by push and pull.
func (a *App) Indicators() *service.IndicatorBoard {
	return a.services.Indicators
}

// Status reports the pending queues and the local schema version.
func (a *App) Status(ctx context.Context) (models.SyncStatusResponse, error) {
	pending, err := a.services.MutationQueue.Pending(ctx)
	if err != nil {
		return models.SyncStatusResponse{}, fmt.Errorf("list pending queues: %w", err)
	}
	version, err := a.services.AppInfoService.GetSchemaVersion(ctx)
	if err != nil {
		return models.SyncStatusResponse{}, fmt.Errorf("read schema version: %w", err)
	}

	return models.SyncStatusResponse{
		AppVersion:    a.services.AppInfoService.GetAppVersion(ctx),
		SchemaVersion: version,
		Pending:       pending,
		Indicators:    a.services.Indicators.Snapshot(),
	}, nil
}

// FlushErrors sends the queued telemetry entries.
func (a *App) FlushErrors(ctx context.Context) (int, error) {
	return a.services.TelemetryService.Flush(ctx)
}

// Serve runs the local HTTP server with the background sync until ctx is
// cancelled. A failed cache install is logged and serving goes on: the
// cache fills itself from network-first responses.
func (a *App) Serve(ctx context.Context) error {
	var offlineHandler http.Handler
	if a.cache != nil {
		if err := a.cache.Install(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("offline cache not installed")
		}
		if _, err := a.cache.Activate(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("stale cache generations not removed")
		}
		offlineHandler = a.cache
	}

	handlers, err := handler.NewHandlers(a.services, a.adapter, offlineHandler, a.cfg.Offline, a.logger)
	if err != nil {
		return fmt.Errorf("create handlers: %w", err)
	}

	srv, err := server.NewServer(handlers.HTTP.Init(), a.cfg.Offline, a.logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	background := workers.NewWorkers(workers.NewSyncWorker(a.services.SyncJob, a.cfg.Workers, a.logger))
	background.Run(ctx)
	defer background.Stop()

	return srv.Run(ctx)
}

// Close releases the local database.
func (a *App) Close() error {
	return a.storages.Close()
}
