package service

import (
	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
)

type ClientServices struct {
	MutationQueue    MutationQueue
	BackupService    BackupService
	TransferService  TransferService
	TelemetryService TelemetryService
	AppInfoService   AppInfoService
	Mirrors          MirrorReader
	Indicators       *IndicatorBoard
	SyncJob          SyncJob
}

// NewClientServices wires the sync services over one local database and
// installs telemetry as the database's error reporter.
func NewClientServices(db *store.Database, serverAdapter adapter.ServerAdapter, cfg config.ClientApp, logger *logger.Logger) (*ClientServices, error) {
	appInfo, err := NewAppInfoService(cfg, db, logger)
	if err != nil {
		return nil, err
	}

	telemetry := NewTelemetryService(db, serverAdapter, logger)
	db.SetReporter(telemetry)

	board := NewIndicatorBoard()
	queue := NewMutationValidationService().Wrap(NewMutationQueue(db, logger))
	backup := NewBackupService(db, serverAdapter, board, logger)

	return &ClientServices{
		MutationQueue:    queue,
		BackupService:    backup,
		TransferService:  NewTransferService(db, serverAdapter, board, logger),
		TelemetryService: telemetry,
		AppInfoService:   appInfo,
		Mirrors:          NewMirrorReader(db, logger),
		Indicators:       board,
		SyncJob:          NewSyncJob(queue, backup, telemetry, logger),
	}, nil
}
