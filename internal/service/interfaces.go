package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// MutationQueue records local changes. Each call writes the mirror store and
// the matching queue entry in one transaction.
type MutationQueue interface {
	// Create mints the entity's ids, writes the mirror and the add-queue
	// entry, and advances the max-id markers. It returns the stored record.
	Create(ctx context.Context, entity schema.EntityName, rec models.Record) (models.Record, error)
	// Edit upserts the mirror and the edit-queue entry.
	Edit(ctx context.Context, entity schema.EntityName, rec models.Record) error
	// Delete removes the mirror record and queues its identifying keys.
	Delete(ctx context.Context, entity schema.EntityName, rec models.Record) error
	// SaveSettings replaces one section of the settings singleton and its queue.
	SaveSettings(ctx context.Context, section schema.SettingsSection, rec models.Record) error
	// Pending returns the non-empty queue stores in push order.
	Pending(ctx context.Context) ([]schema.StoreName, error)
}

// BackupService pushes queued mutations to the server.
type BackupService interface {
	Backup(ctx context.Context, stores []schema.StoreName) (models.BackupResult, error)
}

// TransferService replaces local mirrors with server snapshots.
type TransferService interface {
	Transfer(ctx context.Context, tables []schema.Table) (models.TransferResult, error)
}

// TelemetryService delivers error reports, keeping undelivered ones in the
// local error queue.
type TelemetryService interface {
	Report(ctx context.Context, page string, err error)
	// Flush resends queued entries and returns how many were delivered.
	Flush(ctx context.Context) (int, error)
}

// Indicator receives per-store sync state changes.
type Indicator interface {
	Set(store schema.StoreName, state models.IndicatorState)
}

// SyncJob periodically pushes pending queues in the background.
type SyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetSchemaVersion(ctx context.Context) (int, error)
}

// MirrorReader serves the mirror stores to the UI. Queues, markers and the
// error queue are not readable through it.
type MirrorReader interface {
	Record(ctx context.Context, store schema.StoreName, key any) (models.Record, error)
	Records(ctx context.Context, store schema.StoreName) ([]models.Record, error)
	RecordsByIndex(ctx context.Context, store schema.StoreName, index string, value any) ([]models.Record, error)
}

// MutationQueueWrapper defines middleware composition for MutationQueue.
// Implementations wrap an existing MutationQueue to add behavior such as
// logging or validating.
type MutationQueueWrapper interface {
	Wrap(MutationQueue) MutationQueue // returns a decorated MutationQueue applying additional behavior
}
