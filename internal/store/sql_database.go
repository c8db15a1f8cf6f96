package store

import (
	"database/sql"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/migrations"
)

// DB is the raw SQLite connection shared by the engine and the cache
// repository.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the embedded goose migrations creating the engine's own
// bookkeeping tables.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
