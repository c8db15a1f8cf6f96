package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
)

// ClientStorages groups the local persistence handles passed to the service
// layer: the object store engine and the offline response cache, both
// sharing one SQLite connection.
type ClientStorages struct {
	// Database is the local store engine over the schema registry.
	Database *Database

	// Cache backs the offline request cache.
	Cache CacheRepository
}

// NewClientStorages opens the local database described by cfg, reconciles
// the registry and wires the repositories on top of it.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating new storages...")

	db, err := Open(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("local database error: %w", err)
	}

	return &ClientStorages{
		Database: db,
		Cache:    NewCacheRepository(db.DB, log),
	}, nil
}

// Close releases the shared connection.
func (s *ClientStorages) Close() error {
	return s.Database.Close()
}
