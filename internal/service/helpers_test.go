package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *store.Database {
	t.Helper()
	db, err := store.Open(context.Background(), config.ClientDB{DSN: filepath.Join(t.TempDir(), "farrier.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustGetAll(t *testing.T, db *store.Database, name schema.StoreName) []models.Record {
	t.Helper()
	recs, err := db.GetAll(context.Background(), name)
	require.NoError(t, err)
	return recs
}

func mustPut(t *testing.T, db *store.Database, name schema.StoreName, rec models.Record) {
	t.Helper()
	_, err := db.Put(context.Background(), name, rec)
	require.NoError(t, err)
}
