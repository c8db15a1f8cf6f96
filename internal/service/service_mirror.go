package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
)

type mirrorReader struct {
	db *store.Database

	logger *logger.Logger
}

// NewMirrorReader returns a [MirrorReader] reading from db.
func NewMirrorReader(db *store.Database, logger *logger.Logger) MirrorReader {
	return &mirrorReader{db: db, logger: logger}
}

func (m *mirrorReader) Record(ctx context.Context, name schema.StoreName, key any) (models.Record, error) {
	if err := checkMirror(name); err != nil {
		return nil, err
	}

	rec, err := m.db.Get(ctx, name, key)
	if err != nil {
		m.logger.Debug().Err(err).Str("func", "*mirrorReader.Record").Str("store", string(name)).Msg("record not read")
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return rec, nil
}

func (m *mirrorReader) Records(ctx context.Context, name schema.StoreName) ([]models.Record, error) {
	if err := checkMirror(name); err != nil {
		return nil, err
	}

	recs, err := m.db.GetAll(ctx, name)
	if err != nil {
		m.logger.Err(err).Str("func", "*mirrorReader.Records").Str("store", string(name)).Msg("error reading mirror")
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return recs, nil
}

func (m *mirrorReader) RecordsByIndex(ctx context.Context, name schema.StoreName, index string, value any) ([]models.Record, error) {
	if err := checkMirror(name); err != nil {
		return nil, err
	}

	recs, err := m.db.GetAllByIndex(ctx, name, index, value)
	if err != nil {
		m.logger.Err(err).Str("func", "*mirrorReader.RecordsByIndex").Str("store", string(name)).Str("index", index).Msg("error reading mirror")
		return nil, fmt.Errorf("read %s by %s: %w", name, index, err)
	}
	return recs, nil
}

func checkMirror(name schema.StoreName) error {
	if name == schema.UserSettings {
		return nil
	}
	for _, e := range schema.Entities() {
		if !e.QueueOnly() && e.Mirror == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotAMirror, name)
}
