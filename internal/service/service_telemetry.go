package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
)

type telemetryService struct {
	db      *store.Database
	adapter adapter.ServerAdapter

	logger *logger.Logger
}

// NewTelemetryService returns the error reporter. It also implements
// [store.ErrorReporter]; install it with db.SetReporter.
func NewTelemetryService(db *store.Database, serverAdapter adapter.ServerAdapter, logger *logger.Logger) TelemetryService {
	return &telemetryService{db: db, adapter: serverAdapter, logger: logger}
}

// Report implements [TelemetryService]. An entry that cannot reach the server
// is queued in the error queue; writes to the queue are silent so a failing
// database does not report about itself.
func (s *telemetryService) Report(ctx context.Context, page string, err error) {
	if err == nil {
		return
	}

	entry := models.TelemetryEntry{
		Page: page,
		Error: models.ErrorDetail{
			Name:    errorName(err),
			Message: err.Error(),
			Stack:   string(debug.Stack()),
		},
	}

	sendErr := s.adapter.SendError(ctx, entry)
	if sendErr == nil {
		return
	}
	if !isTransportError(sendErr) {
		s.logger.Err(sendErr).Str("func", "*telemetryService.Report").Str("page", page).Msg("server rejected error report")
		return
	}

	rec, encErr := entryRecord(entry)
	if encErr != nil {
		s.logger.Err(encErr).Str("func", "*telemetryService.Report").Msg("error encoding error report")
		return
	}
	if _, qErr := s.db.Add(ctx, schema.ErrorQueue, rec, store.Silent()); qErr != nil {
		s.logger.Err(qErr).Str("func", "*telemetryService.Report").Msg("error queueing error report")
	}
}

// Flush implements [TelemetryService]. Delivered entries are deleted one by
// one; the first transport failure stops the flush. Entries the server
// rejects stay queued.
func (s *telemetryService) Flush(ctx context.Context) (int, error) {
	records, err := s.db.GetAll(ctx, schema.ErrorQueue, store.Silent())
	if err != nil {
		return 0, fmt.Errorf("read error queue: %w", err)
	}

	sent := 0
	for _, rec := range records {
		entry, err := recordEntry(rec)
		if err != nil {
			s.logger.Err(err).Str("func", "*telemetryService.Flush").Msg("dropping undecodable error report")
			if delErr := s.db.Delete(ctx, schema.ErrorQueue, rec["errorID"], store.Silent()); delErr != nil {
				s.logger.Err(delErr).Str("func", "*telemetryService.Flush").Interface("errorID", rec["errorID"]).Msg("error deleting undecodable error report")
			}
			continue
		}

		if err = s.adapter.SendError(ctx, entry); err != nil {
			if isTransportError(err) {
				return sent, fmt.Errorf("flush error queue: %w", err)
			}
			s.logger.Err(err).Str("func", "*telemetryService.Flush").Int64("errorID", entry.ErrorID).Msg("server rejected queued error report")
			continue
		}

		if err = s.db.Delete(ctx, schema.ErrorQueue, entry.ErrorID, store.Silent()); err != nil {
			return sent, fmt.Errorf("delete flushed error report: %w", err)
		}
		sent++
	}

	return sent, nil
}

func entryRecord(entry models.TelemetryEntry) (models.Record, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return models.DecodeRecord(data)
}

func recordEntry(rec models.Record) (models.TelemetryEntry, error) {
	var entry models.TelemetryEntry
	data, err := json.Marshal(rec)
	if err != nil {
		return entry, err
	}
	if err = json.Unmarshal(data, &entry); err != nil {
		return entry, err
	}
	if entry.ErrorID == 0 {
		return entry, errors.New("queued error report has no errorID")
	}
	return entry, nil
}
