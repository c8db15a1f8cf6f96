// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/models"
)

type backupService struct {
	db        *store.Database
	adapter   adapter.ServerAdapter
	indicator Indicator
	now       func() time.Time

	// running holds a token while a run is in progress.
	running chan struct{}

	logger *logger.Logger
}

// NewBackupService returns the push side of the sync engine.
func NewBackupService(db *store.Database, serverAdapter adapter.ServerAdapter, indicator Indicator, logger *logger.Logger) BackupService {
	return &backupService{
		db:        db,
		adapter:   serverAdapter,
		indicator: indicator,
		now:       time.Now,
		running:   make(chan struct{}, 1),
		logger:    logger,
	}
}

// Backup implements [BackupService].
//
// Stores are pushed one at a time in dependency order, whatever order they
// are passed in. A store whose entity depends on a failed entity is skipped
// for the rest of the run. Transport and auth failures abort the run: the
// partial result is returned together with the error, and for auth the error
// wraps [ErrAuthRequired].
//
// Runs never overlap. A call made while another run is in progress waits for
// it and then reads the queues the first run left behind.
func (s *backupService) Backup(ctx context.Context, stores []schema.StoreName) (models.BackupResult, error) {
	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	case <-ctx.Done():
		return models.BackupResult{}, fmt.Errorf("wait for running push: %w", ctx.Err())
	}

	result := models.BackupResult{OK: true}

	if err := s.checkToken(); err != nil {
		result.OK = false
		result.AuthRequired = true
		return result, err
	}

	failed := make(map[schema.EntityName]bool)
	for _, name := range schema.SortBackup(stores) {
		entity, isEntity := schema.EntityOf(name)

		if isEntity {
			if dep, blocked := blockedBy(entity, failed); blocked {
				failed[entity.Name] = true
				s.indicator.Set(name, models.IndicatorNeutral)
				result.Stores = append(result.Stores, models.StoreReport{
					Store:    name,
					State:    models.IndicatorNeutral,
					Skipped:  true,
					Messages: []string{fmt.Sprintf(app.MsgSkippedDependency, dep)},
				})
				continue
			}
		}

		report, err := s.pushStore(ctx, name)
		s.indicator.Set(name, report.State)
		result.Stores = append(result.Stores, report)

		if report.State == models.IndicatorRed {
			result.OK = false
			if isEntity {
				failed[entity.Name] = true
			}
		}

		if err != nil {
			if errors.Is(err, adapter.ErrAuth) {
				result.AuthRequired = true
				return result, fmt.Errorf("%w: %w", ErrAuthRequired, err)
			}
			return result, fmt.Errorf("push %s: %w", name, err)
		}
	}

	return result, nil
}

func (s *backupService) checkToken() error {
	token := s.adapter.Token()
	if token == "" {
		return nil
	}

	err := utils.CheckTokenExpiry(token, s.now())
	if errors.Is(err, utils.ErrTokenExpired) {
		s.logger.Warn().Str("func", "*backupService.Backup").Err(err).Msg("bearer token expired, skipping push")
		return fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}
	return nil
}

// pushStore sends one queue store. The returned error is set only when the
// whole run must stop.
func (s *backupService) pushStore(ctx context.Context, name schema.StoreName) (models.StoreReport, error) {
	report := models.StoreReport{Store: name}
	s.indicator.Set(name, models.IndicatorInProgress)

	records, err := s.db.GetAll(ctx, name)
	if err != nil {
		s.logger.Err(err).Str("func", "*backupService.pushStore").Str("store", string(name)).Msg("error reading queue")
		report.State = models.IndicatorRed
		report.Messages = []string{userMessage(err)}
		return report, nil
	}
	if len(records) == 0 {
		report.State = models.IndicatorNeutral
		return report, nil
	}
	report.Sent = len(records)

	outcomes, err := s.adapter.Push(ctx, name, records)
	if err != nil {
		s.logger.Err(err).Str("func", "*backupService.pushStore").Str("store", string(name)).Msg("push failed")
		report.State = models.IndicatorRed
		report.Messages = []string{userMessage(err)}
		if errors.Is(err, adapter.ErrAuth) || isTransportError(err) {
			return report, err
		}
		return report, nil
	}

	if err = s.acknowledge(ctx, name, records, outcomes, &report); err != nil {
		s.logger.Err(err).Str("func", "*backupService.pushStore").Str("store", string(name)).Msg("error clearing acknowledged records")
		report.State = models.IndicatorRed
		report.Messages = append(report.Messages, userMessage(err))
		return report, nil
	}

	report.State = aggregate(outcomes)
	switch report.State {
	case models.IndicatorRed:
		for _, o := range outcomes {
			if o.Failed() {
				report.Messages = append(report.Messages, failureMessage(o))
			}
		}
	case models.IndicatorYellow:
		report.Messages = append(report.Messages, app.MsgNothingToUpdate)
	default:
		report.Messages = append(report.Messages, fmt.Sprintf(app.MsgBackedUp, report.Acknowledged))
	}

	return report, nil
}

// acknowledge removes what the server took from the queue, in one
// transaction. A clearStore outcome empties the store and overrides any
// per-record key in the same batch. Without either, a batch with no failed
// outcome acknowledges every record that was sent.
func (s *backupService) acknowledge(ctx context.Context, name schema.StoreName, sent []models.Record, outcomes []models.Outcome, report *models.StoreReport) error {
	clearStore := false
	var keys []any
	anyFailed := false
	for _, o := range outcomes {
		if o.ClearStore {
			clearStore = true
		}
		if o.Key != nil {
			keys = append(keys, o.Key)
		}
		if o.Acknowledged() {
			report.Acknowledged++
		}
		if o.Failed() {
			anyFailed = true
		}
	}

	if !clearStore && len(keys) == 0 {
		if anyFailed {
			return nil
		}
		desc, _ := s.db.Descriptor(name)
		for _, rec := range sent {
			key, err := store.KeyOf(desc, rec)
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}
		report.Acknowledged = len(sent)
	}

	return s.db.Update(ctx, []schema.StoreName{name}, func(tx *store.Tx) error {
		if clearStore {
			report.Cleared = true
			report.Removed = len(sent)
			return tx.Clear(ctx, name)
		}
		for _, key := range keys {
			if err := tx.Delete(ctx, name, key); err != nil {
				return err
			}
		}
		report.Removed = len(keys)
		return nil
	})
}

// aggregate folds per-record outcomes into the store indicator: any failure
// is red, a batch made only of no-update outcomes is yellow, anything else
// is green.
func aggregate(outcomes []models.Outcome) models.IndicatorState {
	if len(outcomes) == 0 {
		return models.IndicatorGreen
	}

	onlyNoUpdate := true
	for _, o := range outcomes {
		if o.Failed() {
			return models.IndicatorRed
		}
		if o.Status != models.StatusNoUpdate {
			onlyNoUpdate = false
		}
	}
	if onlyNoUpdate {
		return models.IndicatorYellow
	}
	return models.IndicatorGreen
}

func blockedBy(entity schema.Entity, failed map[schema.EntityName]bool) (schema.EntityName, bool) {
	for _, dep := range entity.DependsOn {
		if failed[dep] {
			return dep, true
		}
	}
	return "", false
}

func failureMessage(o models.Outcome) string {
	if o.Msg != "" {
		return o.Msg
	}
	if o.Status == models.StatusServerError {
		return app.MsgServerError
	}
	return o.Status.String()
}
