// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

const (
	maxTxAttempts = 3
	txRetryDelay  = 20 * time.Millisecond
)

// Database is the local store engine. It owns the single SQLite connection
// and exposes every store of the registry through transactional primitives.
//
// A Database is passed explicitly to every component that needs it; there is
// no package-level handle.
type Database struct {
	*DB
	descriptors map[schema.StoreName]schema.Descriptor
	reporter    ErrorReporter
	logger      *logger.Logger
}

// Open opens or creates the local database and brings it in line with the
// schema registry. Any failure is returned as [ErrDatabaseUnavailable].
func Open(ctx context.Context, cfg config.ClientDB, log *logger.Logger) (*Database, error) {
	return open(ctx, cfg, schema.Registry(), log)
}

func open(ctx context.Context, cfg config.ClientDB, registry []schema.Descriptor, log *logger.Logger) (*Database, error) {
	db, err := NewConnectSQLite(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "store.Open").Msg("error applying migrations")
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}

	database := newDatabase(db, registry, log)
	if err = database.reconcile(ctx, registry); err != nil {
		log.Err(err).Str("func", "store.Open").Msg("error reconciling stores")
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}

	log.Info().Str("func", "store.Open").Int("stores", len(registry)).Int("version", schema.Version).Msg("local database is ready")
	return database, nil
}

func newDatabase(db *DB, registry []schema.Descriptor, log *logger.Logger) *Database {
	descriptors := make(map[schema.StoreName]schema.Descriptor, len(registry))
	for _, d := range registry {
		descriptors[d.Name] = d
	}
	return &Database{
		DB:          db,
		descriptors: descriptors,
		logger:      log,
	}
}

// SetReporter installs the telemetry sink that receives storage failures.
func (d *Database) SetReporter(r ErrorReporter) {
	d.reporter = r
}

// Descriptor returns the declaration of a store known to this database.
func (d *Database) Descriptor(name schema.StoreName) (schema.Descriptor, bool) {
	desc, ok := d.descriptors[name]
	return desc, ok
}

// Update runs fn inside one read-write transaction scoped to stores. The
// transaction commits when fn returns nil and rolls back otherwise, so either
// every write made through tx becomes visible or none does.
func (d *Database) Update(ctx context.Context, stores []schema.StoreName, fn func(tx *Tx) error, opts ...Option) error {
	o := applyOptions(opts)
	return d.run(ctx, "Update", stores, false, fn, o)
}

// View runs fn inside one read-only transaction scoped to stores.
func (d *Database) View(ctx context.Context, stores []schema.StoreName, fn func(tx *Tx) error, opts ...Option) error {
	o := applyOptions(opts)
	return d.run(ctx, "View", stores, true, fn, o)
}

func (d *Database) run(ctx context.Context, op string, stores []schema.StoreName, readOnly bool, fn func(tx *Tx) error, o options) (err error) {
	defer func() {
		if err != nil {
			d.report(ctx, op, stores, err, o.silent)
		}
	}()

	for attempt := 1; ; attempt++ {
		err = d.attempt(ctx, op, stores, readOnly, fn)
		if err == nil || attempt == maxTxAttempts || !d.retryable(err) {
			return err
		}
		d.logger.Warn().Err(err).Str("func", "Database."+op).Int("attempt", attempt).Msg("database busy, retrying transaction")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * txRetryDelay):
		}
	}
}

func (d *Database) retryable(err error) bool {
	return d.errorClassificator != nil && d.errorClassificator.Classify(err) == Retryable
}

// attempt runs fn once in a fresh transaction.
func (d *Database) attempt(ctx context.Context, op string, stores []schema.StoreName, readOnly bool, fn func(tx *Tx) error) (err error) {
	scope := make(map[schema.StoreName]schema.Descriptor, len(stores))
	for _, s := range stores {
		desc, ok := d.descriptors[s]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownStore, s)
		}
		scope[s] = desc
	}

	sqlTx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrapDriverError(err, ErrTransactionAborted)
	}

	tx := &Tx{tx: sqlTx, scope: scope, readOnly: readOnly, logger: d.logger}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		tx.done = true
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			d.logger.Err(rbErr).Str("func", "Database."+op).Msg("error rolling back transaction")
		}
		return err
	}

	tx.done = true
	if err = sqlTx.Commit(); err != nil {
		return wrapDriverError(err, ErrTransactionAborted)
	}

	return nil
}

func (d *Database) report(ctx context.Context, op string, stores []schema.StoreName, err error, silent bool) {
	if errors.Is(err, ErrNotFound) {
		return
	}

	names := make([]string, 0, len(stores))
	for _, s := range stores {
		names = append(names, string(s))
	}
	d.logger.Err(err).
		Str("func", "Database."+op).
		Strs("stores", names).
		Msg("local store operation failed")

	if silent || d.reporter == nil {
		return
	}
	d.reporter.Report(ctx, "store."+op, err)
}

// single runs fn on the transaction supplied via WithTx, or in a new
// transaction over store. Failures inside a supplied transaction are left to
// its owner to report.
func (d *Database) single(ctx context.Context, op string, store schema.StoreName, readOnly bool, o options, fn func(tx *Tx) error) error {
	if o.tx != nil {
		return fn(o.tx)
	}
	return d.run(ctx, op, []schema.StoreName{store}, readOnly, fn, o)
}

// Get returns the record stored under key. A missing record yields
// [ErrNotFound].
func (d *Database) Get(ctx context.Context, store schema.StoreName, key any, opts ...Option) (models.Record, error) {
	var rec models.Record
	err := d.single(ctx, "Get", store, true, applyOptions(opts), func(tx *Tx) error {
		var err error
		rec, err = tx.Get(ctx, store, key)
		return err
	})
	return rec, err
}

// GetAll returns every record of the store in key order.
func (d *Database) GetAll(ctx context.Context, store schema.StoreName, opts ...Option) ([]models.Record, error) {
	var recs []models.Record
	err := d.single(ctx, "GetAll", store, true, applyOptions(opts), func(tx *Tx) error {
		var err error
		recs, err = tx.GetAll(ctx, store)
		return err
	})
	return recs, err
}

// GetAllByIndex returns the records whose indexed field equals value.
func (d *Database) GetAllByIndex(ctx context.Context, store schema.StoreName, index string, value any, opts ...Option) ([]models.Record, error) {
	var recs []models.Record
	err := d.single(ctx, "GetAllByIndex", store, true, applyOptions(opts), func(tx *Tx) error {
		var err error
		recs, err = tx.GetAllByIndex(ctx, store, index, value)
		return err
	})
	return recs, err
}

// Keys returns every key of the store in order.
func (d *Database) Keys(ctx context.Context, store schema.StoreName, opts ...Option) ([]any, error) {
	var keys []any
	err := d.single(ctx, "Keys", store, true, applyOptions(opts), func(tx *Tx) error {
		var err error
		keys, err = tx.Keys(ctx, store)
		return err
	})
	return keys, err
}

// Count returns the number of records in the store.
func (d *Database) Count(ctx context.Context, store schema.StoreName, opts ...Option) (int, error) {
	var n int
	err := d.single(ctx, "Count", store, true, applyOptions(opts), func(tx *Tx) error {
		var err error
		n, err = tx.Count(ctx, store)
		return err
	})
	return n, err
}

// Add inserts rec and returns its key. An existing key yields
// [ErrConstraintViolation].
func (d *Database) Add(ctx context.Context, store schema.StoreName, rec models.Record, opts ...Option) (any, error) {
	var key any
	err := d.single(ctx, "Add", store, false, applyOptions(opts), func(tx *Tx) error {
		var err error
		key, err = tx.Add(ctx, store, rec)
		return err
	})
	return key, err
}

// Put inserts or replaces rec and returns its key. With [ClearFirst] the
// store is emptied before the write.
func (d *Database) Put(ctx context.Context, store schema.StoreName, rec models.Record, opts ...Option) (any, error) {
	o := applyOptions(opts)
	var key any
	err := d.single(ctx, "Put", store, false, o, func(tx *Tx) error {
		var err error
		key, err = tx.put(ctx, store, rec, o.clearFirst)
		return err
	})
	return key, err
}

// Delete removes the record stored under key. Deleting a missing key is not
// an error.
func (d *Database) Delete(ctx context.Context, store schema.StoreName, key any, opts ...Option) error {
	return d.single(ctx, "Delete", store, false, applyOptions(opts), func(tx *Tx) error {
		return tx.Delete(ctx, store, key)
	})
}

// Clear removes every record of the store.
func (d *Database) Clear(ctx context.Context, store schema.StoreName, opts ...Option) error {
	return d.single(ctx, "Clear", store, false, applyOptions(opts), func(tx *Tx) error {
		return tx.Clear(ctx, store)
	})
}

// LastKeyDescending returns the highest integer key of the store plus one,
// or 1 when the store holds no integer key.
func (d *Database) LastKeyDescending(ctx context.Context, store schema.StoreName, opts ...Option) (int64, error) {
	var next int64
	err := d.single(ctx, "LastKeyDescending", store, true, applyOptions(opts), func(tx *Tx) error {
		var err error
		next, err = tx.LastKeyDescending(ctx, store)
		return err
	})
	return next, err
}
