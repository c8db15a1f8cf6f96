package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// reconcile brings every declared store in line with its descriptor inside a
// single transaction. Missing stores are created; stores whose recorded key
// path, auto-increment flag or indexes differ are drained, dropped, recreated
// and refilled. Matching stores are left untouched.
func (d *Database) reconcile(ctx context.Context, registry []schema.Descriptor) error {
	sqlTx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrapDriverError(err, ErrTransactionAborted)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	catalog, err := readCatalog(ctx, sqlTx)
	if err != nil {
		return err
	}

	for _, desc := range registry {
		var exists bool
		if exists, err = storeExists(ctx, sqlTx, desc); err != nil {
			return err
		}

		actual, known := catalog[desc.Name]
		switch {
		case !exists:
			if err = createStore(ctx, sqlTx, desc); err != nil {
				return err
			}
			d.logger.Debug().Str("func", "Database.reconcile").Str("store", string(desc.Name)).Msg("store created")
		case !known || !actual.Equal(desc):
			var moved int
			if moved, err = d.rebuildStore(ctx, sqlTx, desc); err != nil {
				return err
			}
			d.logger.Info().
				Str("func", "Database.reconcile").
				Str("store", string(desc.Name)).
				Int("records", moved).
				Msg("store rebuilt to match its declaration")
		}

		if err = writeCatalog(ctx, sqlTx, desc); err != nil {
			return err
		}
	}

	if _, err = sqlTx.ExecContext(ctx, fmt.Sprintf(setUserVersion, schema.Version)); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrating, err)
	}

	if err = sqlTx.Commit(); err != nil {
		return wrapDriverError(err, ErrTransactionAborted)
	}
	return nil
}

// UserVersion returns the schema version recorded in the database file.
func (d *Database) UserVersion(ctx context.Context) (int, error) {
	var v int
	if err := d.DB.QueryRowContext(ctx, getUserVersion).Scan(&v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return v, nil
}

func readCatalog(ctx context.Context, tx *sql.Tx) (map[schema.StoreName]schema.Descriptor, error) {
	rows, err := tx.QueryContext(ctx, selectCatalog)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrating, err)
	}
	defer rows.Close()

	catalog := make(map[schema.StoreName]schema.Descriptor)
	for rows.Next() {
		var (
			desc    schema.Descriptor
			autoInc bool
			indexes string
		)
		if err = rows.Scan(&desc.Name, &desc.KeyPath, &autoInc, &indexes); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		desc.AutoIncrement = autoInc
		if err = json.Unmarshal([]byte(indexes), &desc.Indexes); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMigrating, err)
		}
		catalog[desc.Name] = desc
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return catalog, nil
}

func writeCatalog(ctx context.Context, tx *sql.Tx, desc schema.Descriptor) error {
	indexes := desc.Indexes
	if indexes == nil {
		indexes = []schema.Index{}
	}
	encoded, err := json.Marshal(indexes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigrating, err)
	}
	if _, err = tx.ExecContext(ctx, upsertCatalog, string(desc.Name), desc.KeyPath, desc.AutoIncrement, string(encoded)); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrating, err)
	}
	return nil
}

func storeExists(ctx context.Context, tx *sql.Tx, desc schema.Descriptor) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, tableExists, desc.Table()).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMigrating, err)
	}
	return n > 0, nil
}

func createStore(ctx context.Context, tx *sql.Tx, desc schema.Descriptor) error {
	for _, stmt := range buildCreateStore(desc) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: create %s: %w", ErrMigrating, desc.Name, err)
		}
	}
	return nil
}

// rebuildStore moves every record of the store into a fresh table built from
// desc. Keys are re-derived from the new key path; auto-increment stores
// assign keys to records that lack one.
func (d *Database) rebuildStore(ctx context.Context, tx *sql.Tx, desc schema.Descriptor) (int, error) {
	query, args, err := buildGetAllQuery(desc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: drain %s: %w", ErrMigrating, desc.Name, err)
	}
	var records []models.Record
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		rec, decErr := models.DecodeRecord([]byte(raw))
		if decErr != nil {
			rows.Close()
			return 0, decErr
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	rows.Close()

	if _, err = tx.ExecContext(ctx, buildDropStore(desc)); err != nil {
		return 0, fmt.Errorf("%w: drop %s: %w", ErrMigrating, desc.Name, err)
	}
	if err = createStore(ctx, tx, desc); err != nil {
		return 0, err
	}

	scoped := &Tx{
		tx:     tx,
		scope:  map[schema.StoreName]schema.Descriptor{desc.Name: desc},
		logger: d.logger,
	}
	moved := 0
	for _, rec := range records {
		if _, err = scoped.write(ctx, desc, rec, true); err != nil {
			if errors.Is(err, ErrInvalidKey) {
				d.logger.Warn().
					Str("func", "Database.rebuildStore").
					Str("store", string(desc.Name)).
					Str("key_path", desc.KeyPath).
					Msg("record has no value at the new key path, dropped")
				err = nil
				continue
			}
			return 0, err
		}
		moved++
	}

	return moved, nil
}
