package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// Tx is a transaction scoped to a fixed set of stores. Operations issued
// through the same Tx are strictly ordered and commit atomically.
type Tx struct {
	tx       *sql.Tx
	scope    map[schema.StoreName]schema.Descriptor
	readOnly bool
	done     bool
	logger   *logger.Logger
}

func (t *Tx) descriptor(store schema.StoreName, write bool) (schema.Descriptor, error) {
	if t.done {
		return schema.Descriptor{}, fmt.Errorf("%w: transaction already finished", ErrTransactionAborted)
	}
	desc, ok := t.scope[store]
	if !ok {
		return schema.Descriptor{}, fmt.Errorf("%w: %s", ErrStoreNotInScope, store)
	}
	if write && t.readOnly {
		return schema.Descriptor{}, fmt.Errorf("%w: %s", ErrReadOnlyTransaction, store)
	}
	return desc, nil
}

// Get returns the record stored under key, or [ErrNotFound].
func (t *Tx) Get(ctx context.Context, store schema.StoreName, key any) (models.Record, error) {
	desc, err := t.descriptor(store, false)
	if err != nil {
		return nil, err
	}
	k, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}

	query, args, err := buildGetQuery(desc, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var raw string
	err = t.tx.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s[%v]", ErrNotFound, store, k)
	}
	if err != nil {
		t.logger.Err(err).Str("func", "Tx.Get").Str("store", string(store)).Msg("failed to get record")
		return nil, wrapDriverError(err, ErrTransactionAborted)
	}

	return models.DecodeRecord([]byte(raw))
}

// GetAll returns every record of the store in key order.
func (t *Tx) GetAll(ctx context.Context, store schema.StoreName) ([]models.Record, error) {
	desc, err := t.descriptor(store, false)
	if err != nil {
		return nil, err
	}

	query, args, err := buildGetAllQuery(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return t.queryRecords(ctx, "Tx.GetAll", store, query, args)
}

// GetAllByIndex returns the records whose indexed field equals value.
func (t *Tx) GetAllByIndex(ctx context.Context, store schema.StoreName, index string, value any) ([]models.Record, error) {
	desc, err := t.descriptor(store, false)
	if err != nil {
		return nil, err
	}
	idx, ok := desc.Index(index)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, store, index)
	}
	v, err := normalizeKey(value)
	if err != nil {
		return nil, err
	}

	query, args, err := buildGetAllByIndexQuery(desc, idx, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return t.queryRecords(ctx, "Tx.GetAllByIndex", store, query, args)
}

func (t *Tx) queryRecords(ctx context.Context, fn string, store schema.StoreName, query string, args []any) ([]models.Record, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		t.logger.Err(err).Str("func", fn).Str("store", string(store)).Msg("failed to execute query")
		return nil, wrapDriverError(err, ErrTransactionAborted)
	}
	defer rows.Close()

	records := make([]models.Record, 0, 16)
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		rec, err := models.DecodeRecord([]byte(raw))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return records, nil
}

// Keys returns every key of the store in order.
func (t *Tx) Keys(ctx context.Context, store schema.StoreName) ([]any, error) {
	desc, err := t.descriptor(store, false)
	if err != nil {
		return nil, err
	}

	query, args, err := buildKeysQuery(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDriverError(err, ErrTransactionAborted)
	}
	defer rows.Close()

	keys := make([]any, 0, 16)
	for rows.Next() {
		var k any
		if err = rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if k, err = normalizeKey(k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return keys, nil
}

// Count returns the number of records in the store.
func (t *Tx) Count(ctx context.Context, store schema.StoreName) (int, error) {
	desc, err := t.descriptor(store, false)
	if err != nil {
		return 0, err
	}

	query, args, err := buildCountQuery(desc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var n int
	if err = t.tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, wrapDriverError(err, ErrTransactionAborted)
	}
	return n, nil
}

// Add inserts rec and returns its key. A record whose key already exists
// yields [ErrConstraintViolation]. Auto-increment stores assign the next key
// when rec does not carry one and write it back into rec.
func (t *Tx) Add(ctx context.Context, store schema.StoreName, rec models.Record) (any, error) {
	desc, err := t.descriptor(store, true)
	if err != nil {
		return nil, err
	}
	return t.write(ctx, desc, rec, false)
}

// Put inserts or replaces rec and returns its key. Passing [ClearFirst]
// empties the store in the same transaction before the write.
func (t *Tx) Put(ctx context.Context, store schema.StoreName, rec models.Record, opts ...Option) (any, error) {
	return t.put(ctx, store, rec, applyOptions(opts).clearFirst)
}

func (t *Tx) put(ctx context.Context, store schema.StoreName, rec models.Record, clearFirst bool) (any, error) {
	desc, err := t.descriptor(store, true)
	if err != nil {
		return nil, err
	}
	if clearFirst {
		if err = t.Clear(ctx, store); err != nil {
			return nil, err
		}
	}
	return t.write(ctx, desc, rec, true)
}

func (t *Tx) write(ctx context.Context, desc schema.Descriptor, rec models.Record, upsert bool) (any, error) {
	key, err := KeyOf(desc, rec)
	if errors.Is(err, ErrInvalidKey) && desc.AutoIncrement {
		if _, present := rec[desc.KeyPath]; !present || rec[desc.KeyPath] == nil {
			next, seqErr := t.nextSequence(ctx, desc)
			if seqErr != nil {
				return nil, seqErr
			}
			key, err = next, nil
			rec[desc.KeyPath] = next
		}
	}
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	query, args, err := buildInsertQuery(desc, key, string(value), upsert)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
		t.logger.Err(err).
			Str("func", "Tx.write").
			Str("store", string(desc.Name)).
			Interface("key", key).
			Bool("upsert", upsert).
			Msg("failed to write record")
		return nil, wrapDriverError(err, ErrTransactionAborted)
	}

	if n, ok := key.(int64); ok && desc.AutoIncrement {
		if _, err = t.tx.ExecContext(ctx, bumpSequence, string(desc.Name), n); err != nil {
			return nil, wrapDriverError(err, ErrTransactionAborted)
		}
	}

	return key, nil
}

// Delete removes the record stored under key.
func (t *Tx) Delete(ctx context.Context, store schema.StoreName, key any) error {
	desc, err := t.descriptor(store, true)
	if err != nil {
		return err
	}
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}

	query, args, err := buildDeleteQuery(desc, k)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
		return wrapDriverError(err, ErrTransactionAborted)
	}
	return nil
}

// Clear removes every record of the store.
func (t *Tx) Clear(ctx context.Context, store schema.StoreName) error {
	desc, err := t.descriptor(store, true)
	if err != nil {
		return err
	}

	query, args, err := buildClearQuery(desc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
		return wrapDriverError(err, ErrTransactionAborted)
	}
	return nil
}

// LastKeyDescending returns the highest integer key plus one, or 1 when the
// store is empty. It is the only id allocation primitive.
func (t *Tx) LastKeyDescending(ctx context.Context, store schema.StoreName) (int64, error) {
	desc, err := t.descriptor(store, false)
	if err != nil {
		return 0, err
	}
	return t.lastKey(ctx, desc)
}

func (t *Tx) lastKey(ctx context.Context, desc schema.Descriptor) (int64, error) {
	query, args, err := buildLastKeyQuery(desc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var last int64
	err = t.tx.QueryRowContext(ctx, query, args...).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, wrapDriverError(err, ErrTransactionAborted)
	}
	return last + 1, nil
}

// nextSequence is the key generator of an auto-increment store: one past the
// larger of the highest stored key and the highest key ever issued.
func (t *Tx) nextSequence(ctx context.Context, desc schema.Descriptor) (int64, error) {
	next, err := t.lastKey(ctx, desc)
	if err != nil {
		return 0, err
	}

	var seq int64
	err = t.tx.QueryRowContext(ctx, selectSequence, string(desc.Name)).Scan(&seq)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return next, nil
	case err != nil:
		return 0, wrapDriverError(err, ErrTransactionAborted)
	}
	return max(next, seq+1), nil
}

// KeyOf extracts the primary key of rec under the store's key path.
func KeyOf(desc schema.Descriptor, rec models.Record) (any, error) {
	if desc.KeyPath == "" {
		return nil, fmt.Errorf("%w: store %s has no key path", ErrInvalidKey, desc.Name)
	}
	v, ok := rec[desc.KeyPath]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s is missing %q", ErrInvalidKey, desc.Name, desc.KeyPath)
	}
	return normalizeKey(v)
}

// normalizeKey converts a key to the value SQLite stores: int64 for integral
// numbers, float64 for the rest, or string.
func normalizeKey(v any) (any, error) {
	switch k := models.Normalize(v).(type) {
	case int64, string:
		return k, nil
	case float64:
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, k)
		}
		return k, nil
	case int8:
		return int64(k), nil
	case int16:
		return int64(k), nil
	case uint8:
		return int64(k), nil
	case uint16:
		return int64(k), nil
	case uint32:
		return int64(k), nil
	case uint:
		return int64(k), nil
	case uint64:
		if k > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows", ErrInvalidKey, k)
		}
		return int64(k), nil
	case []byte:
		return string(k), nil
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, v)
	}
}
