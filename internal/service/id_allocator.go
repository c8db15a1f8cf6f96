package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// IDAllocator mints locally sequential ids from the max-id marker stores.
// Both methods run inside the caller's transaction so the marker advances
// together with the write that consumes the id.
type IDAllocator struct{}

// Next returns the id following the marker's current value, or 1.
func (IDAllocator) Next(ctx context.Context, tx *store.Tx, marker schema.StoreName) (int64, error) {
	return tx.LastKeyDescending(ctx, marker)
}

// Advance replaces the marker's single record with id.
func (IDAllocator) Advance(ctx context.Context, tx *store.Tx, marker schema.StoreName, id int64) error {
	desc, ok := schema.Lookup(marker)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMarker, marker)
	}
	_, err := tx.Put(ctx, marker, models.Record{desc.KeyPath: id}, store.ClearFirst())
	return err
}

// Claim assigns field an id from marker unless rec already carries one, then
// advances the marker past the id in use. A caller-supplied id lower than
// the marker leaves the marker where it is.
func (a IDAllocator) Claim(ctx context.Context, tx *store.Tx, marker schema.StoreName, rec models.Record, field string) (int64, error) {
	next, err := a.Next(ctx, tx, marker)
	if err != nil {
		return 0, err
	}

	id, ok := models.Normalize(rec[field]).(int64)
	if !ok || id <= 0 {
		id = next
	}
	rec[field] = id

	if id >= next {
		if err = a.Advance(ctx, tx, marker, id); err != nil {
			return 0, err
		}
	}
	return id, nil
}
