// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
)

const settingsUserField = "userID"

type mutationQueue struct {
	db  *store.Database
	ids IDAllocator

	logger *logger.Logger
}

// NewMutationQueue returns the [MutationQueue] writing through db.
func NewMutationQueue(db *store.Database, logger *logger.Logger) MutationQueue {
	return &mutationQueue{db: db, logger: logger}
}

// Create implements [MutationQueue]. Queue-only entities (mileage, expenses)
// have no mirror and no marker: the auto-increment add queue assigns the key.
func (q *mutationQueue) Create(ctx context.Context, name schema.EntityName, rec models.Record) (models.Record, error) {
	entity, ok := schema.LookupEntity(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}

	stored := rec.Clone()
	if stored == nil {
		stored = models.Record{}
	}

	scope := append([]schema.StoreName{entity.AddQueue}, entity.Markers()...)
	if !entity.QueueOnly() {
		scope = append(scope, entity.Mirror)
	}

	err := q.db.Update(ctx, scope, func(tx *store.Tx) error {
		for _, id := range entity.IDs {
			if _, err := q.ids.Claim(ctx, tx, id.Marker, stored, id.Field); err != nil {
				return fmt.Errorf("allocate %s: %w", id.Field, err)
			}
		}

		if !entity.QueueOnly() {
			if err := q.putMirror(ctx, tx, entity, stored, true); err != nil {
				return err
			}
		}

		entry := stored.Clone()
		entry[entity.Discriminator(schema.OpAdd)] = true
		key, err := tx.Add(ctx, entity.AddQueue, entry)
		if err != nil {
			return err
		}
		stored[entity.Key] = key
		return nil
	})
	if err != nil {
		q.logger.Err(err).Str("func", "*mutationQueue.Create").Str("entity", string(name)).Msg("error queueing new record")
		return nil, fmt.Errorf("create %s: %w", name, err)
	}

	return stored, nil
}

// Edit implements [MutationQueue]. rec is merged over the mirror record, so
// partial edits keep the fields they do not mention. A record still waiting
// in the add queue has that entry refreshed as well.
func (q *mutationQueue) Edit(ctx context.Context, name schema.EntityName, rec models.Record) error {
	entity, ok := schema.LookupEntity(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}

	scope := []schema.StoreName{entity.EditQueue, entity.AddQueue}
	if !entity.QueueOnly() {
		scope = append(scope, entity.Mirror)
	}

	err := q.db.Update(ctx, scope, func(tx *store.Tx) error {
		full := rec.Clone()
		if !entity.QueueOnly() {
			merged, err := q.mergeMirror(ctx, tx, entity, full)
			if err != nil {
				return err
			}
			full = merged
			if err = q.putMirror(ctx, tx, entity, full, false); err != nil {
				return err
			}
		}

		added, err := tx.Get(ctx, entity.AddQueue, full[entity.Key])
		switch {
		case err == nil:
			added.Merge(full)
			if _, err = tx.Put(ctx, entity.AddQueue, added); err != nil {
				return err
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		entry := full.Clone()
		entry[entity.Discriminator(schema.OpEdit)] = true
		_, err = tx.Put(ctx, entity.EditQueue, entry)
		return err
	})
	if err != nil {
		q.logger.Err(err).Str("func", "*mutationQueue.Edit").Str("entity", string(name)).Msg("error queueing edit")
		return fmt.Errorf("edit %s: %w", name, err)
	}

	return nil
}

// Delete implements [MutationQueue]. The delete-queue entry holds only the
// entity's identifying fields. Pending add or edit entries are kept and sync
// before the delete.
func (q *mutationQueue) Delete(ctx context.Context, name schema.EntityName, rec models.Record) error {
	entity, ok := schema.LookupEntity(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}

	scope := []schema.StoreName{entity.DeleteQueue}
	if !entity.QueueOnly() {
		scope = append(scope, entity.Mirror)
	}

	err := q.db.Update(ctx, scope, func(tx *store.Tx) error {
		if !entity.QueueOnly() {
			if err := q.deleteMirror(ctx, tx, entity, rec); err != nil {
				return err
			}
		}

		entry := rec.Pick(entity.DeleteFields...)
		entry[entity.Discriminator(schema.OpDelete)] = true
		_, err := tx.Put(ctx, entity.DeleteQueue, entry)
		return err
	})
	if err != nil {
		q.logger.Err(err).Str("func", "*mutationQueue.Delete").Str("entity", string(name)).Msg("error queueing delete")
		return fmt.Errorf("delete %s: %w", name, err)
	}

	return nil
}

// SaveSettings implements [MutationQueue]. The section is stored under its
// own name inside the user_settings singleton; the section queue only ever
// holds the latest change.
func (q *mutationQueue) SaveSettings(ctx context.Context, section schema.SettingsSection, rec models.Record) error {
	if !section.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}

	userID := rec[settingsUserField]
	scope := []schema.StoreName{schema.UserSettings, section.Queue()}

	err := q.db.Update(ctx, scope, func(tx *store.Tx) error {
		settings, err := tx.Get(ctx, schema.UserSettings, userID)
		if errors.Is(err, store.ErrNotFound) {
			settings, err = models.Record{settingsUserField: userID}, nil
		}
		if err != nil {
			return err
		}

		payload := rec.Clone()
		delete(payload, settingsUserField)
		settings[string(section)] = map[string]any(payload)
		if _, err = tx.Put(ctx, schema.UserSettings, settings); err != nil {
			return err
		}

		_, err = tx.Put(ctx, section.Queue(), rec.Clone(), store.ClearFirst())
		return err
	})
	if err != nil {
		q.logger.Err(err).Str("func", "*mutationQueue.SaveSettings").Str("section", string(section)).Msg("error queueing settings")
		return fmt.Errorf("save %s settings: %w", section, err)
	}

	return nil
}

// Pending implements [MutationQueue].
func (q *mutationQueue) Pending(ctx context.Context) ([]schema.StoreName, error) {
	order := schema.BackupOrder()
	pending := make([]schema.StoreName, 0, len(order))

	err := q.db.View(ctx, order, func(tx *store.Tx) error {
		for _, s := range order {
			n, err := tx.Count(ctx, s)
			if err != nil {
				return err
			}
			if n > 0 {
				pending = append(pending, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count pending queues: %w", err)
	}

	return pending, nil
}

// putMirror writes rec into the entity's mirror. A fresh record goes through
// Add so an id collision surfaces as a constraint violation; mirrors keyed by
// another field (trimmings by clientID) are upserted.
func (q *mutationQueue) putMirror(ctx context.Context, tx *store.Tx, entity schema.Entity, rec models.Record, fresh bool) error {
	desc, _ := schema.Lookup(entity.Mirror)
	var err error
	if fresh && desc.KeyPath == entity.Key {
		_, err = tx.Add(ctx, entity.Mirror, rec.Clone())
	} else {
		_, err = tx.Put(ctx, entity.Mirror, rec.Clone())
	}
	return err
}

func (q *mutationQueue) mergeMirror(ctx context.Context, tx *store.Tx, entity schema.Entity, rec models.Record) (models.Record, error) {
	desc, _ := schema.Lookup(entity.Mirror)
	key, err := store.KeyOf(desc, rec)
	if err != nil {
		return nil, err
	}

	existing, err := tx.Get(ctx, entity.Mirror, key)
	if errors.Is(err, store.ErrNotFound) {
		return rec, nil
	}
	if err != nil {
		return nil, err
	}
	if desc.KeyPath != entity.Key && !sameKey(existing[entity.Key], rec[entity.Key]) {
		return rec, nil
	}

	existing.Merge(rec)
	return existing, nil
}

// deleteMirror removes the mirror record of rec. For mirrors keyed by
// another field the record is removed only while it still describes rec.
func (q *mutationQueue) deleteMirror(ctx context.Context, tx *store.Tx, entity schema.Entity, rec models.Record) error {
	desc, _ := schema.Lookup(entity.Mirror)
	if desc.KeyPath == entity.Key {
		return tx.Delete(ctx, entity.Mirror, rec[entity.Key])
	}

	mirrorKey, ok := rec[desc.KeyPath]
	if !ok {
		return nil
	}
	existing, err := tx.Get(ctx, entity.Mirror, mirrorKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !sameKey(existing[entity.Key], rec[entity.Key]) {
		return nil
	}
	return tx.Delete(ctx, entity.Mirror, mirrorKey)
}

func sameKey(a, b any) bool {
	return models.Normalize(a) == models.Normalize(b)
}
