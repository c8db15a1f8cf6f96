package service

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorReader(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	reader := NewMirrorReader(db, logger.Nop())

	mustPut(t, db, schema.HorseList, models.Record{"horseID": int64(1), "clientID": int64(7), "name": "Bella"})
	mustPut(t, db, schema.HorseList, models.Record{"horseID": int64(2), "clientID": int64(8), "name": "Duke"})

	all, err := reader.Records(ctx, schema.HorseList)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := reader.RecordsByIndex(ctx, schema.HorseList, "clientID", int64(7))
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Bella", owned[0]["name"])

	one, err := reader.Record(ctx, schema.HorseList, int64(2))
	require.NoError(t, err)
	assert.Equal(t, "Duke", one["name"])

	_, err = reader.Record(ctx, schema.HorseList, int64(9))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = reader.RecordsByIndex(ctx, schema.HorseList, "colour", "bay")
	require.ErrorIs(t, err, store.ErrUnknownIndex)
}

func TestMirrorReader_OnlyMirrors(t *testing.T) {
	reader := NewMirrorReader(openTestDB(t), logger.Nop())
	ctx := context.Background()

	for _, name := range []schema.StoreName{schema.BackupAddClient, schema.MaxClientID, schema.ErrorQueue, schema.BackupAddMileage} {
		_, err := reader.Records(ctx, name)
		require.ErrorIs(t, err, ErrNotAMirror, name)
	}

	_, err := reader.Records(ctx, schema.UserSettings)
	require.NoError(t, err)
}
