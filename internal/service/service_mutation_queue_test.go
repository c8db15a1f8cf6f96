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

func newTestQueue(t *testing.T) (MutationQueue, *store.Database) {
	t.Helper()
	db := openTestDB(t)
	return NewMutationQueue(db, logger.Nop()), db
}

func nextID(t *testing.T, db *store.Database, marker schema.StoreName) int64 {
	t.Helper()
	next, err := db.LastKeyDescending(context.Background(), marker)
	require.NoError(t, err)
	return next
}

func TestMutationQueue_Create_PersonalNote(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	stored, err := q.Create(ctx, schema.PersonalNote, models.Record{"notes": "call Jane"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored["notesID"])

	mirror := mustGetAll(t, db, schema.PersonalNotes)
	require.Len(t, mirror, 1)
	assert.Equal(t, models.Record{"notesID": int64(1), "notes": "call Jane"}, mirror[0])

	queued := mustGetAll(t, db, schema.BackupAddPersonalNotes)
	require.Len(t, queued, 1)
	assert.Equal(t, int64(1), queued[0]["notesID"])
	assert.Equal(t, true, queued[0]["add_personalNotes"])
	assert.Equal(t, "call Jane", queued[0]["notes"])

	assert.Equal(t, int64(2), nextID(t, db, schema.MaxPersonalNotesID))
}

func TestMutationQueue_Create_IDsAreUniqueAndSequential(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	seen := make(map[any]bool)
	for i := 0; i < 5; i++ {
		stored, err := q.Create(ctx, schema.Horse, models.Record{"clientID": int64(7), "name": "Bella"})
		require.NoError(t, err)
		id := stored["horseID"]
		assert.False(t, seen[id], "horseID %v issued twice", id)
		seen[id] = true
		assert.Equal(t, id.(int64)+1, nextID(t, db, schema.MaxHorseID))
	}

	assert.Len(t, mustGetAll(t, db, schema.HorseList), 5)
	assert.Len(t, mustGetAll(t, db, schema.BackupAddHorse), 5)
}

func TestMutationQueue_Create_ClientAllocatesBothIDs(t *testing.T) {
	q, db := newTestQueue(t)

	stored, err := q.Create(context.Background(), schema.Client, models.Record{"name": "Jane"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), stored["primaryKey"])
	assert.Equal(t, int64(1), stored["clientID"])
	assert.Equal(t, int64(2), nextID(t, db, schema.MaxClientPrimaryKey))
	assert.Equal(t, int64(2), nextID(t, db, schema.MaxClientID))
}

func TestMutationQueue_Create_RespectsPulledMarker(t *testing.T) {
	q, db := newTestQueue(t)
	mustPut(t, db, schema.MaxTrimID, models.Record{"trimID": int64(41)})

	stored, err := q.Create(context.Background(), schema.Trimming, models.Record{"clientID": int64(3), "horseID": int64(9)})
	require.NoError(t, err)

	assert.Equal(t, int64(42), stored["trimID"])
	assert.Equal(t, int64(43), nextID(t, db, schema.MaxTrimID))

	mirror := mustGetAll(t, db, schema.Trimmings)
	require.Len(t, mirror, 1)
	assert.Equal(t, int64(3), mirror[0]["clientID"])
	assert.Equal(t, int64(42), mirror[0]["trimID"])
}

func TestMutationQueue_Create_QueueOnlyUsesAutoIncrement(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Create(ctx, schema.Mileage, models.Record{"miles": int64(12)})
	require.NoError(t, err)
	second, err := q.Create(ctx, schema.Mileage, models.Record{"miles": int64(30)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first["mileageID"])
	assert.Equal(t, int64(2), second["mileageID"])

	queued := mustGetAll(t, db, schema.BackupAddMileage)
	require.Len(t, queued, 2)
	assert.Equal(t, true, queued[1]["add_mileage"])
}

func TestMutationQueue_Create_QueueOnlyIDSurvivesAcknowledgement(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	first, err := q.Create(ctx, schema.Expenses, models.Record{"amount": 40})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first["expenseID"])

	// push acknowledged the batch
	require.NoError(t, db.Clear(ctx, schema.BackupAddExpenses))

	second, err := q.Create(ctx, schema.Expenses, models.Record{"amount": 15})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second["expenseID"])
}

func TestMutationQueue_Create_DuplicateIDRollsBack(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Create(ctx, schema.PersonalNote, models.Record{"notesID": int64(5), "notes": "a"})
	require.NoError(t, err)

	_, err = q.Create(ctx, schema.PersonalNote, models.Record{"notesID": int64(5), "notes": "b"})
	require.ErrorIs(t, err, store.ErrConstraintViolation)

	mirror := mustGetAll(t, db, schema.PersonalNotes)
	require.Len(t, mirror, 1)
	assert.Equal(t, "a", mirror[0]["notes"])
	assert.Len(t, mustGetAll(t, db, schema.BackupAddPersonalNotes), 1)
	assert.Equal(t, int64(6), nextID(t, db, schema.MaxPersonalNotesID))
}

func TestMutationQueue_Create_UnknownEntity(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Create(context.Background(), "farrier", models.Record{})
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestMutationQueue_Edit_MergesMirrorAndPendingAdd(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	stored, err := q.Create(ctx, schema.Horse, models.Record{"clientID": int64(1), "name": "Bella", "color": "bay"})
	require.NoError(t, err)

	require.NoError(t, q.Edit(ctx, schema.Horse, models.Record{"horseID": stored["horseID"], "name": "Belle"}))

	mirror, err := db.Get(ctx, schema.HorseList, stored["horseID"])
	require.NoError(t, err)
	assert.Equal(t, "Belle", mirror["name"])
	assert.Equal(t, "bay", mirror["color"])

	added := mustGetAll(t, db, schema.BackupAddHorse)
	require.Len(t, added, 1)
	assert.Equal(t, "Belle", added[0]["name"])

	edits := mustGetAll(t, db, schema.BackupEditHorse)
	require.Len(t, edits, 1)
	assert.Equal(t, true, edits[0]["edit_horse"])
	assert.Equal(t, "bay", edits[0]["color"])
}

func TestMutationQueue_Edit_OverwritesPriorEdit(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()
	mustPut(t, db, schema.ClientList, models.Record{"primaryKey": int64(4), "clientID": int64(4), "name": "Jane"})

	require.NoError(t, q.Edit(ctx, schema.Client, models.Record{"primaryKey": int64(4), "name": "Jane D."}))
	require.NoError(t, q.Edit(ctx, schema.Client, models.Record{"primaryKey": int64(4), "name": "Jane Doe"}))

	edits := mustGetAll(t, db, schema.BackupEditClient)
	require.Len(t, edits, 1)
	assert.Equal(t, "Jane Doe", edits[0]["name"])
	assert.Equal(t, int64(4), edits[0]["clientID"])
	assert.Empty(t, mustGetAll(t, db, schema.BackupAddClient))
}

func TestMutationQueue_Delete_KeepsOnlyIdentifyingFields(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()
	mustPut(t, db, schema.HorseList, models.Record{"horseID": int64(8), "clientID": int64(2), "name": "Star"})

	require.NoError(t, q.Delete(ctx, schema.Horse, models.Record{"horseID": int64(8), "clientID": int64(2), "name": "Star"}))

	assert.Empty(t, mustGetAll(t, db, schema.HorseList))
	deletes := mustGetAll(t, db, schema.BackupDeleteHorse)
	require.Len(t, deletes, 1)
	assert.Equal(t, models.Record{"horseID": int64(8), "clientID": int64(2), "delete_horse": true}, deletes[0])
}

func TestMutationQueue_Delete_TrimmingLeavesNewerSession(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()
	mustPut(t, db, schema.Trimmings, models.Record{"clientID": int64(2), "trimID": int64(10)})

	require.NoError(t, q.Delete(ctx, schema.Trimming, models.Record{"trimID": int64(9), "clientID": int64(2)}))
	assert.Len(t, mustGetAll(t, db, schema.Trimmings), 1)

	require.NoError(t, q.Delete(ctx, schema.Trimming, models.Record{"trimID": int64(10), "clientID": int64(2)}))
	assert.Empty(t, mustGetAll(t, db, schema.Trimmings))
	assert.Len(t, mustGetAll(t, db, schema.BackupDeleteTrimming), 2)
}

func TestMutationQueue_SaveSettings(t *testing.T) {
	q, db := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.SaveSettings(ctx, schema.FarrierPrices, models.Record{"userID": int64(1), "trim": int64(45)}))
	require.NoError(t, q.SaveSettings(ctx, schema.FarrierPrices, models.Record{"userID": int64(1), "trim": int64(50)}))
	require.NoError(t, q.SaveSettings(ctx, schema.ColorOptions, models.Record{"userID": int64(1), "theme": "dark"}))

	settings, err := db.Get(ctx, schema.UserSettings, int64(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"trim": int64(50)}, settings["farrier_prices"])
	assert.Equal(t, map[string]any{"theme": "dark"}, settings["color_options"])

	queued := mustGetAll(t, db, schema.BackupFarrierPrices)
	require.Len(t, queued, 1)
	assert.Equal(t, int64(50), queued[0]["trim"])
}

func TestMutationQueue_SaveSettings_UnknownSection(t *testing.T) {
	q, _ := newTestQueue(t)

	err := q.SaveSettings(context.Background(), "fonts", models.Record{"userID": int64(1)})
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestMutationQueue_Pending(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = q.Create(ctx, schema.PersonalNote, models.Record{"notes": "x"})
	require.NoError(t, err)
	require.NoError(t, q.Delete(ctx, schema.Horse, models.Record{"horseID": int64(3), "clientID": int64(1)}))
	_, err = q.Create(ctx, schema.Client, models.Record{"name": "Jane"})
	require.NoError(t, err)

	pending, err = q.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.StoreName{schema.BackupAddClient, schema.BackupAddPersonalNotes, schema.BackupDeleteHorse}, pending)
}
