package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/models"
)

func TestCacheRepository_PutMatch(t *testing.T) {
	db := openTestDB(t)
	repo := NewCacheRepository(db.DB, logger.Nop())
	ctx := context.Background()

	_, ok, err := repo.Match(ctx, "static-v1", "/app.js")
	require.NoError(t, err)
	assert.False(t, ok)

	body := []byte("console.log('offline');")
	resp := models.CachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/javascript"}},
		Body:   body,
	}
	require.NoError(t, repo.Put(ctx, "static-v1", "/app.js", resp))

	got, ok, err := repo.Match(ctx, "static-v1", "/app.js")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, body, got.Body)
	assert.Equal(t, "text/javascript", got.Header.Get("Content-Type"))
	assert.False(t, got.StoredAt.IsZero())

	_, ok, err = repo.Match(ctx, "pages-v1", "/app.js")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_MatchAnyNewest(t *testing.T) {
	db := openTestDB(t)
	repo := NewCacheRepository(db.DB, logger.Nop())
	ctx := context.Background()

	old := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Put(ctx, "pages-v1", "/clients", models.CachedResponse{Status: 200, Body: []byte("old"), StoredAt: old}))
	require.NoError(t, repo.Put(ctx, "pages-v2", "/clients", models.CachedResponse{Status: 200, Body: []byte("new"), StoredAt: time.Now()}))

	got, ok, err := repo.MatchAny(ctx, "/clients")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got.Body)
}

func TestCacheRepository_NamesAndDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewCacheRepository(db.DB, logger.Nop())
	ctx := context.Background()

	for _, name := range []string{"static-v1", "pages-v1", "static-v2"} {
		require.NoError(t, repo.Put(ctx, name, "/", models.CachedResponse{Status: 200}))
	}

	names, err := repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pages-v1", "static-v1", "static-v2"}, names)

	require.NoError(t, repo.DeleteCache(ctx, "static-v1"))
	names, err = repo.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pages-v1", "static-v2"}, names)
}
