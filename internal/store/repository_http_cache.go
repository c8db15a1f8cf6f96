package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/snappy"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// httpCacheRepository is the SQLite-backed [CacheRepository]. Bodies are
// stored snappy-compressed.
type httpCacheRepository struct {
	*DB
	logger *logger.Logger
}

// NewCacheRepository constructs a [CacheRepository] over db.
func NewCacheRepository(db *DB, log *logger.Logger) CacheRepository {
	return &httpCacheRepository{DB: db, logger: log}
}

func (r *httpCacheRepository) Match(ctx context.Context, cacheName, url string) (models.CachedResponse, bool, error) {
	row := r.DB.QueryRowContext(ctx, matchCachedResponse, cacheName, url)
	resp, ok, err := scanCachedResponse(row)
	if err != nil {
		r.logger.Err(err).
			Str("func", "httpCacheRepository.Match").
			Str("cache", cacheName).
			Str("url", url).
			Msg("failed to read cached response")
	}
	return resp, ok, err
}

func (r *httpCacheRepository) MatchAny(ctx context.Context, url string) (models.CachedResponse, bool, error) {
	row := r.DB.QueryRowContext(ctx, matchAnyCachedResponse, url)
	resp, ok, err := scanCachedResponse(row)
	if err != nil {
		r.logger.Err(err).
			Str("func", "httpCacheRepository.MatchAny").
			Str("url", url).
			Msg("failed to read cached response")
	}
	return resp, ok, err
}

func (r *httpCacheRepository) Put(ctx context.Context, cacheName, url string, resp models.CachedResponse) error {
	header, err := json.Marshal(resp.Header)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}
	storedAt := resp.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}

	_, err = r.DB.ExecContext(ctx, putCachedResponse,
		cacheName,
		url,
		resp.Status,
		string(header),
		snappy.Encode(nil, resp.Body),
		storedAt.UnixNano(),
	)
	if err != nil {
		r.logger.Err(err).
			Str("func", "httpCacheRepository.Put").
			Str("cache", cacheName).
			Str("url", url).
			Msg("failed to store response")
		return wrapDriverError(err, ErrExecutingQuery)
	}
	return nil
}

func (r *httpCacheRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, listCacheNames)
	if err != nil {
		return nil, wrapDriverError(err, ErrExecutingQuery)
	}
	defer rows.Close()

	names := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return names, nil
}

func (r *httpCacheRepository) DeleteCache(ctx context.Context, cacheName string) error {
	if _, err := r.DB.ExecContext(ctx, deleteCache, cacheName); err != nil {
		r.logger.Err(err).Str("func", "httpCacheRepository.DeleteCache").Str("cache", cacheName).Msg("failed to delete cache")
		return wrapDriverError(err, ErrExecutingQuery)
	}
	return nil
}

func scanCachedResponse(row *sql.Row) (models.CachedResponse, bool, error) {
	var (
		resp     models.CachedResponse
		header   string
		body     []byte
		storedAt int64
	)
	err := row.Scan(&resp.Status, &header, &body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedResponse{}, false, nil
	}
	if err != nil {
		return models.CachedResponse{}, false, wrapDriverError(err, ErrExecutingQuery)
	}

	resp.Header = make(http.Header)
	if err = json.Unmarshal([]byte(header), &resp.Header); err != nil {
		return models.CachedResponse{}, false, fmt.Errorf("%w: %w", models.ErrDecodingRecord, err)
	}
	if resp.Body, err = snappy.Decode(nil, body); err != nil {
		return models.CachedResponse{}, false, fmt.Errorf("%w: %w", models.ErrDecodingRecord, err)
	}
	resp.StoredAt = time.Unix(0, storedAt)

	return resp, true, nil
}
