package store

import (
	"context"

	"github.com/MKhiriev/go-farrier-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ErrorReporter receives storage failures after they are rolled back.
// Reporting is best-effort: implementations must not block for long and must
// never call back into a store operation that reports again.
type ErrorReporter interface {
	Report(ctx context.Context, page string, err error)
}

// CacheRepository persists HTTP responses for the offline request cache.
// Responses are grouped into named cache generations.
type CacheRepository interface {
	// Match returns the response stored for url in the named cache.
	Match(ctx context.Context, cacheName, url string) (models.CachedResponse, bool, error)
	// MatchAny returns the most recently stored response for url in any cache.
	MatchAny(ctx context.Context, url string) (models.CachedResponse, bool, error)
	// Put stores or replaces the response for url in the named cache.
	Put(ctx context.Context, cacheName, url string, resp models.CachedResponse) error
	// Names lists every cache generation holding at least one response.
	Names(ctx context.Context) ([]string, error)
	// DeleteCache drops every response of the named cache.
	DeleteCache(ctx context.Context, cacheName string) error
}
