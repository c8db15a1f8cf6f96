// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package offline implements the offline request cache: a local HTTP proxy
// in front of the application origin that keeps the app usable without a
// network.
//
// Requests are classified into one of three strategies. Requests on the
// no-intercept list and non-GET requests pass straight to the origin. Static
// assets are served cache-first. Everything else is network-first, falling
// back to the cache, then to the precached offline page, then to a minimal
// 503. A request never fails with anything but a well-formed response.
//
// Responses live in named cache generations persisted by
// [store.CacheRepository]. Bumping the generation names in the configuration
// and calling [Cache.Activate] drops every older generation.
package offline

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// Cache is the offline request cache. It is safe for concurrent use.
type Cache struct {
	storage store.CacheRepository
	client  *utils.HTTPClient
	origin  string
	cfg     config.ClientOffline

	logger *logger.Logger
}

// New constructs a [Cache] fetching from cfg.Origin. Redirects are never
// followed: the cache hands them back to the caller as they are.
func New(storage store.CacheRepository, cfg config.ClientOffline, logger *logger.Logger) (*Cache, error) {
	origin := strings.TrimRight(strings.TrimSpace(cfg.Origin), "/")
	if origin == "" {
		return nil, ErrEmptyOrigin
	}
	if !strings.Contains(origin, "://") {
		origin = "http://" + origin
	}

	return &Cache{
		storage: storage,
		client:  utils.NewHTTPClient(utils.WithBaseURL(origin), utils.WithTimeout(cfg.RequestTimeout), utils.WithoutRedirects()),
		origin:  origin,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Install precaches the asset manifest, plus the offline page, into the
// static generation. Every asset is fetched before anything is stored, so a
// failed install leaves the cache as it was.
func (c *Cache) Install(ctx context.Context) error {
	assets := c.assets()
	fetched := make([]*Response, 0, len(assets))

	for _, asset := range assets {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInstall, asset, err)
		}

		resp, err := c.network(ctx, req)
		if err != nil {
			c.logger.Err(err).Str("func", "*Cache.Install").Str("asset", asset).Msg("error fetching asset")
			return fmt.Errorf("%w: %s: %w", ErrInstall, asset, err)
		}
		if !isSuccess(resp.Status) {
			return fmt.Errorf("%w: %s: http %d", ErrInstall, asset, resp.Status)
		}
		fetched = append(fetched, resp)
	}

	for i, resp := range fetched {
		if err := c.storage.Put(ctx, c.cfg.StaticCache, assets[i], resp.cached()); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInstall, assets[i], err)
		}
	}

	c.logger.Info().Str("cache", c.cfg.StaticCache).Int("assets", len(assets)).Msg("offline cache installed")
	return nil
}

// Activate deletes every cache generation other than the current static and
// pages generations and returns the names it removed.
func (c *Cache) Activate(ctx context.Context) ([]string, error) {
	names, err := c.storage.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cache generations: %w", err)
	}

	var deleted []string
	for _, name := range names {
		if name == c.cfg.StaticCache || name == c.cfg.PagesCache {
			continue
		}
		if err = c.storage.DeleteCache(ctx, name); err != nil {
			return deleted, fmt.Errorf("delete cache %s: %w", name, err)
		}
		deleted = append(deleted, name)
	}

	if len(deleted) > 0 {
		c.logger.Info().Strs("deleted", deleted).Msg("stale cache generations removed")
	}
	return deleted, nil
}

func (c *Cache) assets() []string {
	assets := slices.Clone(c.cfg.Manifest)
	if c.cfg.OfflinePage != "" && !slices.Contains(assets, c.cfg.OfflinePage) {
		assets = append(assets, c.cfg.OfflinePage)
	}
	return assets
}

// store keeps resp in the named generation. Caching is best-effort.
func (c *Cache) store(ctx context.Context, cacheName, key string, resp *Response) {
	if err := c.storage.Put(ctx, cacheName, key, resp.cached()); err != nil {
		c.logger.Err(err).Str("func", "*Cache.store").Str("cache", cacheName).Str("url", key).Msg("error caching response")
	}
}

// match looks key up in every generation. Read failures count as a miss.
func (c *Cache) match(ctx context.Context, key string) (*Response, bool) {
	cached, ok, err := c.storage.MatchAny(ctx, key)
	if err != nil {
		c.logger.Err(err).Str("func", "*Cache.match").Str("url", key).Msg("error reading cache")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return fromCached(cached, SourceCache), true
}

func fromCached(cached models.CachedResponse, source Source) *Response {
	header := cached.Header
	if header == nil {
		header = make(http.Header)
	}
	return &Response{Status: cached.Status, Header: header, Body: cached.Body, Source: source}
}
