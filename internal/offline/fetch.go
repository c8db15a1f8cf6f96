package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// Strategy is how a request is answered.
type Strategy int

const (
	// StrategyPassthrough sends the request to the origin and never caches.
	StrategyPassthrough Strategy = iota
	// StrategyCacheFirst serves a cached copy when there is one.
	StrategyCacheFirst
	// StrategyNetworkFirst asks the origin first and falls back to the cache.
	StrategyNetworkFirst
)

func (s Strategy) String() string {
	switch s {
	case StrategyPassthrough:
		return "passthrough"
	case StrategyCacheFirst:
		return "cache-first"
	default:
		return "network-first"
	}
}

// Source tells where a response came from.
type Source string

const (
	SourceNetwork     Source = "network"
	SourceCache       Source = "cache"
	SourceOfflinePage Source = "offline-page"
	SourceUnavailable Source = "unavailable"
)

// Response is the answer of the cache to one request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Source Source
}

func (r *Response) cached() models.CachedResponse {
	return models.CachedResponse{Status: r.Status, Header: cleanHeader(r.Header), Body: r.Body}
}

// Classify returns the strategy used for r.
func (c *Cache) Classify(r *http.Request) Strategy {
	if r.Method != http.MethodGet || hasPrefix(r.URL.Path, c.cfg.NoIntercept) {
		return StrategyPassthrough
	}
	if slices.Contains(c.cfg.Manifest, r.URL.Path) || c.isStatic(r.URL.Path) {
		return StrategyCacheFirst
	}
	return StrategyNetworkFirst
}

// Fetch answers r. It always returns a response: when neither the origin
// nor the cache can serve the request, the result is the offline page for
// navigations and a minimal 503 otherwise.
func (c *Cache) Fetch(ctx context.Context, r *http.Request) *Response {
	strategy := c.Classify(r)
	c.logger.Debug().Str("url", r.URL.RequestURI()).Stringer("strategy", strategy).Msg("offline cache fetch")

	switch strategy {
	case StrategyPassthrough:
		return c.passthrough(ctx, r)
	case StrategyCacheFirst:
		return c.cacheFirst(ctx, r)
	default:
		return c.networkFirst(ctx, r)
	}
}

func (c *Cache) passthrough(ctx context.Context, r *http.Request) *Response {
	resp, err := c.network(ctx, r)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", r.URL.RequestURI()).Msg("passthrough request failed")
		return unavailable()
	}
	return resp
}

func (c *Cache) cacheFirst(ctx context.Context, r *http.Request) *Response {
	key := cacheKey(r)
	if cached, ok := c.match(ctx, key); ok {
		return cached
	}

	resp, err := c.network(ctx, r)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", key).Msg("asset not cached and origin unreachable")
		return c.fallback(ctx, r)
	}
	if isSuccess(resp.Status) && !isNavigation(r) {
		c.store(ctx, c.cfg.StaticCache, key, resp)
	}
	return resp
}

func (c *Cache) networkFirst(ctx context.Context, r *http.Request) *Response {
	key := cacheKey(r)

	resp, err := c.network(ctx, r)
	if err == nil {
		if isRedirect(resp.Status) {
			return c.redirect(resp)
		}
		if isSuccess(resp.Status) && !hasPrefix(r.URL.Path, c.cfg.DoNotCache) {
			c.store(ctx, c.cfg.PagesCache, key, resp)
		}
		return resp
	}

	c.logger.Warn().Err(err).Str("url", key).Msg("origin unreachable, trying cache")
	if cached, ok := c.match(ctx, key); ok {
		return cached
	}
	return c.fallback(ctx, r)
}

// fallback is the answer when neither the origin nor the cache has r.
func (c *Cache) fallback(ctx context.Context, r *http.Request) *Response {
	if isNavigation(r) && c.cfg.OfflinePage != "" {
		if page, ok := c.match(ctx, c.cfg.OfflinePage); ok {
			page.Source = SourceOfflinePage
			return page
		}
	}
	return unavailable()
}

// redirect turns a 3xx from the origin into a bare redirect. Locations on
// the origin are made relative so the client stays behind the cache.
func (c *Cache) redirect(resp *Response) *Response {
	location := resp.Header.Get("Location")
	if rest, ok := strings.CutPrefix(location, c.origin); ok {
		switch {
		case rest == "":
			location = "/"
		case rest[0] == '/':
			location = rest
		case rest[0] == '?':
			location = "/" + rest
		}
	}

	header := make(http.Header)
	header.Set("Location", location)
	return &Response{Status: resp.Status, Header: header, Source: SourceNetwork}
}

// network forwards r to the origin.
func (c *Cache) network(ctx context.Context, r *http.Request) (*Response, error) {
	req := c.client.R().SetContext(ctx)
	for name, values := range cleanHeader(r.Header) {
		if strings.EqualFold(name, "Accept-Encoding") {
			continue
		}
		req.SetHeaderMultiValues(map[string][]string{name: values})
	}

	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		req.SetBody(body)
	}

	resp, err := req.Execute(r.Method, r.URL.RequestURI())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return &Response{
		Status: resp.StatusCode(),
		Header: resp.Header().Clone(),
		Body:   resp.Body(),
		Source: SourceNetwork,
	}, nil
}

func (c *Cache) isStatic(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext != "" && slices.Contains(c.cfg.StaticExtensions, ext)
}

func unavailable() *Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Cache-Control", "no-store")
	return &Response{
		Status: http.StatusServiceUnavailable,
		Header: header,
		Body:   []byte(app.MsgOfflinePage),
		Source: SourceUnavailable,
	}
}

func cacheKey(r *http.Request) string {
	return r.URL.RequestURI()
}

// isNavigation reports whether r loads a page rather than a subresource.
func isNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func isRedirect(status int) bool {
	return status >= http.StatusMultipleChoices && status < http.StatusBadRequest && status != http.StatusNotModified
}

func hasPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Length",
	"Host",
}

// cleanHeader copies h without hop-by-hop and length headers.
func cleanHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, values := range h {
		if slices.ContainsFunc(hopHeaders, func(hop string) bool { return strings.EqualFold(hop, name) }) {
			continue
		}
		out[name] = slices.Clone(values)
	}
	return out
}
