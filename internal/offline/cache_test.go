package offline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/mock"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// origin is a fake application server that counts hits per path.
type origin struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func (o *origin) hit(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits[path]++
}

func (o *origin) hitsFor(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hits[path]
}

func newOrigin(t *testing.T) *origin {
	t.Helper()
	o := &origin{hits: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		o.hit(r.URL.Path)
		switch r.URL.Path {
		case "/missing.js":
			http.NotFound(w, r)
		case "/old-clients":
			http.Redirect(w, r, o.URL+"/clients", http.StatusFound)
		case "/login":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("login:" + string(body)))
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("page " + r.URL.Path))
		}
	})
	o.Server = httptest.NewServer(mux)
	t.Cleanup(o.Close)
	return o
}

func testConfig(originURL string) config.ClientOffline {
	return config.ClientOffline{
		Origin:           originURL,
		StaticCache:      "static-v2",
		PagesCache:       "pages-v2",
		Manifest:         []string{"/", "/app.js"},
		NoIntercept:      []string{"/login", "/logout"},
		DoNotCache:       []string{"/login", "/logout", "/api/"},
		OfflinePage:      "/offline.html",
		StaticExtensions: []string{".js", ".css"},
	}
}

func newTestRepo(t *testing.T) store.CacheRepository {
	t.Helper()
	db, err := store.Open(context.Background(), config.ClientDB{DSN: filepath.Join(t.TempDir(), "cache.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewCacheRepository(db.DB, logger.Nop())
}

func newTestCache(t *testing.T, o *origin, repo store.CacheRepository) *Cache {
	t.Helper()
	c, err := New(repo, testConfig(o.URL), logger.Nop())
	require.NoError(t, err)
	return c
}

func navigate(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Sec-Fetch-Mode", "navigate")
	r.Header.Set("Accept", "text/html")
	return r
}

func subresource(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set("Sec-Fetch-Mode", "no-cors")
	return r
}

func TestNew_EmptyOrigin(t *testing.T) {
	_, err := New(nil, config.ClientOffline{Origin: "  "}, logger.Nop())
	assert.ErrorIs(t, err, ErrEmptyOrigin)
}

func TestClassify(t *testing.T) {
	c, err := New(nil, testConfig("http://origin"), logger.Nop())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *http.Request
		want Strategy
	}{
		{name: "login passes through", req: navigate("/login"), want: StrategyPassthrough},
		{name: "post passes through", req: httptest.NewRequest(http.MethodPost, "/clients", nil), want: StrategyPassthrough},
		{name: "manifest entry", req: navigate("/"), want: StrategyCacheFirst},
		{name: "static extension", req: subresource("/css/site.CSS"), want: StrategyCacheFirst},
		{name: "page", req: navigate("/clients"), want: StrategyNetworkFirst},
		{name: "api", req: subresource("/api/clients"), want: StrategyNetworkFirst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.req))
		})
	}
}

func TestInstall_PrecachesManifestAndOfflinePage(t *testing.T) {
	o := newOrigin(t)
	repo := newTestRepo(t)
	c := newTestCache(t, o, repo)
	ctx := context.Background()

	require.NoError(t, c.Install(ctx))

	for _, asset := range []string{"/", "/app.js", "/offline.html"} {
		got, ok, err := repo.Match(ctx, "static-v2", asset)
		require.NoError(t, err)
		require.True(t, ok, asset)
		assert.Equal(t, "page "+asset, string(got.Body))
	}
}

func TestInstall_FailsAsAWhole(t *testing.T) {
	o := newOrigin(t)
	repo := newTestRepo(t)
	cfg := testConfig(o.URL)
	cfg.Manifest = []string{"/app.js", "/missing.js"}
	c, err := New(repo, cfg, logger.Nop())
	require.NoError(t, err)

	err = c.Install(context.Background())
	require.ErrorIs(t, err, ErrInstall)

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestActivate_DropsStaleGenerations(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCacheRepository(ctrl)
	c, err := New(repo, testConfig("http://origin"), logger.Nop())
	require.NoError(t, err)

	repo.EXPECT().Names(gomock.Any()).Return([]string{"static-v1", "static-v2", "pages-v1", "pages-v2"}, nil)
	repo.EXPECT().DeleteCache(gomock.Any(), "static-v1").Return(nil)
	repo.EXPECT().DeleteCache(gomock.Any(), "pages-v1").Return(nil)

	deleted, err := c.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"static-v1", "pages-v1"}, deleted)
}

func TestActivate_NamesError(t *testing.T) {
	repo := mock.NewMockCacheRepository(gomock.NewController(t))
	c, err := New(repo, testConfig("http://origin"), logger.Nop())
	require.NoError(t, err)

	repo.EXPECT().Names(gomock.Any()).Return(nil, store.ErrExecutingQuery)

	_, err = c.Activate(context.Background())
	assert.ErrorIs(t, err, store.ErrExecutingQuery)
}

// Every cache hit/miss and network success/failure combination ends in a
// defined response.
func TestFetch_FallbackMatrix(t *testing.T) {
	tests := []struct {
		name       string
		req        func() *http.Request
		cached     bool
		offline    bool
		precache   bool
		wantStatus int
		wantSource Source
		wantBody   string
	}{
		{name: "asset hit online", req: func() *http.Request { return subresource("/app.js") }, cached: true, wantStatus: 200, wantSource: SourceCache, wantBody: "cached /app.js"},
		{name: "asset hit offline", req: func() *http.Request { return subresource("/app.js") }, cached: true, offline: true, wantStatus: 200, wantSource: SourceCache, wantBody: "cached /app.js"},
		{name: "asset miss online", req: func() *http.Request { return subresource("/app.js") }, wantStatus: 200, wantSource: SourceNetwork, wantBody: "page /app.js"},
		{name: "asset miss offline", req: func() *http.Request { return subresource("/app.js") }, offline: true, wantStatus: 503, wantSource: SourceUnavailable, wantBody: app.MsgOfflinePage},
		{name: "page hit online", req: func() *http.Request { return navigate("/clients") }, cached: true, wantStatus: 200, wantSource: SourceNetwork, wantBody: "page /clients"},
		{name: "page hit offline", req: func() *http.Request { return navigate("/clients") }, cached: true, offline: true, wantStatus: 200, wantSource: SourceCache, wantBody: "cached /clients"},
		{name: "page miss online", req: func() *http.Request { return navigate("/clients") }, wantStatus: 200, wantSource: SourceNetwork, wantBody: "page /clients"},
		{name: "page miss offline with offline page", req: func() *http.Request { return navigate("/clients") }, offline: true, precache: true, wantStatus: 200, wantSource: SourceOfflinePage, wantBody: "cached /offline.html"},
		{name: "page miss offline without offline page", req: func() *http.Request { return navigate("/clients") }, offline: true, wantStatus: 503, wantSource: SourceUnavailable, wantBody: app.MsgOfflinePage},
		{name: "api miss offline", req: func() *http.Request { return subresource("/api/clients") }, offline: true, precache: true, wantStatus: 503, wantSource: SourceUnavailable, wantBody: app.MsgOfflinePage},
		{name: "login offline", req: func() *http.Request { return navigate("/login") }, offline: true, precache: true, wantStatus: 503, wantSource: SourceUnavailable, wantBody: app.MsgOfflinePage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrigin(t)
			repo := newTestRepo(t)
			c := newTestCache(t, o, repo)
			ctx := context.Background()
			req := tt.req()

			if tt.cached {
				require.NoError(t, repo.Put(ctx, "static-v2", req.URL.Path, models.CachedResponse{Status: 200, Body: []byte("cached " + req.URL.Path)}))
			}
			if tt.precache {
				require.NoError(t, repo.Put(ctx, "static-v2", "/offline.html", models.CachedResponse{Status: 200, Body: []byte("cached /offline.html")}))
			}
			if tt.offline {
				o.Close()
			}

			resp := c.Fetch(ctx, req)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantSource, resp.Source)
			assert.Equal(t, tt.wantBody, string(resp.Body))
		})
	}
}

func TestFetch_CachesWhatItShould(t *testing.T) {
	o := newOrigin(t)
	repo := newTestRepo(t)
	c := newTestCache(t, o, repo)
	ctx := context.Background()

	c.Fetch(ctx, subresource("/app.js"))
	c.Fetch(ctx, navigate("/clients?day=mon"))
	c.Fetch(ctx, subresource("/api/clients"))
	c.Fetch(ctx, navigate("/report.css"))

	_, ok, err := repo.Match(ctx, "static-v2", "/app.js")
	require.NoError(t, err)
	assert.True(t, ok, "asset cached in static generation")

	_, ok, err = repo.Match(ctx, "pages-v2", "/clients?day=mon")
	require.NoError(t, err)
	assert.True(t, ok, "page cached in pages generation")

	_, ok, err = repo.MatchAny(ctx, "/api/clients")
	require.NoError(t, err)
	assert.False(t, ok, "do-not-cache path stored")

	_, ok, err = repo.MatchAny(ctx, "/report.css")
	require.NoError(t, err)
	assert.False(t, ok, "cache-first navigation stored")

	c.Fetch(ctx, subresource("/app.js"))
	assert.Equal(t, 1, o.hitsFor("/app.js"))
}

func TestFetch_RedirectIsNotFollowed(t *testing.T) {
	o := newOrigin(t)
	repo := newTestRepo(t)
	c := newTestCache(t, o, repo)

	resp := c.Fetch(context.Background(), navigate("/old-clients"))

	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/clients", resp.Header.Get("Location"))
	assert.Empty(t, resp.Body)
	assert.Zero(t, o.hitsFor("/clients"))

	_, ok, err := repo.MatchAny(context.Background(), "/old-clients")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetch_PassthroughForwardsBody(t *testing.T) {
	o := newOrigin(t)
	repo := newTestRepo(t)
	c := newTestCache(t, o, repo)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("user=jane"))
	resp := c.Fetch(context.Background(), req)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "login:user=jane", string(resp.Body))

	names, err := repo.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFetch_CacheReadErrorIsAMiss(t *testing.T) {
	o := newOrigin(t)
	repo := mock.NewMockCacheRepository(gomock.NewController(t))
	c := newTestCache(t, o, repo)

	repo.EXPECT().MatchAny(gomock.Any(), "/app.js").Return(models.CachedResponse{}, false, store.ErrDatabaseUnavailable)
	repo.EXPECT().Put(gomock.Any(), "static-v2", "/app.js", gomock.Any()).Return(store.ErrDatabaseUnavailable)

	resp := c.Fetch(context.Background(), subresource("/app.js"))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, SourceNetwork, resp.Source)
}

func TestServeHTTP(t *testing.T) {
	o := newOrigin(t)
	repo := newTestRepo(t)
	c := newTestCache(t, o, repo)

	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, navigate("/clients"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page /clients", rec.Body.String())
	assert.Equal(t, string(SourceNetwork), rec.Header().Get(HeaderSource))
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))

	o.Close()
	rec = httptest.NewRecorder()
	c.ServeHTTP(rec, navigate("/clients"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(SourceCache), rec.Header().Get(HeaderSource))
	assert.Equal(t, "page /clients", rec.Body.String())
}
