package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/mock"
	"github.com/MKhiriev/go-farrier-sync/internal/offline"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
)

var fixtureNow = time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)

type handlerFixture struct {
	queue     *mock.MockMutationQueue
	backup    *mock.MockBackupService
	transfer  *mock.MockTransferService
	telemetry *mock.MockTelemetryService
	appInfo   *mock.MockAppInfoService
	mirrors   *mock.MockMirrorReader
	adapter   *mock.MockServerAdapter
	board     *service.IndicatorBoard

	handler *Handler
	router  *chi.Mux
}

// offlineStub stands in for the offline cache behind the catch-all route.
var offlineStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(offline.HeaderSource, string(offline.SourceCache))
	_, _ = w.Write([]byte("offline " + r.URL.Path))
})

func newHandlerFixture(t *testing.T, offlineHandler http.Handler) *handlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &handlerFixture{
		queue:     mock.NewMockMutationQueue(ctrl),
		backup:    mock.NewMockBackupService(ctrl),
		transfer:  mock.NewMockTransferService(ctrl),
		telemetry: mock.NewMockTelemetryService(ctrl),
		appInfo:   mock.NewMockAppInfoService(ctrl),
		mirrors:   mock.NewMockMirrorReader(ctrl),
		adapter:   mock.NewMockServerAdapter(ctrl),
		board:     service.NewIndicatorBoard(),
	}

	services := &service.ClientServices{
		MutationQueue:    f.queue,
		BackupService:    f.backup,
		TransferService:  f.transfer,
		TelemetryService: f.telemetry,
		AppInfoService:   f.appInfo,
		Mirrors:          f.mirrors,
		Indicators:       f.board,
	}

	f.handler = NewHandler(services, f.adapter, offlineHandler, logger.Nop())
	f.handler.now = func() time.Time { return fixtureNow }
	f.router = f.handler.Init()
	return f
}

func (f *handlerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestNewHandler(t *testing.T) {
	services := &service.ClientServices{}
	h := NewHandler(services, nil, offlineStub, logger.Nop())

	require.NotNil(t, h)
	assert.Same(t, services, h.services)
	assert.NotNil(t, h.offline)
	assert.NotNil(t, h.validator)
	assert.NotNil(t, h.ids)
	assert.NotNil(t, h.now)
}

func TestInit_CatchAllGoesToOfflineCache(t *testing.T) {
	f := newHandlerFixture(t, offlineStub)

	for _, path := range []string{"/", "/clients", "/app.js", "/horses/12?tab=trims"} {
		t.Run(path, func(t *testing.T) {
			rr := f.do(httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, string(offline.SourceCache), rr.Header().Get(offline.HeaderSource))
			assert.NotEmpty(t, rr.Header().Get(traceIDHeader))
		})
	}

	rr := f.do(httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, "offline /login", rr.Body.String(), "every method reaches the cache")
}

func TestInit_WithoutOfflineCache(t *testing.T) {
	f := newHandlerFixture(t, nil)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/clients", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInit_WrongMethodOnSyncRouteIs404(t *testing.T) {
	f := newHandlerFixture(t, offlineStub)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/_sync/push"},
		{http.MethodGet, "/_sync/pull"},
		{http.MethodDelete, "/_sync/status"},
		{http.MethodPost, "/_sync/version"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := f.do(httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestInit_SyncRoutesAreCompressed(t *testing.T) {
	f := newHandlerFixture(t, offlineStub)
	f.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("1.4.0")

	req := httptest.NewRequest(http.MethodGet, "/_sync/version", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := f.do(req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", string(body))

	req = httptest.NewRequest(http.MethodGet, "/app.js", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr = f.do(req)
	assert.Empty(t, rr.Header().Get("Content-Encoding"), "offline cache responses are passed as they are")
}

func TestInit_RecoversPanics(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	f := newHandlerFixture(t, panicking)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/clients", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
