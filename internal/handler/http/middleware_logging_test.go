package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/offline"
)

// makeRequest creates a test request carrying a logger that writes to buf,
// the same way withTraceID does.
func makeRequest(method, path string, buf *bytes.Buffer) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	l := zerolog.New(buf).With().Timestamp().Logger()
	return req.WithContext(l.WithContext(req.Context()))
}

func TestWithLogging_TableTest(t *testing.T) {
	tests := []struct {
		name             string
		method           string
		path             string
		handlerStatus    int
		handlerResponse  string
		source           string
		checkLogContains []string
		checkLogOmits    []string
	}{
		{
			name:            "GET 200",
			method:          http.MethodGet,
			path:            "/_sync/status",
			handlerStatus:   http.StatusOK,
			handlerResponse: "OK",
			checkLogContains: []string{
				`"method":"GET"`,
				`"uri":"/_sync/status"`,
				`"status":200`,
				`"duration":`,
				`"size":2`,
			},
			checkLogOmits: []string{`"source"`},
		},
		{
			name:            "POST 401",
			method:          http.MethodPost,
			path:            "/_sync/push",
			handlerStatus:   http.StatusUnauthorized,
			handlerResponse: "Unauthorized",
			checkLogContains: []string{
				`"method":"POST"`,
				`"status":401`,
			},
		},
		{
			name:          "no body",
			method:        http.MethodPost,
			path:          "/_sync/pull",
			handlerStatus: http.StatusNoContent,
			checkLogContains: []string{
				`"status":204`,
				`"size":0`,
			},
		},
		{
			name:            "query parameters preserved in uri",
			method:          http.MethodGet,
			path:            "/clients?sort=name",
			handlerStatus:   http.StatusOK,
			handlerResponse: "page",
			checkLogContains: []string{
				`"uri":"/clients?sort=name"`,
			},
		},
		{
			name:            "offline cache source is logged",
			method:          http.MethodGet,
			path:            "/horses",
			handlerStatus:   http.StatusOK,
			handlerResponse: "cached page",
			source:          string(offline.SourceCache),
			checkLogContains: []string{
				`"source":"cache"`,
				`"status":200`,
			},
		},
		{
			name:            "offline page source is logged",
			method:          http.MethodGet,
			path:            "/trimmings",
			handlerStatus:   http.StatusOK,
			handlerResponse: "offline",
			source:          string(offline.SourceOfflinePage),
			checkLogContains: []string{
				`"source":"offline-page"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.source != "" {
					w.Header().Set(offline.HeaderSource, tt.source)
				}
				w.WriteHeader(tt.handlerStatus)
				if tt.handlerResponse != "" {
					_, _ = w.Write([]byte(tt.handlerResponse))
				}
			})

			req := makeRequest(tt.method, tt.path, &logBuf)
			rr := httptest.NewRecorder()
			withLogging(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.handlerStatus, rr.Code)

			logOutput := logBuf.String()
			for _, expected := range tt.checkLogContains {
				assert.Contains(t, logOutput, expected)
			}
			for _, omitted := range tt.checkLogOmits {
				assert.NotContains(t, logOutput, omitted)
			}
		})
	}
}

func TestWithLogging_ResponseSize(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 512)))
		_, _ = w.Write([]byte(strings.Repeat("b", 512)))
	})

	req := makeRequest(http.MethodGet, "/app.js", &logBuf)
	rr := httptest.NewRecorder()
	withLogging(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, logBuf.String(), `"size":1024`)
	assert.Contains(t, logBuf.String(), `"status":200`)
}

func TestWithLogging_DurationObserved(t *testing.T) {
	delay := 50 * time.Millisecond
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	})

	req := makeRequest(http.MethodGet, "/slow", &logBuf)
	start := time.Now()
	withLogging(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.GreaterOrEqual(t, time.Since(start), delay)
	assert.Contains(t, logBuf.String(), `"duration":`)
}

func TestWithLogging_PanicNotSuppressed(t *testing.T) {
	var logBuf bytes.Buffer

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	req := makeRequest(http.MethodGet, "/panic", &logBuf)
	assert.Panics(t, func() {
		withLogging(next).ServeHTTP(httptest.NewRecorder(), req)
	}, "withLogging should not recover panics")
}

func TestWithLogging_NopLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	nop := logger.Nop()
	req := httptest.NewRequest(http.MethodGet, "/nop", nil)
	req = req.WithContext(nop.Logger.WithContext(req.Context()))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		withLogging(next).ServeHTTP(rr, req)
	})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
		wantSize   int
	}{
		{
			name:       "implicit 200 on write",
			write:      func(w http.ResponseWriter) { _, _ = w.Write([]byte("abc")) },
			wantStatus: http.StatusOK,
			wantSize:   3,
		},
		{
			name: "first status wins",
			write: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusBadGateway)
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "size accumulates",
			write: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("offline"))
				_, _ = w.Write([]byte("!"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantSize:   8,
		},
		{
			name:  "nothing written",
			write: func(http.ResponseWriter) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			rec := &statusRecorder{ResponseWriter: rr}

			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.status)
			assert.Equal(t, tt.wantSize, rec.size)
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, rr.Code)
			}
		})
	}
}
