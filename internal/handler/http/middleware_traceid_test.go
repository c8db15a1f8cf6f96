package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
)

// newTestHandler creates a Handler with a nop logger and no services.
func newTestHandler() *Handler {
	return &Handler{logger: logger.Nop(), ids: utils.NewUUIDGenerator()}
}

func executeWithTraceID(h *Handler, incoming string) (*httptest.ResponseRecorder, *http.Request) {
	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if incoming != "" {
		req.Header.Set(traceIDHeader, incoming)
	}

	rr := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rr, req)
	return rr, captured
}

func TestWithTraceID_TableTest(t *testing.T) {
	tests := []struct {
		name            string
		requestTraceID  string
		wantSameTraceID bool
		wantUUIDv7      bool
	}{
		{
			name:            "UUID v7 from request header is reused",
			requestTraceID:  "01927a3e-8b5c-7d2f-9a41-3c6e2f8b1d07",
			wantSameTraceID: true,
		},
		{
			name:           "malformed trace ID is replaced",
			requestTraceID: "my-custom-trace-id",
			wantUUIDv7:     true,
		},
		{
			name:       "no trace ID in request, UUID generated",
			wantUUIDv7: true,
		},
		{
			name:            "UUID v4 as incoming trace ID",
			requestTraceID:  "550e8400-e29b-41d4-a716-446655440000",
			wantSameTraceID: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, captured := executeWithTraceID(newTestHandler(), tt.requestTraceID)
			require.NotNil(t, captured, "next must be called")
			assert.Equal(t, http.StatusOK, rr.Code)

			responseTraceID := rr.Header().Get(traceIDHeader)
			require.NotEmpty(t, responseTraceID)

			if tt.wantSameTraceID {
				assert.Equal(t, tt.requestTraceID, responseTraceID)
			}
			if tt.wantUUIDv7 {
				id, err := uuid.Parse(responseTraceID)
				require.NoError(t, err)
				assert.Equal(t, uuid.Version(7), id.Version())
			}

			ctxTraceID, ok := utils.GetTraceIDFromContext(captured.Context())
			assert.True(t, ok)
			assert.Equal(t, responseTraceID, ctxTraceID, "trace id must reach the server adapter through the context")
			assert.NotNil(t, logger.FromRequest(captured))
		})
	}
}

func TestWithTraceID_GeneratesUniqueIDs(t *testing.T) {
	h := newTestHandler()
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		rr, _ := executeWithTraceID(h, "")
		id := rr.Header().Get(traceIDHeader)
		_, duplicate := seen[id]
		require.False(t, duplicate, "duplicate trace ID generated: %s", id)
		seen[id] = struct{}{}
	}
}

func TestWithTraceID_ConcurrentRequests(t *testing.T) {
	middleware := newTestHandler().withTraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	const n = 50
	done := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			rr := httptest.NewRecorder()
			middleware.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
			done <- rr.Header().Get(traceIDHeader)
		}()
	}

	seen := make(map[string]struct{})
	for i := 0; i < n; i++ {
		seen[<-done] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestWithTraceID_OriginalRequestNotMutated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	originalCtx := req.Context()

	newTestHandler().withTraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, originalCtx, req.Context())
}
