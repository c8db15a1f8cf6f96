package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
)

func decodeEntry(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(b, &entry))
	return entry
}

func TestNewLogger_Entry(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("sync", &buf)

	l.Info().Str("store", "backup_add_client").Msg("pushed")

	entry := decodeEntry(t, buf.Bytes())
	assert.Equal(t, "sync", entry["role"])
	assert.Equal(t, "pushed", entry["message"])
	assert.Equal(t, "backup_add_client", entry["store"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry["func"], "TestNewLogger_Entry", "caller is logged as the function name")

	assert.Equal(t, "func", zerolog.CallerFieldName)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Info().Msg("dropped")

	assert.Empty(t, buf.String())
}

func TestGetChildLogger(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger("serve", &buf)

	child := parent.GetChildLogger()
	child.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", "t-1")
	})
	child.Info().Msg("child")
	parent.Info().Msg("parent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	childEntry := decodeEntry(t, lines[0])
	assert.Equal(t, "serve", childEntry["role"])
	assert.Equal(t, "t-1", childEntry["trace_id"])

	parentEntry := decodeEntry(t, lines[1])
	assert.NotContains(t, parentEntry, "trace_id", "child fields must not leak into the parent")
}

func TestFromContextAndRequest(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("trace_id", "abc").Logger()
	ctx := zl.WithContext(context.Background())

	FromContext(ctx).Info().Msg("ctx")
	req := httptest.NewRequest(http.MethodGet, "/_sync/status", nil).WithContext(ctx)
	FromRequest(req).Info().Msg("req")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "abc", decodeEntry(t, line)["trace_id"])
	}
}

func TestFromContext_WithoutLogger(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestNewClientLogger_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	l := NewClientLogger("client", config.ClientLog{Path: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})

	l.Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entry := decodeEntry(t, data)
	assert.Equal(t, "client", entry["role"])
	assert.Equal(t, "to file", entry["message"])
}

func TestNewClientLogger_StdoutWhenNoPath(t *testing.T) {
	assert.NotNil(t, NewClientLogger("client", config.ClientLog{}))
}
