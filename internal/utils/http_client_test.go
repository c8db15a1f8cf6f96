package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Independent(t *testing.T) {
	a := NewHTTPClient(WithHeader("X-Test", "a"))
	b := NewHTTPClient()

	require.NotNil(t, a.Client)
	assert.NotSame(t, a.Client, b.Client)
	assert.Equal(t, "a", a.Header.Get("X-Test"))
	assert.Empty(t, b.Header.Get("X-Test"))
}

func TestNewHTTPClient_Options(t *testing.T) {
	var gotAgent, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(WithBaseURL(srv.URL), WithHeader("Accept", "application/json"), WithTimeout(time.Second))
	resp, err := c.R().Get("/api/transfer")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, userAgent, gotAgent)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, time.Second, c.GetClient().Timeout)
}

func TestWithTimeout_IgnoresNonPositive(t *testing.T) {
	c := NewHTTPClient(WithTimeout(0))
	assert.Zero(t, c.GetClient().Timeout)
}

func TestWithoutRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(WithBaseURL(srv.URL), WithoutRedirects())
	resp, err := c.R().Get("/old")

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Equal(t, "/new", resp.Header().Get("Location"))
}
