package adapter

import (
	"errors"

	"github.com/MKhiriev/go-farrier-sync/models"
)

// Transport errors. Callers branch on them with errors.Is; every error
// returned by [ServerAdapter] wraps exactly one of these.
var (
	// ErrNetwork means the request never produced an HTTP response.
	ErrNetwork = errors.New("network error")
	// ErrRequestTimeout means the request deadline expired before a response.
	ErrRequestTimeout = errors.New("request timeout")
	// ErrAuth means the server rejected the bearer token (HTTP 401/403 or an
	// auth-error status in the body). It is never retried automatically.
	ErrAuth = errors.New("authentication required")
	// ErrUnknownStatus means the body carried a status outside the closed set.
	ErrUnknownStatus = models.ErrUnknownStatus
	// ErrUnexpectedResponse means a non-2xx status or an undecodable body.
	ErrUnexpectedResponse = errors.New("unexpected server response")
)
