package models

import (
	"net/http"
	"time"
)

// TelemetryEntry is one error report sent to the server. Entries that cannot
// be delivered are kept in the local error queue, where ErrorID is assigned.
type TelemetryEntry struct {
	ErrorID int64       `json:"errorID,omitempty"`
	Page    string      `json:"page"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail describes the reported error.
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// CachedResponse is an HTTP response kept by the offline request cache.
type CachedResponse struct {
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}
