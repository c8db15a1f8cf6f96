// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the remote farrier server.
//
// The primary abstraction is [ServerAdapter], which decouples the sync
// services from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from transport failures, HTTP
// status codes and auth-error bodies so that callers can use [errors.Is] for
// transport-agnostic error handling (e.g. [ErrAuth] for 401 or an auth-error
// status, [ErrRequestTimeout] for an expired deadline).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the farrier
// server. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to every push and pull.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Push sends the pending records of one queue store as a single batch and
	// returns the per-record outcomes in server order. An auth-error anywhere
	// in the response is returned as [ErrAuth].
	Push(ctx context.Context, store schema.StoreName, records []models.Record) ([]models.Outcome, error)

	// Pull requests the authoritative snapshot of one table. An auth-error
	// status is returned as [ErrAuth]; every other status is left to the
	// caller.
	Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error)

	// SendError delivers one telemetry entry. It is best-effort: callers queue
	// the entry locally when an error is returned.
	SendError(ctx context.Context, entry models.TelemetryEntry) error
}
