// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"

	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
)

// userMessage turns a sync or storage failure into the text shown in the
// end-of-run report.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, adapter.ErrAuth), errors.Is(err, ErrAuthRequired):
		return app.MsgAuthRequired
	case errors.Is(err, adapter.ErrRequestTimeout):
		return app.MsgTimeout
	case errors.Is(err, adapter.ErrNetwork):
		return app.MsgOffline
	case errors.Is(err, adapter.ErrUnexpectedResponse), errors.Is(err, adapter.ErrUnknownStatus):
		return app.MsgUnexpectedResponse
	case errors.Is(err, store.ErrDatabaseUnavailable), errors.Is(err, store.ErrTransactionAborted):
		return app.MsgChangesNotSaved
	default:
		return err.Error()
	}
}

// errorName classifies err into the telemetry error taxonomy.
func errorName(err error) string {
	switch {
	case errors.Is(err, store.ErrDatabaseUnavailable):
		return "DatabaseUnavailable"
	case errors.Is(err, store.ErrConstraintViolation):
		return "ConstraintViolation"
	case errors.Is(err, store.ErrTransactionAborted):
		return "TransactionAborted"
	case errors.Is(err, adapter.ErrRequestTimeout):
		return "RequestTimeout"
	case errors.Is(err, adapter.ErrNetwork):
		return "NetworkError"
	case errors.Is(err, adapter.ErrAuth), errors.Is(err, ErrAuthRequired):
		return "AuthError"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// isTransportError reports whether err means the server was never reached or
// did not answer in time.
func isTransportError(err error) bool {
	return errors.Is(err, adapter.ErrNetwork) || errors.Is(err, adapter.ErrRequestTimeout)
}
