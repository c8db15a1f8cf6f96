package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/internal/validators"
)

var errorStatusMap = map[error]int{
	service.ErrAuthRequired:   http.StatusUnauthorized,
	service.ErrValidation:     http.StatusBadRequest,
	service.ErrUnknownEntity:  http.StatusBadRequest,
	service.ErrUnknownSection: http.StatusBadRequest,
	service.ErrUnknownTable:   http.StatusBadRequest,
	service.ErrNotAMirror:     http.StatusNotFound,
	utils.ErrTokenExpired:     http.StatusUnauthorized,

	validators.ErrUnsupportedType: http.StatusBadRequest,
	validators.ErrUnknownTable:    http.StatusBadRequest,
	validators.ErrEmptyTables:     http.StatusBadRequest,
	validators.ErrUnknownEntity:   http.StatusBadRequest,
	validators.ErrUnknownSection:  http.StatusBadRequest,
	validators.ErrEmptyRecord:     http.StatusBadRequest,

	adapter.ErrAuth:               http.StatusUnauthorized,
	adapter.ErrNetwork:            http.StatusServiceUnavailable,
	adapter.ErrRequestTimeout:     http.StatusGatewayTimeout,
	adapter.ErrUnexpectedResponse: http.StatusBadGateway,
	adapter.ErrUnknownStatus:      http.StatusBadGateway,

	store.ErrDatabaseUnavailable: http.StatusServiceUnavailable,
	store.ErrTransactionAborted:  http.StatusInternalServerError,
	store.ErrNotFound:            http.StatusNotFound,
	store.ErrUnknownIndex:        http.StatusBadRequest,
	store.ErrInvalidKey:          http.StatusBadRequest,
	store.ErrConstraintViolation: http.StatusConflict,
}

// statusFromError maps err to a status code. Auth wins over everything
// else, so an aborted run caused by a rejected token is always 401.
func statusFromError(err error) int {
	if errors.Is(err, service.ErrAuthRequired) || errors.Is(err, adapter.ErrAuth) {
		return http.StatusUnauthorized
	}
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
