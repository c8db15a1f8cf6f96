package handler

import (
	nethttp "net/http"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/handler/http"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the local transport handlers. offline may be nil when
// the offline cache is disabled.
func NewHandlers(services *service.ClientServices, tokens http.TokenSetter, offline nethttp.Handler, cfg config.ClientOffline, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Address == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{HTTP: http.NewHandler(services, tokens, offline, logger)}, nil
}
