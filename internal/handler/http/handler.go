package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/internal/validators"
)

// TokenSetter receives the bearer token forwarded by the local web app.
type TokenSetter interface {
	SetToken(token string)
}

type Handler struct {
	services  *service.ClientServices
	tokens    TokenSetter
	offline   http.Handler
	validator validators.Validator
	ids       *utils.UUIDGenerator
	now       func() time.Time

	logger *logger.Logger
}

// NewHandler builds the local HTTP handler. offline serves every request
// outside the sync API; when nil those requests get 404.
func NewHandler(services *service.ClientServices, tokens TokenSetter, offline http.Handler, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		tokens:    tokens,
		offline:   offline,
		validator: validators.NewMutationValidator(),
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		logger:    logger,
	}
}
