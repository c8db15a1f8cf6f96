package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
)

type server struct {
	httpServer *httpServer
	address    string
	logger     *logger.Logger
}

func NewServer(handler http.Handler, cfg config.ClientOffline, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.Address == "" || handler == nil {
		return nil, errNothingToServe
	}

	return &server{
		httpServer: &httpServer{
			server: &http.Server{
				Addr:              cfg.Address,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			},
			logger: logger,
		},
		address: cfg.Address,
		logger:  logger,
	}, nil
}

func (s *server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.address, err)
	}

	s.logger.Info().Str("address", ln.Addr().String()).Msg("Launching HTTP server")
	if err = s.httpServer.serve(ctx, ln); err != nil {
		return err
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}
