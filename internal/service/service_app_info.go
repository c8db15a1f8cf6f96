package service

import (
	"context"

	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
)

type appInfoService struct {
	appVersion string
	db         *store.Database

	logger *logger.Logger
}

func NewAppInfoService(cfg config.ClientApp, db *store.Database, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		appVersion: cfg.Version,
		db:         db,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}

// GetSchemaVersion returns the schema version recorded in the local database.
func (s *appInfoService) GetSchemaVersion(ctx context.Context) (int, error) {
	v, err := s.db.UserVersion(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "*appInfoService.GetSchemaVersion").Msg("error reading schema version")
		return 0, err
	}
	return v, nil
}
