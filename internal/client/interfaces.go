// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/service"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// Client defines the operations the command line drives.
type Client interface {
	Push(ctx context.Context) (models.BackupResult, error)
	Pull(ctx context.Context, tables []schema.Table) (models.TransferResult, error)
	Status(ctx context.Context) (models.SyncStatusResponse, error)
	FlushErrors(ctx context.Context) (int, error)
	Serve(ctx context.Context) error
	Close() error

	// Indicators is the live board the push and pull runs report to.
	Indicators() *service.IndicatorBoard
}

var _ Client = (*App)(nil)
