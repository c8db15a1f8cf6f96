package models

import "github.com/MKhiriev/go-farrier-sync/internal/schema"

// SyncStatusResponse describes the local sync state: which queues still hold
// unsent mutations and how every store looked after the last push or pull.
type SyncStatusResponse struct {
	// AppVersion is the client build version.
	AppVersion string `json:"appVersion"`

	// SchemaVersion is the version of the local database schema.
	SchemaVersion int `json:"schemaVersion"`

	// Pending lists the non-empty queue stores in backup order.
	Pending []schema.StoreName `json:"pending"`

	// Indicators holds the last known indicator of every touched store.
	Indicators map[schema.StoreName]IndicatorState `json:"indicators"`
}

// TransferTablesRequest selects the tables to pull. An empty list means
// every table.
type TransferTablesRequest struct {
	Tables []schema.Table `json:"tables"`
}

// FlushResponse reports how many queued telemetry entries were delivered.
type FlushResponse struct {
	Sent int `json:"sent"`
}
