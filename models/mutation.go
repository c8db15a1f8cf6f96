package models

import "github.com/MKhiriev/go-farrier-sync/internal/schema"

// Mutation is one local change to an offline-creatable entity, as handed to
// the mutation queue.
type Mutation struct {
	Entity schema.EntityName `json:"entity"`
	Op     schema.Operation  `json:"op"`
	Record Record            `json:"record"`
}

// SettingsChange replaces one section of the user settings singleton.
// Record must carry the userID the settings belong to.
type SettingsChange struct {
	Section schema.SettingsSection `json:"section"`
	Record  Record                 `json:"record"`
}

// IndicatorEvent is published whenever the indicator of a store changes.
type IndicatorEvent struct {
	Store schema.StoreName `json:"store"`
	State IndicatorState   `json:"state"`
}
