// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package schema declares the closed set of object stores that make up the
// local database. Every store is a compile-time constant of type [StoreName];
// the engine in internal/store materializes the [Registry] on open and
// rebuilds only the stores whose declaration changed.
package schema

import "slices"

// Version is the schema version written into the database on every open.
// Bump it together with any change to the registry below.
const Version = 4

// StoreName identifies one object store.
type StoreName string

// Index declares a secondary index over a single field of the stored records.
type Index struct {
	Name    string
	KeyPath string
	Unique  bool
}

// Descriptor is the declaration of one object store.
//
// KeyPath names the record field holding the primary key. An empty KeyPath
// means keys are out-of-line and must be supplied by the caller or generated
// by AutoIncrement.
type Descriptor struct {
	Name          StoreName
	KeyPath       string
	AutoIncrement bool
	Indexes       []Index
}

// Table returns the SQL table backing the store.
func (d Descriptor) Table() string {
	return "store_" + string(d.Name)
}

// Equal reports whether two descriptors have the same configuration.
// Index order is not significant.
func (d Descriptor) Equal(other Descriptor) bool {
	if d.Name != other.Name || d.KeyPath != other.KeyPath || d.AutoIncrement != other.AutoIncrement {
		return false
	}
	if len(d.Indexes) != len(other.Indexes) {
		return false
	}
	for _, idx := range d.Indexes {
		if !slices.Contains(other.Indexes, idx) {
			return false
		}
	}
	return true
}

// Index returns the index with the given name.
func (d Descriptor) Index(name string) (Index, bool) {
	for _, idx := range d.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// Mirror stores.
const (
	ClientList    StoreName = "client_list"
	HorseList     StoreName = "horse_list"
	Trimmings     StoreName = "trimmings"
	PersonalNotes StoreName = "personal_notes"
	UserSettings  StoreName = "user_settings"
)

// Mutation queue stores.
const (
	BackupAddClient    StoreName = "backup_add_client"
	BackupEditClient   StoreName = "backup_edit_client"
	BackupDeleteClient StoreName = "backup_delete_client"

	BackupAddHorse    StoreName = "backup_add_horse"
	BackupEditHorse   StoreName = "backup_edit_horse"
	BackupDeleteHorse StoreName = "backup_delete_horse"

	BackupAddTrimming    StoreName = "backup_add_trimming"
	BackupEditTrimming   StoreName = "backup_edit_trimming"
	BackupDeleteTrimming StoreName = "backup_delete_trimming"

	BackupAddMileage    StoreName = "backup_add_mileage"
	BackupEditMileage   StoreName = "backup_edit_mileage"
	BackupDeleteMileage StoreName = "backup_delete_mileage"

	BackupAddExpenses    StoreName = "backup_add_expenses"
	BackupEditExpenses   StoreName = "backup_edit_expenses"
	BackupDeleteExpenses StoreName = "backup_delete_expenses"

	BackupAddPersonalNotes    StoreName = "backup_add_personal_notes"
	BackupEditPersonalNotes   StoreName = "backup_edit_personal_notes"
	BackupDeletePersonalNotes StoreName = "backup_delete_personal_notes"
)

// Singleton settings queues. Each holds at most one record keyed by userID.
const (
	BackupDateTime          StoreName = "backup_date_time"
	BackupFarrierPrices     StoreName = "backup_farrier_prices"
	BackupMileageCharges    StoreName = "backup_mileage_charges"
	BackupSchedulingOptions StoreName = "backup_scheduling_options"
	BackupColorOptions      StoreName = "backup_color_options"
)

// Max-ID marker stores.
const (
	MaxClientID         StoreName = "max_client_id"
	MaxClientPrimaryKey StoreName = "max_client_primary_key"
	MaxHorseID          StoreName = "max_horse_id"
	MaxTrimID           StoreName = "max_trim_id"
	MaxPersonalNotesID  StoreName = "max_personal_notes_id"
)

// ErrorQueue holds telemetry entries that could not be delivered.
const ErrorQueue StoreName = "error_queue"

var registry = []Descriptor{
	{Name: ClientList, KeyPath: "primaryKey", Indexes: []Index{
		{Name: "clientID", KeyPath: "clientID"},
		{Name: "trim_date", KeyPath: "trim_date"},
	}},
	{Name: HorseList, KeyPath: "horseID", Indexes: []Index{
		{Name: "clientID", KeyPath: "clientID"},
	}},
	{Name: Trimmings, KeyPath: "clientID"},
	{Name: PersonalNotes, KeyPath: "notesID"},
	{Name: UserSettings, KeyPath: "userID"},

	{Name: BackupAddClient, KeyPath: "primaryKey"},
	{Name: BackupEditClient, KeyPath: "primaryKey"},
	{Name: BackupDeleteClient, KeyPath: "primaryKey"},

	{Name: BackupAddHorse, KeyPath: "horseID"},
	{Name: BackupEditHorse, KeyPath: "horseID"},
	{Name: BackupDeleteHorse, KeyPath: "horseID"},

	{Name: BackupAddTrimming, KeyPath: "trimID"},
	{Name: BackupEditTrimming, KeyPath: "trimID"},
	{Name: BackupDeleteTrimming, KeyPath: "trimID"},

	{Name: BackupAddMileage, KeyPath: "mileageID", AutoIncrement: true},
	{Name: BackupEditMileage, KeyPath: "mileageID"},
	{Name: BackupDeleteMileage, KeyPath: "mileageID"},

	{Name: BackupAddExpenses, KeyPath: "expenseID", AutoIncrement: true},
	{Name: BackupEditExpenses, KeyPath: "expenseID"},
	{Name: BackupDeleteExpenses, KeyPath: "expenseID"},

	{Name: BackupAddPersonalNotes, KeyPath: "notesID"},
	{Name: BackupEditPersonalNotes, KeyPath: "notesID"},
	{Name: BackupDeletePersonalNotes, KeyPath: "notesID"},

	{Name: BackupDateTime, KeyPath: "userID"},
	{Name: BackupFarrierPrices, KeyPath: "userID"},
	{Name: BackupMileageCharges, KeyPath: "userID"},
	{Name: BackupSchedulingOptions, KeyPath: "userID"},
	{Name: BackupColorOptions, KeyPath: "userID"},

	{Name: MaxClientID, KeyPath: "clientID"},
	{Name: MaxClientPrimaryKey, KeyPath: "primaryKey"},
	{Name: MaxHorseID, KeyPath: "horseID"},
	{Name: MaxTrimID, KeyPath: "trimID"},
	{Name: MaxPersonalNotesID, KeyPath: "notesID"},

	{Name: ErrorQueue, KeyPath: "errorID", AutoIncrement: true},
}

var byName = func() map[StoreName]Descriptor {
	m := make(map[StoreName]Descriptor, len(registry))
	for _, d := range registry {
		m[d.Name] = d
	}
	return m
}()

// Registry returns every declared store in declaration order.
// The returned slice is a copy and may be modified by the caller.
func Registry() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the descriptor of a declared store.
func Lookup(name StoreName) (Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}

// Markers returns the max-id marker stores.
func Markers() []StoreName {
	return []StoreName{MaxClientID, MaxClientPrimaryKey, MaxHorseID, MaxTrimID, MaxPersonalNotesID}
}

// IsMarker reports whether name is a max-id marker store.
func IsMarker(name StoreName) bool {
	return slices.Contains(Markers(), name)
}
