// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

// SettingsSection names one part of the user settings singleton. Each section
// is pushed through its own singleton queue.
type SettingsSection string

const (
	DateTime          SettingsSection = "date_time"
	FarrierPrices     SettingsSection = "farrier_prices"
	MileageCharges    SettingsSection = "mileage_charges"
	SchedulingOptions SettingsSection = "scheduling_options"
	ColorOptions      SettingsSection = "color_options"
)

var settingsQueues = map[SettingsSection]StoreName{
	DateTime:          BackupDateTime,
	FarrierPrices:     BackupFarrierPrices,
	MileageCharges:    BackupMileageCharges,
	SchedulingOptions: BackupSchedulingOptions,
	ColorOptions:      BackupColorOptions,
}

// Sections returns every settings section in push order.
func Sections() []SettingsSection {
	return []SettingsSection{DateTime, FarrierPrices, MileageCharges, SchedulingOptions, ColorOptions}
}

// Queue returns the singleton queue store of the section.
func (s SettingsSection) Queue() StoreName {
	return settingsQueues[s]
}

// Valid reports whether s is a declared section.
func (s SettingsSection) Valid() bool {
	_, ok := settingsQueues[s]
	return ok
}

// Table names a server-side table that can be pulled into a local mirror.
type Table string

const (
	TableClients       Table = "clients"
	TableHorses        Table = "horses"
	TableTrimmings     Table = "trimmings"
	TablePersonalNotes Table = "personal_notes"
	TableUserSettings  Table = "user_settings"
)

var tableMirrors = map[Table]StoreName{
	TableClients:       ClientList,
	TableHorses:        HorseList,
	TableTrimmings:     Trimmings,
	TablePersonalNotes: PersonalNotes,
	TableUserSettings:  UserSettings,
}

// Tables returns every pullable table.
func Tables() []Table {
	return []Table{TableClients, TableHorses, TableTrimmings, TablePersonalNotes, TableUserSettings}
}

// Mirror returns the local store replaced when the table is pulled.
func (t Table) Mirror() (StoreName, bool) {
	m, ok := tableMirrors[t]
	return m, ok
}
