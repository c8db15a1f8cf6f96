// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package schema

import "slices"

// EntityName identifies an offline-creatable entity class. The name is also
// the suffix of the operation discriminator written into queue entries,
// e.g. "add_personalNotes".
type EntityName string

const (
	Client       EntityName = "client"
	Horse        EntityName = "horse"
	Trimming     EntityName = "trimming"
	Mileage      EntityName = "mileage"
	Expenses     EntityName = "expenses"
	PersonalNote EntityName = "personalNotes"
)

// Operation is the kind of pending mutation held by a queue store.
type Operation string

const (
	OpAdd    Operation = "add"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// IDSpec binds a record field to the marker store minting its ids.
type IDSpec struct {
	Field  string
	Marker StoreName
}

// Entity groups the stores owned by one entity class.
//
// Mirror is empty for queue-only entities (mileage, expenses); their ids come
// from the auto-increment add queue instead of a marker.
type Entity struct {
	Name         EntityName
	Mirror       StoreName
	Key          string
	IDs          []IDSpec
	AddQueue     StoreName
	EditQueue    StoreName
	DeleteQueue  StoreName
	DeleteFields []string
	DependsOn    []EntityName
}

// Queue returns the queue store holding operations of kind op.
func (e Entity) Queue(op Operation) StoreName {
	switch op {
	case OpAdd:
		return e.AddQueue
	case OpEdit:
		return e.EditQueue
	default:
		return e.DeleteQueue
	}
}

// Discriminator returns the flag field set on queue entries of kind op.
func (e Entity) Discriminator(op Operation) string {
	return string(op) + "_" + string(e.Name)
}

// Markers returns the marker stores used by the entity.
func (e Entity) Markers() []StoreName {
	out := make([]StoreName, 0, len(e.IDs))
	for _, id := range e.IDs {
		out = append(out, id.Marker)
	}
	return out
}

// QueueOnly reports whether the entity has no local mirror.
func (e Entity) QueueOnly() bool {
	return e.Mirror == ""
}

// entities is ordered so that every entity follows the ones it depends on.
var entities = []Entity{
	{
		Name:   Client,
		Mirror: ClientList,
		Key:    "primaryKey",
		IDs: []IDSpec{
			{Field: "primaryKey", Marker: MaxClientPrimaryKey},
			{Field: "clientID", Marker: MaxClientID},
		},
		AddQueue:     BackupAddClient,
		EditQueue:    BackupEditClient,
		DeleteQueue:  BackupDeleteClient,
		DeleteFields: []string{"primaryKey", "clientID"},
	},
	{
		Name:         Horse,
		Mirror:       HorseList,
		Key:          "horseID",
		IDs:          []IDSpec{{Field: "horseID", Marker: MaxHorseID}},
		AddQueue:     BackupAddHorse,
		EditQueue:    BackupEditHorse,
		DeleteQueue:  BackupDeleteHorse,
		DeleteFields: []string{"horseID", "clientID"},
		DependsOn:    []EntityName{Client},
	},
	{
		Name:         Trimming,
		Mirror:       Trimmings,
		Key:          "trimID",
		IDs:          []IDSpec{{Field: "trimID", Marker: MaxTrimID}},
		AddQueue:     BackupAddTrimming,
		EditQueue:    BackupEditTrimming,
		DeleteQueue:  BackupDeleteTrimming,
		DeleteFields: []string{"trimID", "clientID"},
		DependsOn:    []EntityName{Client, Horse},
	},
	{
		Name:         Mileage,
		Key:          "mileageID",
		AddQueue:     BackupAddMileage,
		EditQueue:    BackupEditMileage,
		DeleteQueue:  BackupDeleteMileage,
		DeleteFields: []string{"mileageID"},
	},
	{
		Name:         Expenses,
		Key:          "expenseID",
		AddQueue:     BackupAddExpenses,
		EditQueue:    BackupEditExpenses,
		DeleteQueue:  BackupDeleteExpenses,
		DeleteFields: []string{"expenseID"},
	},
	{
		Name:         PersonalNote,
		Mirror:       PersonalNotes,
		Key:          "notesID",
		IDs:          []IDSpec{{Field: "notesID", Marker: MaxPersonalNotesID}},
		AddQueue:     BackupAddPersonalNotes,
		EditQueue:    BackupEditPersonalNotes,
		DeleteQueue:  BackupDeletePersonalNotes,
		DeleteFields: []string{"notesID"},
	},
}

// Entities returns every entity class in dependency order.
func Entities() []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

// LookupEntity returns the entity class with the given name.
func LookupEntity(name EntityName) (Entity, bool) {
	for _, e := range entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// EntityOf returns the entity owning the queue store.
func EntityOf(store StoreName) (Entity, bool) {
	for _, e := range entities {
		if e.AddQueue == store || e.EditQueue == store || e.DeleteQueue == store {
			return e, true
		}
	}
	return Entity{}, false
}

// BackupOrder returns every queue store in the order a push walks them:
// adds and edits follow entity dependencies, deletes run dependents first,
// and settings queues come last.
func BackupOrder() []StoreName {
	order := make([]StoreName, 0, len(entities)*3+len(settingsQueues))
	for _, e := range entities {
		order = append(order, e.AddQueue, e.EditQueue)
	}
	for i := len(entities) - 1; i >= 0; i-- {
		order = append(order, entities[i].DeleteQueue)
	}
	for _, s := range Sections() {
		order = append(order, s.Queue())
	}
	return order
}

// IsQueue reports whether name is a mutation or settings queue store.
func IsQueue(name StoreName) bool {
	return slices.Contains(BackupOrder(), name)
}

// SortBackup orders stores the way a push walks them. Stores that are not
// queues are dropped, duplicates are collapsed.
func SortBackup(stores []StoreName) []StoreName {
	out := make([]StoreName, 0, len(stores))
	for _, s := range BackupOrder() {
		if slices.Contains(stores, s) {
			out = append(out, s)
		}
	}
	return out
}
