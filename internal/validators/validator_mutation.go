package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

const (
	FieldEntity    = "entity"
	FieldOperation = "operation"
	FieldRecord    = "record"
	FieldIDs       = "ids"
	FieldParent    = "parent"
	FieldKey       = "key"
	FieldSection   = "section"
	FieldUserID    = "userID"
	FieldTables    = "tables"
)

// parentRefs lists the fields a new record must carry to point at the
// records it depends on.
var parentRefs = map[schema.EntityName][]string{
	schema.Horse:    {"clientID"},
	schema.Trimming: {"clientID"},
}

type MutationValidator struct {
}

func NewMutationValidator() Validator {
	return &MutationValidator{}
}

func (v *MutationValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Mutation:
		return v.validateMutation(ctx, value, fields...)
	case *models.Mutation:
		return v.validateMutation(ctx, *value, fields...)

	case models.SettingsChange:
		return v.validateSettingsChange(ctx, value, fields...)
	case *models.SettingsChange:
		return v.validateSettingsChange(ctx, *value, fields...)

	case models.PullRequest:
		return v.validateTables(ctx, []schema.Table{value.Table})
	case []schema.Table:
		return v.validateTables(ctx, value)

	default:
		return ErrUnsupportedType
	}
}

func (v *MutationValidator) validateMutation(ctx context.Context, m models.Mutation, fields ...string) error {
	entity, known := schema.LookupEntity(m.Entity)
	if len(fields) == 0 {
		fields = []string{FieldEntity, FieldOperation, FieldRecord}
		switch m.Op {
		case schema.OpAdd:
			fields = append(fields, FieldIDs, FieldParent)
		case schema.OpEdit, schema.OpDelete:
			fields = append(fields, FieldKey)
		}
	}

	for _, f := range fields {
		switch f {
		case FieldEntity:
			if !known {
				return fmt.Errorf("%w: %q", ErrUnknownEntity, m.Entity)
			}
		case FieldOperation:
			switch m.Op {
			case schema.OpAdd, schema.OpEdit, schema.OpDelete:
			default:
				return fmt.Errorf("%w: %q", ErrUnknownOperation, m.Op)
			}
		case FieldRecord:
			if m.Record == nil {
				return ErrEmptyRecord
			}
		case FieldIDs:
			if !known {
				return fmt.Errorf("%w: %q", ErrUnknownEntity, m.Entity)
			}
			// ids are minted locally; a caller may only pass one it already owns
			for _, id := range entity.IDs {
				if val, ok := m.Record[id.Field]; ok && val != nil && !isPositiveID(val) {
					return fmt.Errorf("%w: %s=%v", ErrInvalidID, id.Field, val)
				}
			}
			if entity.QueueOnly() {
				if val, ok := m.Record[entity.Key]; ok && val != nil && !isPositiveID(val) {
					return fmt.Errorf("%w: %s=%v", ErrInvalidID, entity.Key, val)
				}
			}
		case FieldParent:
			for _, ref := range parentRefs[m.Entity] {
				if !isPositiveID(m.Record[ref]) {
					return fmt.Errorf("%w: %s", ErrMissingParent, ref)
				}
			}
		case FieldKey:
			if !known {
				return fmt.Errorf("%w: %q", ErrUnknownEntity, m.Entity)
			}
			if !isKey(m.Record[entity.Key]) {
				return fmt.Errorf("%w: %s", ErrMissingKey, entity.Key)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *MutationValidator) validateSettingsChange(ctx context.Context, c models.SettingsChange, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldSection, FieldRecord, FieldUserID}
	}

	for _, f := range fields {
		switch f {
		case FieldSection:
			if !c.Section.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownSection, c.Section)
			}
		case FieldRecord:
			if c.Record == nil {
				return ErrEmptyRecord
			}
		case FieldUserID:
			if !isKey(c.Record["userID"]) {
				return ErrInvalidUserID
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *MutationValidator) validateTables(ctx context.Context, tables []schema.Table) error {
	if len(tables) == 0 {
		return ErrEmptyTables
	}
	for _, t := range tables {
		if _, ok := t.Mirror(); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTable, t)
		}
	}
	return nil
}

func isPositiveID(v any) bool {
	id, ok := models.Normalize(v).(int64)
	return ok && id > 0
}

func isKey(v any) bool {
	switch k := models.Normalize(v).(type) {
	case int64:
		return k > 0
	case string:
		return k != ""
	default:
		return false
	}
}
