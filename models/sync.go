package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
)

// Outcome is the server's verdict on one record of a push batch.
type Outcome struct {
	// Status is the per-record result.
	Status Status `json:"status"`

	// Key, when present, identifies the single queue record that may be
	// removed from the pushed store.
	Key any `json:"key,omitempty"`

	// ClearStore asks the client to empty the whole pushed store.
	ClearStore bool `json:"clearStore,omitempty"`

	// Data carries optional server-assigned values for the record.
	Data json.RawMessage `json:"data,omitempty"`

	// Msg is a human readable explanation, mostly set on failures.
	Msg string `json:"msg,omitempty"`
}

// AlreadyExists reports whether the outcome is a validation error caused by
// re-sending a record the server has already applied.
func (o Outcome) AlreadyExists() bool {
	return o.Status == StatusValidationError && strings.Contains(strings.ToLower(o.Msg), "already exists")
}

// Failed reports whether the outcome leaves its record pending.
func (o Outcome) Failed() bool {
	switch o.Status {
	case StatusError, StatusServerError, StatusAuthError:
		return true
	case StatusValidationError:
		return !o.AlreadyExists()
	default:
		return false
	}
}

// Acknowledged reports whether the server has taken the record, so the
// matching queue entry may be dropped.
func (o Outcome) Acknowledged() bool {
	switch o.Status {
	case StatusSuccess, StatusNoUpdate:
		return true
	default:
		return o.AlreadyExists()
	}
}

// PullRequest asks the server for a snapshot of one table.
type PullRequest struct {
	Table schema.Table `json:"table"`
}

// MaxID is a watermark the server returns with a snapshot. Store names the
// local marker store, ID the highest id issued server-side.
type MaxID struct {
	Store   schema.StoreName `json:"store"`
	KeyPath string           `json:"keyPath"`
	ID      any              `json:"id"`
}

// PullResponse is the server snapshot of one table.
type PullResponse struct {
	Status Status `json:"status"`

	// Data is either an array of records, a single record, or an object
	// whose Property field holds the records.
	Data json.RawMessage `json:"data,omitempty"`

	// Property, when set, names the field of Data holding the records.
	Property string `json:"property,omitempty"`

	MaxID []MaxID `json:"maxID,omitempty"`
}

// Records extracts the snapshot records from Data.
func (p PullResponse) Records() ([]Record, error) {
	data := bytes.TrimSpace(p.Data)
	if p.Property != "" && len(data) > 0 && data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingRecord, err)
		}
		data = bytes.TrimSpace(wrapper[p.Property])
	}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Record{}, nil
	}

	switch data[0] {
	case '[':
		return DecodeRecords(data)
	case '{':
		rec, err := DecodeRecord(data)
		if err != nil {
			return nil, err
		}
		return []Record{rec}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected snapshot payload", ErrDecodingRecord)
	}
}
