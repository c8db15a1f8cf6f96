package models

import (
	"fmt"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
)

// IndicatorState is the color-coded sync signal of one store. It is derived
// on the fly and never persisted.
type IndicatorState int

const (
	// IndicatorNeutral means nothing happened: empty queue or no data.
	IndicatorNeutral IndicatorState = iota

	// IndicatorInProgress is shown while the store is being synced.
	IndicatorInProgress

	// IndicatorGreen means every record was acknowledged.
	IndicatorGreen

	// IndicatorYellow means the server accepted the batch without changes.
	IndicatorYellow

	// IndicatorRed means at least one record or the whole request failed.
	IndicatorRed
)

var indicatorNames = [...]string{"neutral", "in-progress", "green", "yellow", "red"}

func (s IndicatorState) String() string {
	if int(s) < len(indicatorNames) && s >= 0 {
		return indicatorNames[s]
	}
	return fmt.Sprintf("indicator(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s IndicatorState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *IndicatorState) UnmarshalText(text []byte) error {
	for i, name := range indicatorNames {
		if name == string(text) {
			*s = IndicatorState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown indicator state %q", text)
}

// StoreReport summarizes the push of one queue store.
type StoreReport struct {
	Store        schema.StoreName `json:"store"`
	State        IndicatorState   `json:"state"`
	Sent         int              `json:"sent"`
	Acknowledged int              `json:"acknowledged"`
	Removed      int              `json:"removed"`
	Cleared      bool             `json:"cleared,omitempty"`
	Skipped      bool             `json:"skipped,omitempty"`
	Messages     []string         `json:"messages,omitempty"`
}

// BackupResult is the end-of-run report of a push.
type BackupResult struct {
	// OK is true only if no store produced error, server-error or a
	// validation-error other than "already exists".
	OK bool `json:"ok"`

	// AuthRequired is set when the run was aborted for re-authentication.
	AuthRequired bool `json:"authRequired,omitempty"`

	Stores []StoreReport `json:"stores"`
}

// Failures returns the reports of stores that did not succeed.
func (r BackupResult) Failures() []StoreReport {
	var out []StoreReport
	for _, s := range r.Stores {
		if s.State == IndicatorRed {
			out = append(out, s)
		}
	}
	return out
}

// TableReport summarizes the pull of one table.
type TableReport struct {
	Table    schema.Table     `json:"table"`
	Store    schema.StoreName `json:"store"`
	State    IndicatorState   `json:"state"`
	Records  int              `json:"records"`
	Messages []string         `json:"messages,omitempty"`
}

// TransferResult is the end-of-run report of a pull.
type TransferResult struct {
	OK           bool          `json:"ok"`
	AuthRequired bool          `json:"authRequired,omitempty"`
	Tables       []TableReport `json:"tables"`
}

// Failures returns the reports of tables that did not succeed.
func (r TransferResult) Failures() []TableReport {
	var out []TableReport
	for _, t := range r.Tables {
		if t.State == IndicatorRed {
			out = append(out, t)
		}
	}
	return out
}
