package models

import (
	"encoding/json"
	"fmt"
)

// Status is the closed set of outcomes the server reports for a push record
// or a pull request. Unknown wire values fail decoding with [ErrUnknownStatus]
// rather than being silently treated as one of the known cases.
type Status int

const (
	// StatusSuccess means the record or table was applied.
	StatusSuccess Status = iota + 1

	// StatusError is a generic application-level failure.
	StatusError

	// StatusServerError means the server failed while handling the request.
	StatusServerError

	// StatusValidationError means the payload was rejected. A message
	// containing "already exists" marks a benign idempotent retry.
	StatusValidationError

	// StatusAuthError short-circuits the current operation and routes the
	// user to re-authentication.
	StatusAuthError

	// StatusNoData means the requested table holds nothing for the user.
	StatusNoData

	// StatusNoUpdate means the record was accepted but nothing changed.
	StatusNoUpdate
)

var statusNames = map[Status]string{
	StatusSuccess:         "success",
	StatusError:           "error",
	StatusServerError:     "server-error",
	StatusValidationError: "validation-error",
	StatusAuthError:       "auth-error",
	StatusNoData:          "no-data",
	StatusNoUpdate:        "no-update",
}

// ParseStatus maps a wire value to a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// String returns the wire representation of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalJSON encodes the status as its wire string.
func (s Status) MarshalJSON() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a wire string into a known status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownStatus, err)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
