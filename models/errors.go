package models

import "errors"

var (
	// ErrUnknownStatus is returned when the server reports a status outside
	// the closed [Status] set.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrDecodingRecord is returned when a stored or received value is not a
	// JSON object.
	ErrDecodingRecord = errors.New("error decoding record")
)
