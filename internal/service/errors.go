package service

import "errors"

var (
	// ErrValidation wraps every rejection raised by the mutation validator.
	ErrValidation = errors.New("validation failed")

	// ErrAuthRequired aborts a push or pull; the user must log in again.
	// It is never retried automatically.
	ErrAuthRequired = errors.New("re-authentication required")

	ErrUnknownEntity  = errors.New("unknown entity")
	ErrUnknownSection = errors.New("unknown settings section")
	ErrUnknownTable   = errors.New("unknown table")
	ErrUnknownMarker  = errors.New("unknown max-id marker")
	ErrNotAMirror     = errors.New("store is not a readable mirror")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
