package cli

import "errors"

var (
	// ErrInvalidFormat is returned for an unknown --format value.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrSyncFailed is returned when a push or pull finished with at least
	// one failed store. The report has already been printed.
	ErrSyncFailed = errors.New("sync finished with failures")
)
