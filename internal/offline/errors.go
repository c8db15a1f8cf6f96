package offline

import "errors"

var (
	// ErrEmptyOrigin is returned by [New] when no upstream origin is set.
	ErrEmptyOrigin = errors.New("offline cache origin is empty")

	// ErrInstall is returned when an asset of the manifest cannot be
	// precached. Nothing is stored when install fails.
	ErrInstall = errors.New("offline cache install failed")

	// ErrNetwork wraps every failure to get a response from the origin.
	ErrNetwork = errors.New("origin unreachable")
)
