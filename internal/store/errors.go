package store

import "errors"

// Sentinel errors returned by the local store engine. Callers should use
// [errors.Is] to match against these values; the underlying driver error is
// always wrapped alongside.
var (
	// ErrDatabaseUnavailable is returned when the database cannot be opened,
	// is locked by another process, or is not a valid database file. Callers
	// must surface "changes will not be saved" rather than crash.
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrTransactionAborted is returned when a transaction cannot be started
	// or committed, or when a statement inside it fails for a reason other
	// than a constraint. Nothing from the transaction is visible afterwards.
	ErrTransactionAborted = errors.New("transaction aborted")

	// ErrConstraintViolation is returned by Add when a record with the same
	// key already exists, or when a unique index would be violated.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrNotFound is returned by Get when no record has the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrStoreNotInScope is returned when a transaction touches a store it
	// was not opened for.
	ErrStoreNotInScope = errors.New("store is not in transaction scope")

	// ErrReadOnlyTransaction is returned when a write is attempted inside a
	// View transaction.
	ErrReadOnlyTransaction = errors.New("transaction is read-only")

	// ErrUnknownStore is returned for a store missing from the registry.
	ErrUnknownStore = errors.New("unknown store")

	// ErrUnknownIndex is returned by GetAllByIndex for an undeclared index.
	ErrUnknownIndex = errors.New("unknown index")

	// ErrInvalidKey is returned when a record has no usable key: the key path
	// field is missing, or its value is neither a number nor a string.
	ErrInvalidKey = errors.New("invalid record key")
)

// Low-level database operation errors.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrScanningRow is returned when scanning a single row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when row iteration fails mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingRecord is returned when a record cannot be encoded as JSON.
	ErrEncodingRecord = errors.New("failed to encode record")

	// ErrMigrating is returned when reconciling the registry fails.
	ErrMigrating = errors.New("failed to migrate local database")
)
