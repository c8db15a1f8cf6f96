package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrUnknownEntity    = errors.New("unknown entity")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrUnknownSection   = errors.New("unknown settings section")
	ErrUnknownTable     = errors.New("unknown table")
	ErrEmptyRecord      = errors.New("record is required")
	ErrInvalidID        = errors.New("invalid id")
	ErrMissingKey       = errors.New("record key is required")
	ErrMissingParent    = errors.New("parent reference is required")
	ErrInvalidUserID    = errors.New("invalid user ID")
	ErrEmptyTables      = errors.New("tables list cannot be empty")
)
