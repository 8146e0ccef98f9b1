package services

import "errors"

var (
	// ErrNotFound covers both a missing record and a record the caller does
	// not own; the two are deliberately indistinguishable.
	ErrNotFound = errors.New("asset not found")

	// ErrForbidden is returned only where existence is already implied by
	// the caller's input (e.g. download by internal id).
	ErrForbidden = errors.New("forbidden")

	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrStorageWrite indicates a failed or partially-failed storage
	// operation; no record is committed or removed when it occurs.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrFileMissing means a record exists but its payload is gone from
	// storage. Storage/record drift, not a client error.
	ErrFileMissing = errors.New("stored file missing")
)

// ValidationError carries field-level detail for bad input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
