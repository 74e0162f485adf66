package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownFormat is returned for files whose format cannot be told
	// from their extension.
	ErrUnknownFormat = errors.New("unknown file format")

	// ErrStorageUnavailable is returned when a scan result storage backend
	// cannot be reached or is misconfigured.
	ErrStorageUnavailable = errors.New("scan result storage unavailable")
)
