package loader

import "errors"

var (
	// ErrTooManyLoads is returned when no load slot frees up in time.
	ErrTooManyLoads = errors.New("too many loads in progress")

	// ErrLoadNotFound is returned for unknown or expired load IDs.
	ErrLoadNotFound = errors.New("load not found")

	// ErrUnknownSchema is returned when no schema is registered under a key.
	ErrUnknownSchema = errors.New("unknown schema")

	// ErrUnsupportedFormat is returned for files that are neither
	// spreadsheets nor CSV.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("empty file")
)
