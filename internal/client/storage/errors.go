package storage

import "errors"

// Common client storage errors
var (
	// ErrDocumentNotFound indicates that document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrChangeNotFound indicates that local change was not found
	ErrChangeNotFound = errors.New("local change not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
