package storage

import "errors"

// Common storage errors
var (
	// ErrDocumentNotFound indicates that document was not found in storage
	ErrDocumentNotFound = errors.New("document not found")

	// ErrVersionConflict indicates that the pushed base version is stale:
	// another device advanced the document between the client's pull and push
	ErrVersionConflict = errors.New("document version conflict")
)
