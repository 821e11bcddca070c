package storage

import (
	"context"

	"github.com/iudanet/docsync/internal/models"
)

//go:generate moq -out documents_mock.go . DocumentStorage

// DocumentStorage defines interface for durable document persistence on client.
// Writes are synchronous: when SaveDocument returns, the document survives
// a crash of the process.
type DocumentStorage interface {
	// SaveDocument stores or updates a document
	SaveDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a document by ID
	// Returns ErrDocumentNotFound if document doesn't exist
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns all documents that could be decoded.
	// Corrupted entries are skipped and logged, they never fail the whole load.
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// DeleteDocument removes a document from durable storage.
	// Used by cache eviction; the change queue is not touched.
	DeleteDocument(ctx context.Context, id string) error
}
