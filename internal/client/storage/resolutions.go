package storage

import (
	"context"

	"github.com/iudanet/docsync/internal/models"
)

//go:generate moq -out resolutions_mock.go . ResolutionLogStorage

// ResolutionLogStorage defines interface for the append-only conflict
// resolution audit log. Records are never rewritten or deleted.
type ResolutionLogStorage interface {
	// AppendResolution appends a resolution record to the audit log
	AppendResolution(ctx context.Context, res *models.ConflictResolution) error

	// Resolutions returns all resolution records of a document,
	// ordered by the time they were appended
	Resolutions(ctx context.Context, documentID string) ([]*models.ConflictResolution, error)
}
