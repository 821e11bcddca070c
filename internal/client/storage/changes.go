package storage

import (
	"context"

	"github.com/iudanet/docsync/internal/models"
)

//go:generate moq -out changes_mock.go . ChangeLogStorage

// ChangeLogStorage defines interface for the per-document change queue
// and the archive of acknowledged changes.
// Queue order is insertion order: keys are built from monotonic change IDs.
type ChangeLogStorage interface {
	// AppendChange appends a change to the document's pending queue
	AppendChange(ctx context.Context, change *models.LocalChange) error

	// PendingChanges returns the pending queue of a document in replay order
	PendingChanges(ctx context.Context, documentID string) ([]*models.LocalChange, error)

	// PendingCount returns the number of pending changes for a document
	PendingCount(ctx context.Context, documentID string) (int, error)

	// DocumentsWithPending returns IDs of documents with a non-empty queue
	DocumentsWithPending(ctx context.Context) ([]string, error)

	// HasChange reports whether the change ID is known locally,
	// either still pending or already archived. Used to guarantee
	// a change is never applied twice locally after a re-pull.
	HasChange(ctx context.Context, documentID, changeID string) (bool, error)

	// ArchivePending atomically moves all pending changes with
	// ChangeID <= upTo into the archive. Called only after the server
	// acknowledged a push; a crash before the call leaves the queue
	// intact and the next push re-sends the same changes.
	ArchivePending(ctx context.Context, documentID, upTo string) error

	// ArchivedChanges returns acknowledged changes of a document in replay order
	ArchivedChanges(ctx context.Context, documentID string) ([]*models.LocalChange, error)
}
