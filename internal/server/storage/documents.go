package storage

import (
	"context"

	"github.com/iudanet/docsync/pkg/api"
)

// PushOutcome результат применения push на сервере
type PushOutcome struct {
	NewVersion int64 // версия документа после применения
	Applied    int   // изменения, применённые впервые
	Duplicates int   // изменения, уже известные серверу (подтверждены повторно)
}

// DocumentStorage defines interface for the server-of-record document store.
// Apply is idempotent per change_id: a retried push after a lost
// acknowledgment confirms the changes without re-applying them.
type DocumentStorage interface {
	// GetDocument retrieves a document by ID
	// Returns ErrDocumentNotFound if document doesn't exist
	GetDocument(ctx context.Context, id string) (*api.Document, error)

	// GetChangesSince returns changes applied to the document after
	// the given version, in application order
	GetChangesSince(ctx context.Context, id string, since int64) ([]api.Change, error)

	// ApplyPush applies a client push in a single transaction.
	// Changes already known by change_id are counted as duplicates and
	// not re-applied. If at least one change is new, the document content
	// is replaced with mergedContent and the version advances by one.
	// Returns ErrVersionConflict if baseVersion is stale and the push
	// carries new changes.
	ApplyPush(ctx context.Context, id, deviceID string, baseVersion int64, mergedContent string, changes []api.Change) (*PushOutcome, error)
}
