package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/docsync/internal/client/storage"
	"github.com/iudanet/docsync/internal/models"
)

// AppendChange appends a change to the document's pending queue.
// Ключом служит ChangeID: он лексикографически монотонный, поэтому
// обход bucket по порядку ключей дает порядок воспроизведения.
func (s *Storage) AppendChange(ctx context.Context, change *models.LocalChange) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		parent := tx.Bucket(bucketChanges)
		if parent == nil {
			return fmt.Errorf("changes bucket not found")
		}

		// Очередь каждого документа живет в своем sub-bucket
		queue, err := parent.CreateBucketIfNotExists([]byte(change.DocumentID))
		if err != nil {
			return fmt.Errorf("failed to create queue bucket: %w", err)
		}

		if err := queue.Put([]byte(change.ChangeID), data); err != nil {
			return fmt.Errorf("failed to append change: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// PendingChanges returns the pending queue of a document in replay order
func (s *Storage) PendingChanges(ctx context.Context, documentID string) ([]*models.LocalChange, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var changes []*models.LocalChange

	err := s.db.View(func(tx *bbolt.Tx) error {
		queue := queueBucket(tx, bucketChanges, documentID)
		if queue == nil {
			return nil
		}

		return queue.ForEach(func(k, v []byte) error {
			var change models.LocalChange
			if err := json.Unmarshal(v, &change); err != nil {
				return fmt.Errorf("failed to unmarshal change: %w", err)
			}
			changes = append(changes, &change)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get pending changes: %w", err)
	}

	return changes, nil
}

// PendingCount returns the number of pending changes for a document
func (s *Storage) PendingCount(ctx context.Context, documentID string) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	count := 0

	err := s.db.View(func(tx *bbolt.Tx) error {
		queue := queueBucket(tx, bucketChanges, documentID)
		if queue == nil {
			return nil
		}
		count = queue.Stats().KeyN
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}

	return count, nil
}

// DocumentsWithPending returns IDs of documents with a non-empty queue
func (s *Storage) DocumentsWithPending(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var ids []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		parent := tx.Bucket(bucketChanges)
		if parent == nil {
			return nil
		}

		return parent.ForEachBucket(func(k []byte) error {
			queue := parent.Bucket(k)
			if queue != nil && queue.Stats().KeyN > 0 {
				ids = append(ids, string(k))
			}
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list documents with pending changes: %w", err)
	}

	return ids, nil
}

// HasChange reports whether the change ID is known locally (pending or archived)
func (s *Storage) HasChange(ctx context.Context, documentID, changeID string) (bool, error) {
	if s.db == nil {
		return false, storage.ErrStorageClosed
	}

	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		if queue := queueBucket(tx, bucketChanges, documentID); queue != nil {
			if queue.Get([]byte(changeID)) != nil {
				found = true
				return nil
			}
		}
		if archive := queueBucket(tx, bucketArchive, documentID); archive != nil {
			if archive.Get([]byte(changeID)) != nil {
				found = true
			}
		}
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("failed to check change: %w", err)
	}

	return found, nil
}

// ArchivePending atomically moves all pending changes with ChangeID <= upTo
// into the archive. Перенос и очистка происходят в одной транзакции:
// падение между ними невозможно, очередь либо цела, либо уже в архиве.
func (s *Storage) ArchivePending(ctx context.Context, documentID, upTo string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue := queueBucket(tx, bucketChanges, documentID)
		if queue == nil {
			return nil
		}

		archiveParent := tx.Bucket(bucketArchive)
		if archiveParent == nil {
			return fmt.Errorf("archive bucket not found")
		}

		archive, err := archiveParent.CreateBucketIfNotExists([]byte(documentID))
		if err != nil {
			return fmt.Errorf("failed to create archive bucket: %w", err)
		}

		// Собираем ключи до upTo включительно
		var keys [][]byte
		c := queue.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if string(k) > upTo {
				break
			}
			if err := archive.Put(k, v); err != nil {
				return fmt.Errorf("failed to archive change: %w", err)
			}
			key := make([]byte, len(k))
			copy(key, k)
			keys = append(keys, key)
		}

		for _, k := range keys {
			if err := queue.Delete(k); err != nil {
				return fmt.Errorf("failed to clear queued change: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("archive transaction failed: %w", err)
	}

	return nil
}

// ArchivedChanges returns acknowledged changes of a document in replay order
func (s *Storage) ArchivedChanges(ctx context.Context, documentID string) ([]*models.LocalChange, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var changes []*models.LocalChange

	err := s.db.View(func(tx *bbolt.Tx) error {
		archive := queueBucket(tx, bucketArchive, documentID)
		if archive == nil {
			return nil
		}

		return archive.ForEach(func(k, v []byte) error {
			var change models.LocalChange
			if err := json.Unmarshal(v, &change); err != nil {
				return fmt.Errorf("failed to unmarshal archived change: %w", err)
			}
			changes = append(changes, &change)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get archived changes: %w", err)
	}

	return changes, nil
}

// queueBucket возвращает sub-bucket документа внутри родительского bucket
func queueBucket(tx *bbolt.Tx, parentName []byte, documentID string) *bbolt.Bucket {
	parent := tx.Bucket(parentName)
	if parent == nil {
		return nil
	}
	return parent.Bucket([]byte(documentID))
}
