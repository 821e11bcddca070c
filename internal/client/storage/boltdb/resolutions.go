package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/docsync/internal/client/storage"
	"github.com/iudanet/docsync/internal/models"
)

// AppendResolution appends a resolution record to the audit log.
// Журнал append-only: ключи выдает NextSequence, существующие записи
// никогда не перезаписываются.
func (s *Storage) AppendResolution(ctx context.Context, res *models.ConflictResolution) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal resolution: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		parent := tx.Bucket(bucketResolutions)
		if parent == nil {
			return fmt.Errorf("resolutions bucket not found")
		}

		log, err := parent.CreateBucketIfNotExists([]byte(res.DocumentID))
		if err != nil {
			return fmt.Errorf("failed to create resolution log bucket: %w", err)
		}

		seq, err := log.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		if err := log.Put(key, data); err != nil {
			return fmt.Errorf("failed to append resolution: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// Resolutions returns all resolution records of a document in append order
func (s *Storage) Resolutions(ctx context.Context, documentID string) ([]*models.ConflictResolution, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var records []*models.ConflictResolution

	err := s.db.View(func(tx *bbolt.Tx) error {
		log := queueBucket(tx, bucketResolutions, documentID)
		if log == nil {
			return nil
		}

		return log.ForEach(func(k, v []byte) error {
			var res models.ConflictResolution
			if err := json.Unmarshal(v, &res); err != nil {
				return fmt.Errorf("failed to unmarshal resolution: %w", err)
			}
			records = append(records, &res)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get resolutions: %w", err)
	}

	return records, nil
}
