package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/docsync/internal/server/storage"
	"github.com/iudanet/docsync/pkg/api"
)

// GetDocument retrieves a document by ID
// Returns ErrDocumentNotFound if document doesn't exist
func (s *Storage) GetDocument(ctx context.Context, id string) (*api.Document, error) {
	query := `
		SELECT id, content, version, updated_at
		FROM documents
		WHERE id = ?
	`

	doc := &api.Document{}
	var updatedAt int64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.Content,
		&doc.Version,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return doc, nil
}

// GetChangesSince returns changes applied after the given version,
// in application order
func (s *Storage) GetChangesSince(ctx context.Context, id string, since int64) ([]api.Change, error) {
	query := `
		SELECT change_id, document_id, device_id, type, position, span, content, client_ts
		FROM applied_changes
		WHERE document_id = ? AND applied_version > ?
		ORDER BY applied_version, change_id
	`

	rows, err := s.db.QueryContext(ctx, query, id, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var changes []api.Change
	for rows.Next() {
		var change api.Change
		var clientTS int64

		if err := rows.Scan(
			&change.ChangeID,
			&change.DocumentID,
			&change.DeviceID,
			&change.Type,
			&change.Position,
			&change.Span,
			&change.Content,
			&clientTS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}

		change.Timestamp = time.Unix(0, clientTS).UTC()
		changes = append(changes, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate changes: %w", err)
	}

	return changes, nil
}

// ApplyPush применяет push клиента одной транзакцией.
// Идемпотентность по change_id: уже известные изменения считаются
// дубликатами и подтверждаются без повторного применения. Содержимое
// и версия меняются только если в push есть хотя бы одно новое изменение
// (или это push только содержимого при пустом списке изменений).
func (s *Storage) ApplyPush(ctx context.Context, id, deviceID string, baseVersion int64, mergedContent string, changes []api.Change) (*storage.PushOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Текущая версия документа (0, если документа еще нет)
	var currentVersion int64
	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM documents WHERE id = ?`, id,
	).Scan(&currentVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		return nil, fmt.Errorf("failed to read document version: %w", err)
	default:
		exists = true
	}

	// Определяем новые изменения до применения: конфликт версий
	// проверяется только если есть что применять
	var fresh []api.Change
	duplicates := 0
	for i := range changes {
		var known int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM applied_changes WHERE change_id = ?`,
			changes[i].ChangeID,
		).Scan(&known)
		if err != nil {
			return nil, fmt.Errorf("failed to check change %s: %w", changes[i].ChangeID, err)
		}
		if known > 0 {
			duplicates++
			continue
		}
		fresh = append(fresh, changes[i])
	}

	outcome := &storage.PushOutcome{
		NewVersion: currentVersion,
		Duplicates: duplicates,
	}

	// Все изменения уже известны - повторный push после потерянного
	// подтверждения. Подтверждаем без повторного применения.
	if len(fresh) == 0 && len(changes) > 0 {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return outcome, nil
	}

	// База клиента устарела: между его pull и push другое устройство
	// продвинуло документ. Слепое применение потеряло бы те правки.
	if baseVersion != currentVersion {
		return nil, fmt.Errorf("%w: base %d, current %d",
			storage.ErrVersionConflict, baseVersion, currentVersion)
	}

	newVersion := currentVersion + 1

	// Строка документа пишется до изменений: applied_changes ссылается
	// на documents по внешнему ключу
	now := time.Now().Unix()
	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE documents SET content = ?, version = ?, updated_at = ? WHERE id = ?
		`, mergedContent, newVersion, now, id)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (id, content, version, updated_at) VALUES (?, ?, ?, ?)
		`, id, mergedContent, newVersion, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	for i := range fresh {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applied_changes (
				change_id, document_id, device_id, type,
				position, span, content, client_ts, applied_version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			fresh[i].ChangeID,
			id,
			fresh[i].DeviceID,
			fresh[i].Type,
			fresh[i].Position,
			fresh[i].Span,
			fresh[i].Content,
			fresh[i].Timestamp.UnixNano(),
			newVersion,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to record change %s: %w", fresh[i].ChangeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	outcome.NewVersion = newVersion
	outcome.Applied = len(fresh)

	return outcome, nil
}
