package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/docsync/internal/server/storage"
	"github.com/iudanet/docsync/pkg/api"
)

func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "server_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func apiChange(changeID, deviceID, typ string, pos, span int, content string) api.Change {
	return api.Change{
		ChangeID:   changeID,
		DocumentID: "notes",
		DeviceID:   deviceID,
		Type:       typ,
		Position:   pos,
		Span:       span,
		Content:    content,
		Timestamp:  time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestStorage_GetDocument_NotFound(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestStorage_ApplyPush_CreatesDocument(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	outcome, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), outcome.NewVersion)
	assert.Equal(t, 1, outcome.Applied)
	assert.Equal(t, 0, outcome.Duplicates)

	doc, err := s.GetDocument(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Content)
	assert.Equal(t, int64(1), doc.Version)
	assert.False(t, doc.UpdatedAt.IsZero())
}

func TestStorage_ApplyPush_AdvancesVersionByOne(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	})
	require.NoError(t, err)

	// Push с несколькими изменениями продвигает версию ровно на единицу
	outcome, err := s.ApplyPush(ctx, "notes", "laptop", 1, "Hi there!", []api.Change{
		apiChange("0000000000000002-laptop", "laptop", "delete", 0, 5, ""),
		apiChange("0000000000000003-laptop", "laptop", "insert", 0, 0, "Hi there!"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), outcome.NewVersion)
	assert.Equal(t, 2, outcome.Applied)

	doc, err := s.GetDocument(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", doc.Content)
	assert.Equal(t, int64(2), doc.Version)
}

func TestStorage_ApplyPush_DuplicatesAcknowledged(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	changes := []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	}

	first, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", changes)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.NewVersion)

	// Повторный push после потерянного подтверждения: та же очередь,
	// устаревшая база. Подтверждается без повторного применения.
	second, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", changes)
	require.NoError(t, err)

	assert.Equal(t, int64(1), second.NewVersion, "version must not advance on a pure duplicate push")
	assert.Equal(t, 0, second.Applied)
	assert.Equal(t, 1, second.Duplicates)

	doc, err := s.GetDocument(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
	assert.Equal(t, "Hello", doc.Content, "content must not change on a pure duplicate push")
}

func TestStorage_ApplyPush_MixedFreshAndDuplicate(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	})
	require.NoError(t, err)

	outcome, err := s.ApplyPush(ctx, "notes", "laptop", 1, "Hello!", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
		apiChange("0000000000000002-laptop", "laptop", "insert", 5, 0, "!"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), outcome.NewVersion)
	assert.Equal(t, 1, outcome.Applied)
	assert.Equal(t, 1, outcome.Duplicates)
}

func TestStorage_ApplyPush_VersionConflict(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	})
	require.NoError(t, err)

	// Другое устройство пушит с устаревшей базой и новым изменением
	_, err = s.ApplyPush(ctx, "notes", "phone", 0, "Goodbye", []api.Change{
		apiChange("0000000000000001-phone", "phone", "insert", 0, 0, "Goodbye"),
	})
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	// Конфликтный push ничего не меняет
	doc, err := s.GetDocument(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Content)
	assert.Equal(t, int64(1), doc.Version)

	changes, err := s.GetChangesSince(ctx, "notes", 0)
	require.NoError(t, err)
	assert.Len(t, changes, 1)
}

func TestStorage_ApplyPush_ContentOnly(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	})
	require.NoError(t, err)

	// Push без изменений (ручное разрешение): содержимое замещается как есть
	outcome, err := s.ApplyPush(ctx, "notes", "laptop", 1, "chosen content", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), outcome.NewVersion)
	assert.Equal(t, 0, outcome.Applied)

	doc, err := s.GetDocument(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "chosen content", doc.Content)
}

func TestStorage_GetChangesSince(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.ApplyPush(ctx, "notes", "laptop", 0, "Hello", []api.Change{
		apiChange("0000000000000001-laptop", "laptop", "insert", 0, 0, "Hello"),
	})
	require.NoError(t, err)

	_, err = s.ApplyPush(ctx, "notes", "phone", 1, "Hello world", []api.Change{
		apiChange("0000000000000001-phone", "phone", "insert", 5, 0, " world"),
	})
	require.NoError(t, err)

	// Полная история в порядке применения
	all, err := s.GetChangesSince(ctx, "notes", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "0000000000000001-laptop", all[0].ChangeID)
	assert.Equal(t, "0000000000000001-phone", all[1].ChangeID)
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), all[0].Timestamp)

	// Только изменения после известной клиенту версии
	tail, err := s.GetChangesSince(ctx, "notes", 1)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "0000000000000001-phone", tail[0].ChangeID)

	// Догнавший клиент не получает ничего
	none, err := s.GetChangesSince(ctx, "notes", 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStorage_ChangesIsolatedPerDocument(t *testing.T) {
	ctx := context.Background()
	s := createTestStorage(t)

	_, err := s.ApplyPush(ctx, "alpha", "laptop", 0, "a", []api.Change{
		{ChangeID: "0000000000000001-laptop", DocumentID: "alpha", DeviceID: "laptop", Type: "insert", Content: "a", Timestamp: time.Now()},
	})
	require.NoError(t, err)

	_, err = s.ApplyPush(ctx, "beta", "laptop", 0, "b", []api.Change{
		{ChangeID: "0000000000000002-laptop", DocumentID: "beta", DeviceID: "laptop", Type: "insert", Content: "b", Timestamp: time.Now()},
	})
	require.NoError(t, err)

	changes, err := s.GetChangesSince(ctx, "alpha", 0)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "alpha", changes[0].DocumentID)
}

func TestStorage_Ping(t *testing.T) {
	s := createTestStorage(t)
	assert.NoError(t, s.Ping(context.Background()))
}
