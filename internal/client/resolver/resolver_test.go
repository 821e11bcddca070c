package resolver

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/docsync/internal/models"
)

func testResolver() *Resolver {
	r := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	seq := 0
	r.newID = func() string {
		seq++
		return fmt.Sprintf("res-%04d", seq)
	}
	return r
}

func testDoc(id, content string) *models.Document {
	return &models.Document{ID: id, Content: content}
}

func change(changeID, deviceID string, typ models.ChangeType, pos, span int, content string, ts time.Time) *models.LocalChange {
	return &models.LocalChange{
		ChangeID:   changeID,
		DocumentID: "doc-1",
		DeviceID:   deviceID,
		Type:       typ,
		Position:   pos,
		Span:       span,
		Content:    content,
		Timestamp:  ts,
	}
}

func TestResolver_NoServerChanges(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	server := testDoc("doc-1", "")
	local := testDoc("doc-1", "ac")

	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 0, 0, "abc", t0),
		change(models.FormatChangeID(2, "laptop"), "laptop", models.ChangeDelete, 1, 1, "", t0.Add(time.Second)),
	}

	result, err := r.Resolve(server, local, pending, nil)
	require.NoError(t, err)

	assert.Equal(t, "ac", result.MergedContent)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 0, result.Dropped)
	assert.Empty(t, result.Resolutions, "non-conflicting changes leave no resolution records")
}

func TestResolver_PendingReplayedInChangeIDOrder(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	server := testDoc("doc-1", "")
	local := testDoc("doc-1", "ac")

	// Очередь подана в обратном порядке: воспроизведение обязано
	// отсортировать её по ChangeID
	pending := []*models.LocalChange{
		change(models.FormatChangeID(2, "laptop"), "laptop", models.ChangeDelete, 1, 1, "", t0),
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 0, 0, "abc", t0),
	}

	result, err := r.Resolve(server, local, pending, nil)
	require.NoError(t, err)
	assert.Equal(t, "ac", result.MergedContent)
}

func TestResolver_NonOverlappingShift(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Сервер вставил "XX" в начало; локальная вставка в позицию 5
	// сдвигается на длину чужой вставки
	server := testDoc("doc-1", "XX0123456789")
	local := testDoc("doc-1", "01234yy56789")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeInsert, 0, 0, "XX", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 5, 0, "yy", t0.Add(time.Second)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "XX01234yy56789", result.MergedContent)
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Resolutions)
}

func TestResolver_NonOverlappingShiftPastDelete(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Сервер удалил [0, 3); локальная вставка в позицию 5 сдвигается влево
	server := testDoc("doc-1", "3456789")
	local := testDoc("doc-1", "01234yy56789")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeDelete, 0, 3, "", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 5, 0, "yy", t0.Add(time.Second)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "34yy56789", result.MergedContent)
}

func TestResolver_InsertVsInsertSamePosition(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		localTS    time.Time
		wantMerged string
	}{
		{
			// Вставка сервера раньше по времени - локальная уходит за неё
			name:       "server_insert_first",
			localTS:    t0.Add(time.Second),
			wantMerged: "Hello there dear world",
		},
		{
			// Локальная вставка раньше - остается на исходной позиции
			name:       "local_insert_first",
			localTS:    t0.Add(-time.Second),
			wantMerged: "Hello dear there world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testResolver()

			// Содержимое сервера уже включает его вставку " there" в позицию 5
			server := testDoc("doc-1", "Hello there world")
			local := testDoc("doc-1", "Hello dear world")

			serverChanges := []*models.LocalChange{
				change(models.FormatChangeID(1, "phone"), "phone", models.ChangeInsert, 5, 0, " there", t0),
			}
			pending := []*models.LocalChange{
				change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 5, 0, " dear", tt.localTS),
			}

			result, err := r.Resolve(server, local, pending, serverChanges)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMerged, result.MergedContent)
			assert.Equal(t, 1, result.Applied)

			require.Len(t, result.Resolutions, 1)
			res := result.Resolutions[0]
			assert.Equal(t, models.StrategyMerge, res.Strategy)
			assert.Equal(t, "engine", res.ResolvedBy)
			require.NotNil(t, res.ResolvedChange)
		})
	}
}

func TestResolver_LaterDeleteWins(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Сервер вставил "XX" в начало, локальный delete записан позже
	// и убирает именно эту вставку
	server := testDoc("doc-1", "XXabcdef")
	local := testDoc("doc-1", "cdef")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeInsert, 0, 0, "XX", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeDelete, 0, 2, "", t0.Add(time.Minute)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "abcdef", result.MergedContent)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Resolutions, 1)
	assert.Equal(t, models.StrategyMerge, result.Resolutions[0].Strategy)
}

func TestResolver_EarlierDeleteNarrowed(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Локальный delete [2, 6) пересекается с более поздним delete [4, 8)
	// сервера и сужается до ведущего куска [2, 4)
	server := testDoc("doc-1", "abcdij")
	local := testDoc("doc-1", "abghij")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeDelete, 4, 4, "", t0.Add(time.Minute)),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeDelete, 2, 4, "", t0),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "abij", result.MergedContent)
	assert.Equal(t, 1, result.Applied)

	require.Len(t, result.Resolutions, 1)
	res := result.Resolutions[0]
	require.NotNil(t, res.ResolvedChange)
	assert.Equal(t, 2, res.ResolvedChange.Position)
	assert.Equal(t, 2, res.ResolvedChange.Span)
}

func TestResolver_EarlierDeleteFullyCoveredDropped(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Диапазон локального delete целиком внутри более позднего delete сервера
	server := testDoc("doc-1", "abij")
	local := testDoc("doc-1", "abcdghij")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeDelete, 2, 6, "", t0.Add(time.Minute)),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeDelete, 4, 2, "", t0),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "abij", result.MergedContent)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Dropped)

	require.Len(t, result.Resolutions, 1)
	assert.Nil(t, result.Resolutions[0].ResolvedChange)
}

func TestResolver_InsertDroppedByLaterServerDelete(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Сервер позже удалил диапазон, в который целилась локальная вставка
	server := testDoc("doc-1", "fgh")
	local := testDoc("doc-1", "abzzcdefgh")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeDelete, 0, 5, "", t0.Add(time.Minute)),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 2, 0, "zz", t0),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "fgh", result.MergedContent)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Resolutions, 1)
	assert.Nil(t, result.Resolutions[0].ResolvedChange)
}

func TestResolver_InsertSurvivesEarlierServerDelete(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Сервер удалил [2, 6) раньше локальной вставки: вставка переносится
	// к началу удалённого диапазона
	server := testDoc("doc-1", "abgh")
	local := testDoc("doc-1", "abcdzzefgh")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeDelete, 2, 4, "", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 4, 0, "zz", t0.Add(time.Minute)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "abzzgh", result.MergedContent)
	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Resolutions, 1)
	assert.Equal(t, 2, result.Resolutions[0].ResolvedChange.Position)
}

func TestResolver_FormatNarrowedByServerDelete(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// Формат [2, 6) частично перекрыт delete [4, 8) сервера:
	// остаётся кусок вне удалённой области
	server := testDoc("doc-1", "abcdij")
	local := testDoc("doc-1", "abcdefghij")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeDelete, 4, 4, "", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeFormat, 2, 4, "bold", t0.Add(time.Minute)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	// Формат не меняет текст
	assert.Equal(t, "abcdij", result.MergedContent)
	assert.Equal(t, 1, result.Applied)

	require.Len(t, result.Resolutions, 1)
	res := result.Resolutions[0]
	require.NotNil(t, res.ResolvedChange)
	assert.Equal(t, 2, res.ResolvedChange.Span)
}

func TestResolver_FormatVsFormatSameStyle(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	server := testDoc("doc-1", "abcdef")
	local := testDoc("doc-1", "abcdef")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeFormat, 0, 4, "bold", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeFormat, 0, 4, "bold", t0.Add(time.Second)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	// Один и тот же стиль с обеих сторон - дубликат, не конфликт
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, result.Resolutions, 1)
	assert.Equal(t, models.StrategyMerge, result.Resolutions[0].Strategy)
}

func TestResolver_FormatVsFormatDifferentStyle(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	server := testDoc("doc-1", "server text")
	local := testDoc("doc-1", "local text")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeFormat, 0, 4, "bold", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeFormat, 0, 4, "italic", t0.Add(time.Second)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.ErrorIs(t, err, ErrManualResolution)

	require.Len(t, result.Resolutions, 1)
	res := result.Resolutions[0]
	assert.Equal(t, models.StrategyManual, res.Strategy)
	assert.Equal(t, "local text", res.LocalCandidate)
	assert.Equal(t, "server text", res.ServerCandidate)
}

func TestResolver_CommentNeverConflicts(t *testing.T) {
	r := testResolver()
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	server := testDoc("doc-1", "abcdef")
	local := testDoc("doc-1", "abcdef")

	// Комментарий попадает в диапазон чужого format - аннотации
	// не конфликтуют с текстом
	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeFormat, 0, 4, "bold", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeComment, 2, 0, "looks good", t0.Add(time.Second)),
	}

	result, err := r.Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, "abcdef", result.MergedContent)
	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Resolutions)
}

func TestResolver_Deterministic(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	server := testDoc("doc-1", "Hello there world")
	local := testDoc("doc-1", "Hello dear world")

	serverChanges := []*models.LocalChange{
		change(models.FormatChangeID(1, "phone"), "phone", models.ChangeInsert, 5, 0, " there", t0),
	}
	pending := []*models.LocalChange{
		change(models.FormatChangeID(1, "laptop"), "laptop", models.ChangeInsert, 5, 0, " dear", t0.Add(time.Second)),
	}

	first, err := testResolver().Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)
	second, err := testResolver().Resolve(server, local, pending, serverChanges)
	require.NoError(t, err)

	assert.Equal(t, first.MergedContent, second.MergedContent)
	assert.Equal(t, first.Applied, second.Applied)
	assert.Equal(t, first.Dropped, second.Dropped)
	require.Equal(t, len(first.Resolutions), len(second.Resolutions))
	for i := range first.Resolutions {
		assert.Equal(t, first.Resolutions[i].Strategy, second.Resolutions[i].Strategy)
		assert.Equal(t, first.Resolutions[i].ResolvedChange, second.Resolutions[i].ResolvedChange)
	}
}
