package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatChangeID_LexicographicOrder(t *testing.T) {
	// Порядок строк должен совпадать с порядком счетчика
	ids := []string{
		FormatChangeID(1, "dev-a"),
		FormatChangeID(2, "dev-a"),
		FormatChangeID(10, "dev-a"),
		FormatChangeID(100, "dev-a"),
		FormatChangeID(9999999, "dev-a"),
	}

	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "change IDs must sort in issue order")
	}
}

func TestLocalChange_Apply(t *testing.T) {
	tests := []struct {
		name     string
		change   LocalChange
		content  string
		expected string
	}{
		{
			name:     "insert in the middle",
			change:   LocalChange{Type: ChangeInsert, Position: 5, Content: ", dear"},
			content:  "hello world",
			expected: "hello, dear world",
		},
		{
			name:     "insert at start",
			change:   LocalChange{Type: ChangeInsert, Position: 0, Content: ">> "},
			content:  "hello",
			expected: ">> hello",
		},
		{
			name:     "insert past end is clamped",
			change:   LocalChange{Type: ChangeInsert, Position: 100, Content: "!"},
			content:  "hello",
			expected: "hello!",
		},
		{
			name:     "delete range",
			change:   LocalChange{Type: ChangeDelete, Position: 5, Span: 6},
			content:  "hello world",
			expected: "hello",
		},
		{
			name:     "delete past end is clamped",
			change:   LocalChange{Type: ChangeDelete, Position: 3, Span: 100},
			content:  "hello",
			expected: "hel",
		},
		{
			name:     "delete with negative position is clamped",
			change:   LocalChange{Type: ChangeDelete, Position: -2, Span: 3},
			content:  "hello",
			expected: "lo",
		},
		{
			name:     "format does not mutate text",
			change:   LocalChange{Type: ChangeFormat, Position: 0, Span: 5, Content: "bold"},
			content:  "hello",
			expected: "hello",
		},
		{
			name:     "comment does not mutate text",
			change:   LocalChange{Type: ChangeComment, Position: 2, Content: "nice"},
			content:  "hello",
			expected: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.change.Apply(tt.content)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLocalChange_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a        LocalChange
		b        LocalChange
		overlaps bool
	}{
		{
			name:     "inserts at different positions",
			a:        LocalChange{Type: ChangeInsert, Position: 0, Content: "x"},
			b:        LocalChange{Type: ChangeInsert, Position: 10, Content: "y"},
			overlaps: false,
		},
		{
			name:     "inserts at the same position",
			a:        LocalChange{Type: ChangeInsert, Position: 5, Content: "x"},
			b:        LocalChange{Type: ChangeInsert, Position: 5, Content: "y"},
			overlaps: true,
		},
		{
			name:     "insert inside delete range",
			a:        LocalChange{Type: ChangeInsert, Position: 7, Content: "x"},
			b:        LocalChange{Type: ChangeDelete, Position: 5, Span: 5},
			overlaps: true,
		},
		{
			name:     "insert at delete range end",
			a:        LocalChange{Type: ChangeInsert, Position: 10, Content: "x"},
			b:        LocalChange{Type: ChangeDelete, Position: 5, Span: 5},
			overlaps: false,
		},
		{
			name:     "disjoint deletes",
			a:        LocalChange{Type: ChangeDelete, Position: 0, Span: 3},
			b:        LocalChange{Type: ChangeDelete, Position: 10, Span: 3},
			overlaps: false,
		},
		{
			name:     "intersecting deletes",
			a:        LocalChange{Type: ChangeDelete, Position: 0, Span: 5},
			b:        LocalChange{Type: ChangeDelete, Position: 3, Span: 5},
			overlaps: true,
		},
		{
			name:     "adjacent deletes do not overlap",
			a:        LocalChange{Type: ChangeDelete, Position: 0, Span: 5},
			b:        LocalChange{Type: ChangeDelete, Position: 5, Span: 5},
			overlaps: false,
		},
		{
			name:     "format over same span as format",
			a:        LocalChange{Type: ChangeFormat, Position: 2, Span: 4, Content: "bold"},
			b:        LocalChange{Type: ChangeFormat, Position: 2, Span: 4, Content: "italic"},
			overlaps: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(&tt.b))
			// Пересечение симметрично
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(&tt.a))
		})
	}
}

func TestLocalChange_Before(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	earlier := LocalChange{DeviceID: "dev-b", Timestamp: base}
	later := LocalChange{DeviceID: "dev-a", Timestamp: base.Add(time.Second)}

	assert.True(t, earlier.Before(&later))
	assert.False(t, later.Before(&earlier))

	// При равных временах порядок решает deviceID
	tieA := LocalChange{DeviceID: "dev-a", Timestamp: base}
	tieB := LocalChange{DeviceID: "dev-b", Timestamp: base}
	assert.True(t, tieA.Before(&tieB))
	assert.False(t, tieB.Before(&tieA))
}

func TestLocalChange_Clone(t *testing.T) {
	original := &LocalChange{
		ChangeID:   FormatChangeID(1, "dev-a"),
		DocumentID: "doc",
		Type:       ChangeInsert,
		Content:    "hello",
	}

	clone := original.Clone()
	clone.Content = "changed"

	assert.Equal(t, "hello", original.Content, "clone must not share state")
}

func TestValidChangeType(t *testing.T) {
	assert.True(t, ValidChangeType(ChangeInsert))
	assert.True(t, ValidChangeType(ChangeDelete))
	assert.True(t, ValidChangeType(ChangeFormat))
	assert.True(t, ValidChangeType(ChangeComment))
	assert.False(t, ValidChangeType(ChangeType("move")))
	assert.False(t, ValidChangeType(ChangeType("")))
}
