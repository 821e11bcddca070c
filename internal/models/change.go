package models

import (
	"fmt"
	"time"
)

// ChangeType тип локального изменения документа.
type ChangeType string

// Допустимые типы изменений
const (
	ChangeInsert  ChangeType = "insert"  // вставка текста в позицию
	ChangeDelete  ChangeType = "delete"  // удаление диапазона [Position, Position+Span)
	ChangeFormat  ChangeType = "format"  // аннотация форматирования диапазона (текст не меняется)
	ChangeComment ChangeType = "comment" // комментарий к позиции (текст не меняется)
)

// ValidChangeType проверяет, что тип изменения известен движку.
func ValidChangeType(t ChangeType) bool {
	switch t {
	case ChangeInsert, ChangeDelete, ChangeFormat, ChangeComment:
		return true
	}
	return false
}

// LocalChange представляет одно записанное локальное изменение.
// Запись иммутабельна после создания: она попадает в очередь документа,
// а после подтверждения сервером переносится в архив (никогда не удаляется).
type LocalChange struct {
	Timestamp  time.Time  `json:"timestamp"`   // Timestamp wall-clock время записи изменения
	ChangeID   string     `json:"change_id"`   // ChangeID уникальный, лексикографически монотонный идентификатор
	DocumentID string     `json:"document_id"` // DocumentID идентификатор документа
	DeviceID   string     `json:"device_id"`   // DeviceID идентификатор устройства, записавшего изменение
	Type       ChangeType `json:"type"`        // Type тип изменения
	Content    string     `json:"content"`     // Content вставляемый текст / имя стиля / текст комментария
	Position   int        `json:"position"`    // Position позиция в содержимом на момент записи
	Span       int        `json:"span"`        // Span длина диапазона для delete/format (0 для insert/comment)
}

// FormatChangeID строит ChangeID из счетчика Лампорта и deviceID.
// Счетчик дополняется нулями до 16 знаков, поэтому лексикографический
// порядок ChangeID совпадает с порядком записи внутри устройства.
func FormatChangeID(seq int64, deviceID string) string {
	return fmt.Sprintf("%016d-%s", seq, deviceID)
}

// Before задает детерминированный порядок двух конкурирующих изменений:
// сначала по Timestamp, при равенстве - лексикографически по DeviceID.
func (c *LocalChange) Before(other *LocalChange) bool {
	if !c.Timestamp.Equal(other.Timestamp) {
		return c.Timestamp.Before(other.Timestamp)
	}
	return c.DeviceID < other.DeviceID
}

// Range возвращает затрагиваемый диапазон [start, end).
// Для insert и comment диапазон нулевой ширины в точке Position.
func (c *LocalChange) Range() (start, end int) {
	switch c.Type {
	case ChangeDelete, ChangeFormat:
		return c.Position, c.Position + c.Span
	case ChangeInsert, ChangeComment:
		return c.Position, c.Position
	}
	return c.Position, c.Position
}

// Overlaps сообщает, пересекаются ли диапазоны двух изменений.
// Две вставки пересекаются только при совпадении позиции.
func (c *LocalChange) Overlaps(other *LocalChange) bool {
	s1, e1 := c.Range()
	s2, e2 := other.Range()

	// Обе записи точечные - пересечение только при равных позициях
	if s1 == e1 && s2 == e2 {
		return s1 == s2
	}

	// Точка против диапазона
	if s1 == e1 {
		return s2 <= s1 && s1 < e2
	}
	if s2 == e2 {
		return s1 <= s2 && s2 < e1
	}

	// Диапазон против диапазона
	return s1 < e2 && s2 < e1
}

// Apply применяет изменение к содержимому документа.
// Позиции за пределами содержимого обрезаются до допустимых границ,
// поэтому применение всегда успешно и детерминированно.
// format и comment не меняют текст: они живут как аннотации в логе изменений.
func (c *LocalChange) Apply(content string) string {
	switch c.Type {
	case ChangeInsert:
		pos := clamp(c.Position, 0, len(content))
		return content[:pos] + c.Content + content[pos:]
	case ChangeDelete:
		start := clamp(c.Position, 0, len(content))
		end := clamp(c.Position+c.Span, start, len(content))
		return content[:start] + content[end:]
	case ChangeFormat, ChangeComment:
		return content
	}
	return content
}

// Clone создает копию изменения.
func (c *LocalChange) Clone() *LocalChange {
	clone := *c
	return &clone
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
