package validation

import (
	"fmt"
	"regexp"

	"github.com/iudanet/docsync/internal/models"
)

// DocumentIDPattern определяет допустимый формат идентификатора документа
// Только латинские буквы (a-z, A-Z), цифры (0-9), дефис (-), нижнее подчеркивание (_)
// Длина: 1-64 символа
var DocumentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

const (
	// MaxDocumentIDLen максимальная длина идентификатора документа
	MaxDocumentIDLen = 64
	// MaxContentLen максимальная длина содержимого одного изменения
	MaxContentLen = 64 * 1024
)

// ValidateDocumentID проверяет, что идентификатор документа соответствует формату
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}

	if len(id) > MaxDocumentIDLen {
		return fmt.Errorf("document id must not exceed %d characters", MaxDocumentIDLen)
	}

	if !DocumentIDPattern.MatchString(id) {
		return fmt.Errorf("document id can only contain letters (a-z, A-Z), numbers (0-9), hyphens (-), and underscores (_)")
	}

	return nil
}

// ChangeInput входные данные одного изменения от UI-коллаборатора
type ChangeInput struct {
	Type     models.ChangeType
	Content  string
	Position int
	Span     int
}

// ValidateChange проверяет входные данные изменения до записи в очередь.
// Недопустимый тип, отрицательная позиция и пустой диапазон для delete/format
// отклоняются сразу: в очередь попадают только корректные записи.
func ValidateChange(in ChangeInput) error {
	if !models.ValidChangeType(in.Type) {
		return fmt.Errorf("unknown change type %q", in.Type)
	}

	if in.Position < 0 {
		return fmt.Errorf("position must be non-negative, got %d", in.Position)
	}

	if len(in.Content) > MaxContentLen {
		return fmt.Errorf("content must not exceed %d bytes, got %d", MaxContentLen, len(in.Content))
	}

	switch in.Type {
	case models.ChangeInsert:
		if in.Content == "" {
			return fmt.Errorf("insert requires non-empty content")
		}
		if in.Span != 0 {
			return fmt.Errorf("insert must not carry a span, got %d", in.Span)
		}
	case models.ChangeDelete:
		if in.Span <= 0 {
			return fmt.Errorf("delete requires a positive span, got %d", in.Span)
		}
		if in.Content != "" {
			return fmt.Errorf("delete must not carry content")
		}
	case models.ChangeFormat:
		if in.Span <= 0 {
			return fmt.Errorf("format requires a positive span, got %d", in.Span)
		}
		if in.Content == "" {
			return fmt.Errorf("format requires a style name in content")
		}
	case models.ChangeComment:
		if in.Content == "" {
			return fmt.Errorf("comment requires non-empty content")
		}
	}

	return nil
}
