package models

import "time"

// ResolutionStrategy стратегия разрешения конфликта.
type ResolutionStrategy string

const (
	// StrategyMerge детерминированное слияние по правилам движка
	StrategyMerge ResolutionStrategy = "merge"
	// StrategyOverwrite локальная копия замещена серверной (fast-forward при пустой очереди)
	StrategyOverwrite ResolutionStrategy = "overwrite"
	// StrategyManual структурный конфликт, требуется решение человека
	StrategyManual ResolutionStrategy = "manual"
)

// ConflictResolution представляет записанный результат разрешения конфликта.
// Записи попадают в append-only журнал для аудита и никогда не переписываются.
type ConflictResolution struct {
	ResolvedAt      time.Time          `json:"resolved_at"`                // ResolvedAt время принятия решения
	ID              string             `json:"id"`                         // ID уникальный идентификатор записи (UUID)
	DocumentID      string             `json:"document_id"`                // DocumentID документ, к которому относится конфликт
	Strategy        ResolutionStrategy `json:"strategy"`                   // Strategy применённая стратегия
	ResolvedBy      string             `json:"resolved_by"`                // ResolvedBy deviceID движка или "user" для ручных решений
	LocalCandidate  string             `json:"local_candidate,omitempty"`  // LocalCandidate локальный вариант содержимого (только manual)
	ServerCandidate string             `json:"server_candidate,omitempty"` // ServerCandidate серверный вариант содержимого (только manual)
	OriginalChange  *LocalChange       `json:"original_change,omitempty"`  // OriginalChange изменение, попавшее в конфликт
	ResolvedChange  *LocalChange       `json:"resolved_change,omitempty"`  // ResolvedChange итоговое изменение (nil = изменение отброшено)
}
