package api

import "time"

// Document представляет документ в обмене клиент-сервер
type Document struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Version   int64     `json:"version"`
}

// Change представляет одно изменение документа в обмене клиент-сервер
type Change struct {
	Timestamp  time.Time `json:"timestamp"`
	ChangeID   string    `json:"change_id"`
	DocumentID string    `json:"document_id"`
	DeviceID   string    `json:"device_id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Position   int       `json:"position"`
	Span       int       `json:"span"`
}

// FetchDocumentResponse представляет ответ сервера на запрос документа.
// Changes содержит изменения, применённые сервером после версии since -
// клиент использует их для обнаружения пересечений при мерже.
type FetchDocumentResponse struct {
	Document Document `json:"document"`
	Changes  []Change `json:"changes"`
}

// PushRequest представляет запрос клиента на отправку смерженных изменений
type PushRequest struct {
	DeviceID      string   `json:"device_id"`
	MergedContent string   `json:"merged_content"`
	Changes       []Change `json:"changes"`
	BaseVersion   int64    `json:"base_version"`
}

// PushResponse представляет ответ сервера на push.
// Дубликаты по change_id подтверждаются без повторного применения,
// поэтому повторная отправка той же очереди безопасна.
type PushResponse struct {
	Accepted         bool  `json:"accepted"`
	NewServerVersion int64 `json:"new_server_version"`
	Applied          int   `json:"applied"`
	Duplicates       int   `json:"duplicates"`
}

// ErrorResponse представляет ответ сервера с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
