package api

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound сервер не знает документ с таким ID.
// Координатор трактует это как пустой документ версии 0.
var ErrDocumentNotFound = errors.New("document not found on server")

// NetworkError обертка для сетевых сбоев и таймаутов.
// Ошибка retryable: очередь изменений сохраняется, координатор
// повторит попытку с backoff.
type NetworkError struct {
	Err error
}

// Error implements error
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

// Unwrap returns the underlying error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerRejectedError сервер отверг изменения валидацией.
// Ошибка НЕ retryable молча: она всплывает в UI, очередь сохраняется
// для ручного вмешательства.
type ServerRejectedError struct {
	Message    string
	StatusCode int
}

// Error implements error
func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Message)
}

// IsNetworkError reports whether the error is a retryable network failure
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServerRejected reports whether the server rejected the request
func IsServerRejected(err error) bool {
	var re *ServerRejectedError
	return errors.As(err, &re)
}
