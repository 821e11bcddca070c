package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iudanet/docsync/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI определяет контракт Server Document API для движка синхронизации.
// Сервер обязан применять изменения идемпотентно по change_id.
type ClientAPI interface {
	// FetchDocument запрашивает документ и изменения сервера после версии since
	// Возвращает ErrDocumentNotFound, если сервер не знает документ
	FetchDocument(ctx context.Context, id string, since int64) (*api.FetchDocumentResponse, error)

	// PushChanges отправляет смерженное содержимое и очередь изменений
	PushChanges(ctx context.Context, id string, req api.PushRequest) (*api.PushResponse, error)
}

// Client представляет HTTP клиент для взаимодействия с сервером документов
type Client struct {
	httpClient *http.Client
	baseURL    string
	deviceID   string
}

// NewClient создает новый API клиент.
// timeout ограничивает каждый сетевой вызов: истечение трактуется
// координатором как сбой, а не как неизвестный успех.
func NewClient(baseURL, deviceID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchDocument запрашивает документ и изменения сервера после версии since
func (c *Client) FetchDocument(ctx context.Context, id string, since int64) (*api.FetchDocumentResponse, error) {
	var resp api.FetchDocumentResponse
	path := fmt.Sprintf("/api/v1/documents/%s?since=%d", id, since)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PushChanges отправляет смерженное содержимое и очередь изменений
func (c *Client) PushChanges(ctx context.Context, id string, req api.PushRequest) (*api.PushResponse, error) {
	var resp api.PushResponse
	path := fmt.Sprintf("/api/v1/documents/%s/changes", id)
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос и раскладывает сбои по таксономии движка:
// транспортные ошибки и 5xx/409 - NetworkError (retryable),
// 404 - ErrDocumentNotFound, прочие 4xx - ServerRejectedError.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Device-ID", c.deviceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Таймаут или обрыв соединения - retryable
		return &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// decodeError переводит HTTP статус в ошибку таксономии движка
func (c *Client) decodeError(statusCode int, body []byte) error {
	message := string(body)
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	switch {
	case statusCode == http.StatusNotFound:
		return ErrDocumentNotFound
	case statusCode == http.StatusConflict:
		// Версия ушла вперед между pull и push - повторный цикл
		// подтянет свежие изменения
		return &NetworkError{Err: fmt.Errorf("version conflict: %s", message)}
	case statusCode >= 500:
		return &NetworkError{Err: fmt.Errorf("server error (%d): %s", statusCode, message)}
	default:
		return &ServerRejectedError{StatusCode: statusCode, Message: message}
	}
}
