package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/docsync/internal/models"
	"github.com/iudanet/docsync/internal/server/storage"
	"github.com/iudanet/docsync/internal/validation"
	"github.com/iudanet/docsync/pkg/api"
)

//go:generate moq -out document_mock.go . DocumentStorage

// DocumentStorage определяет интерфейс хранилища документов для handlers
type DocumentStorage interface {
	GetDocument(ctx context.Context, id string) (*api.Document, error)
	GetChangesSince(ctx context.Context, id string, since int64) ([]api.Change, error)
	ApplyPush(ctx context.Context, id, deviceID string, baseVersion int64, mergedContent string, changes []api.Change) (*storage.PushOutcome, error)
}

// DocumentHandler handles document fetch and push requests
type DocumentHandler struct {
	logger  *slog.Logger
	storage DocumentStorage
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(logger *slog.Logger, storage DocumentStorage) *DocumentHandler {
	return &DocumentHandler{
		logger:  logger,
		storage: storage,
	}
}

// HandleFetch обрабатывает GET /api/v1/documents/{id}?since=version
// Возвращает документ и изменения, применённые после версии since -
// клиент использует их для обнаружения пересечений при слиянии.
func (h *DocumentHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if err := validation.ValidateDocumentID(id); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_document_id", err.Error())
		return
	}

	// Парсим параметр since
	var since int64
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		var err error
		since, err = strconv.ParseInt(sinceStr, 10, 64)
		if err != nil {
			h.logger.Warn("invalid since parameter", "since", sinceStr, "error", err)
			h.writeError(w, http.StatusBadRequest, "invalid_since", "since must be an integer")
			return
		}
	}

	doc, err := h.storage.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			h.writeError(w, http.StatusNotFound, "document_not_found",
				fmt.Sprintf("document %s does not exist", id))
			return
		}
		h.logger.Error("failed to get document", "error", err, "document_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	changes, err := h.storage.GetChangesSince(ctx, id, since)
	if err != nil {
		h.logger.Error("failed to get changes", "error", err, "document_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	response := api.FetchDocumentResponse{
		Document: *doc,
		Changes:  changes,
	}

	h.writeJSON(w, http.StatusOK, response)

	h.logger.Info("document fetched",
		"document_id", id,
		"version", doc.Version,
		"since", since,
		"changes", len(changes))
}

// HandlePush обрабатывает POST /api/v1/documents/{id}/changes
// Применение идемпотентно по change_id: повторный push после потерянного
// подтверждения возвращает accepted без повторного применения.
func (h *DocumentHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	if err := validation.ValidateDocumentID(id); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_document_id", err.Error())
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode push request", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if req.DeviceID == "" {
		h.writeError(w, http.StatusBadRequest, "missing_device_id", "device_id is required")
		return
	}

	// Валидация каждого изменения до применения: отвергнутые изменения
	// возвращаются клиенту как ошибка валидации, не как сетевой сбой
	for i := range req.Changes {
		if err := h.validateChange(id, &req.Changes[i]); err != nil {
			h.logger.Warn("push rejected",
				"document_id", id,
				"change_id", req.Changes[i].ChangeID,
				"error", err)
			h.writeError(w, http.StatusUnprocessableEntity, "invalid_change",
				fmt.Sprintf("change %s: %v", req.Changes[i].ChangeID, err))
			return
		}
	}

	outcome, err := h.storage.ApplyPush(ctx, id, req.DeviceID, req.BaseVersion, req.MergedContent, req.Changes)
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			h.writeError(w, http.StatusConflict, "version_conflict", err.Error())
			return
		}
		h.logger.Error("failed to apply push", "error", err, "document_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	response := api.PushResponse{
		Accepted:         true,
		NewServerVersion: outcome.NewVersion,
		Applied:          outcome.Applied,
		Duplicates:       outcome.Duplicates,
	}

	h.writeJSON(w, http.StatusOK, response)

	h.logger.Info("push applied",
		"document_id", id,
		"device_id", req.DeviceID,
		"applied", outcome.Applied,
		"duplicates", outcome.Duplicates,
		"new_version", outcome.NewVersion)
}

// validateChange проверяет одно изменение из push запроса
func (h *DocumentHandler) validateChange(documentID string, change *api.Change) error {
	if change.ChangeID == "" {
		return fmt.Errorf("change_id is required")
	}
	if change.DocumentID != documentID {
		return fmt.Errorf("document_id mismatch: expected %s, got %s", documentID, change.DocumentID)
	}
	if change.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}

	return validation.ValidateChange(validation.ChangeInput{
		Type:     models.ChangeType(change.Type),
		Position: change.Position,
		Span:     change.Span,
		Content:  change.Content,
	})
}

// writeJSON кодирует успешный JSON ответ
func (h *DocumentHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError кодирует JSON ответ с ошибкой
func (h *DocumentHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := api.ErrorResponse{Error: code, Message: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
