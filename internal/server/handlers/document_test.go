package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/docsync/internal/server/storage"
	"github.com/iudanet/docsync/pkg/api"
)

func newFetchRequest(id, since string) *http.Request {
	target := "/api/v1/documents/" + id
	if since != "" {
		target += "?since=" + since
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.SetPathValue("id", id)
	return req
}

func newPushRequest(t *testing.T, id string, body api.PushRequest) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+id+"/changes", bytes.NewReader(payload))
	req.SetPathValue("id", id)
	return req
}

func TestDocumentHandler_HandleFetch(t *testing.T) {
	logger := setupTestLogger()

	t.Run("returns document with changes since version", func(t *testing.T) {
		doc := &api.Document{
			ID:        "report-2026",
			Content:   "quarterly numbers",
			Version:   7,
			UpdatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		}
		serverChanges := []api.Change{
			{ChangeID: "0000000000000003-dev-b", DocumentID: "report-2026", DeviceID: "dev-b", Type: "insert", Content: "x", Position: 4},
		}

		mockStorage := &DocumentStorageMock{
			GetDocumentFunc: func(ctx context.Context, id string) (*api.Document, error) {
				assert.Equal(t, "report-2026", id)
				return doc, nil
			},
			GetChangesSinceFunc: func(ctx context.Context, id string, since int64) ([]api.Change, error) {
				assert.Equal(t, int64(5), since)
				return serverChanges, nil
			},
		}

		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandleFetch(w, newFetchRequest("report-2026", "5"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp api.FetchDocumentResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "report-2026", resp.Document.ID)
		assert.Equal(t, int64(7), resp.Document.Version)
		require.Len(t, resp.Changes, 1)
		assert.Equal(t, "0000000000000003-dev-b", resp.Changes[0].ChangeID)
	})

	t.Run("returns 404 for unknown document", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{
			GetDocumentFunc: func(ctx context.Context, id string) (*api.Document, error) {
				return nil, storage.ErrDocumentNotFound
			},
		}

		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandleFetch(w, newFetchRequest("missing", ""))

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "document_not_found", resp.Error)
	})

	t.Run("rejects malformed document id", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{}
		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandleFetch(w, newFetchRequest("bad%20id!", ""))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, mockStorage.GetDocumentCalls(), "storage should not be queried")
	})

	t.Run("rejects non-integer since", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{}
		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandleFetch(w, newFetchRequest("report-2026", "abc"))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "invalid_since", resp.Error)
	})
}

func TestDocumentHandler_HandlePush(t *testing.T) {
	logger := setupTestLogger()

	validPush := func() api.PushRequest {
		return api.PushRequest{
			DeviceID:      "dev-a",
			MergedContent: "hello world",
			BaseVersion:   3,
			Changes: []api.Change{
				{
					ChangeID:   "0000000000000001-dev-a",
					DocumentID: "notes",
					DeviceID:   "dev-a",
					Type:       "insert",
					Content:    "world",
					Position:   6,
					Timestamp:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
				},
			},
		}
	}

	t.Run("applies push and returns new version", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{
			ApplyPushFunc: func(ctx context.Context, id, deviceID string, baseVersion int64, mergedContent string, changes []api.Change) (*storage.PushOutcome, error) {
				assert.Equal(t, "notes", id)
				assert.Equal(t, "dev-a", deviceID)
				assert.Equal(t, int64(3), baseVersion)
				assert.Equal(t, "hello world", mergedContent)
				require.Len(t, changes, 1)
				return &storage.PushOutcome{NewVersion: 4, Applied: 1, Duplicates: 0}, nil
			},
		}

		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandlePush(w, newPushRequest(t, "notes", validPush()))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.PushResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Accepted)
		assert.Equal(t, int64(4), resp.NewServerVersion)
		assert.Equal(t, 1, resp.Applied)
		assert.Equal(t, 0, resp.Duplicates)
	})

	t.Run("duplicate push is acknowledged", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{
			ApplyPushFunc: func(ctx context.Context, id, deviceID string, baseVersion int64, mergedContent string, changes []api.Change) (*storage.PushOutcome, error) {
				return &storage.PushOutcome{NewVersion: 4, Applied: 0, Duplicates: 1}, nil
			},
		}

		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandlePush(w, newPushRequest(t, "notes", validPush()))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.PushResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Accepted)
		assert.Equal(t, 0, resp.Applied)
		assert.Equal(t, 1, resp.Duplicates)
	})

	t.Run("stale base version returns 409", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{
			ApplyPushFunc: func(ctx context.Context, id, deviceID string, baseVersion int64, mergedContent string, changes []api.Change) (*storage.PushOutcome, error) {
				return nil, storage.ErrVersionConflict
			},
		}

		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandlePush(w, newPushRequest(t, "notes", validPush()))

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "version_conflict", resp.Error)
	})

	t.Run("invalid change returns 422 without touching storage", func(t *testing.T) {
		push := validPush()
		push.Changes[0].Type = "teleport"

		mockStorage := &DocumentStorageMock{}
		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandlePush(w, newPushRequest(t, "notes", push))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, mockStorage.ApplyPushCalls(), "invalid push must not reach storage")
	})

	t.Run("change for another document is rejected", func(t *testing.T) {
		push := validPush()
		push.Changes[0].DocumentID = "other-doc"

		mockStorage := &DocumentStorageMock{}
		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandlePush(w, newPushRequest(t, "notes", push))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, mockStorage.ApplyPushCalls())
	})

	t.Run("missing device id returns 400", func(t *testing.T) {
		push := validPush()
		push.DeviceID = ""

		mockStorage := &DocumentStorageMock{}
		handler := NewDocumentHandler(logger, mockStorage)
		w := httptest.NewRecorder()

		handler.HandlePush(w, newPushRequest(t, "notes", push))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp api.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "missing_device_id", resp.Error)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		mockStorage := &DocumentStorageMock{}
		handler := NewDocumentHandler(logger, mockStorage)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/notes/changes", bytes.NewReader([]byte("{broken")))
		req.SetPathValue("id", "notes")
		w := httptest.NewRecorder()

		handler.HandlePush(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
