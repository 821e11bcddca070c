package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/docsync/pkg/api"
)

func TestClient_FetchDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/documents/notes", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("since"))
		assert.Equal(t, "laptop", r.Header.Get("X-Device-ID"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.FetchDocumentResponse{
			Document: api.Document{ID: "notes", Content: "Hello", Version: 7},
			Changes: []api.Change{
				{ChangeID: "0000000000000001-phone", DeviceID: "phone", Type: "insert"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "laptop", 5*time.Second)

	resp, err := client.FetchDocument(context.Background(), "notes", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Document.Version)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "phone", resp.Changes[0].DeviceID)
}

func TestClient_PushChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/documents/notes/changes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "laptop", r.Header.Get("X-Device-ID"))

		var req api.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "laptop", req.DeviceID)
		assert.Equal(t, int64(3), req.BaseVersion)
		assert.Equal(t, "merged", req.MergedContent)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.PushResponse{
			Accepted:         true,
			NewServerVersion: 4,
			Applied:          1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "laptop", 5*time.Second)

	resp, err := client.PushChanges(context.Background(), "notes", api.PushRequest{
		DeviceID:      "laptop",
		BaseVersion:   3,
		MergedContent: "merged",
		Changes: []api.Change{
			{ChangeID: "0000000000000001-laptop", DeviceID: "laptop", Type: "insert", Content: "merged"},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)
	assert.Equal(t, int64(4), resp.NewServerVersion)
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "not_found",
			statusCode: http.StatusNotFound,
			body:       `{"error":"not_found","message":"document not found"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDocumentNotFound)
			},
		},
		{
			name:       "version_conflict_is_retryable",
			statusCode: http.StatusConflict,
			body:       `{"error":"version_conflict","message":"base 1, current 3"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNetworkError(err))
				assert.False(t, IsServerRejected(err))
			},
		},
		{
			name:       "server_error_is_retryable",
			statusCode: http.StatusInternalServerError,
			body:       `{"error":"internal_error","message":"internal server error"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNetworkError(err))
			},
		},
		{
			name:       "validation_rejection",
			statusCode: http.StatusUnprocessableEntity,
			body:       `{"error":"invalid_change","message":"unknown change type"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, IsServerRejected(err))
				assert.Contains(t, err.Error(), "unknown change type")
			},
		},
		{
			name:       "plain_text_error_body",
			statusCode: http.StatusBadRequest,
			body:       "bad request",
			check: func(t *testing.T, err error) {
				assert.True(t, IsServerRejected(err))
				assert.Contains(t, err.Error(), "bad request")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "laptop", 5*time.Second)

			_, err := client.FetchDocument(context.Background(), "notes", 0)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, "laptop", time.Second)

	_, err := client.FetchDocument(context.Background(), "notes", 0)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err), "connection refused must map to a retryable network error")
}

func TestClient_Timeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer func() {
		close(blocked)
		srv.Close()
	}()

	client := NewClient(srv.URL, "laptop", 50*time.Millisecond)

	_, err := client.FetchDocument(context.Background(), "notes", 0)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err), "timeout must map to a retryable network error")
}
