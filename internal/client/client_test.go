package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"filevault/internal/model"
	"filevault/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken  = "test-token"
	testFileID = "7b1e1ec0-9a0f-4c3e-8f2a-0d8b6a3e5f11"
)

// fakeStore is a stand-in object store that records the presigned PUT it
// receives and serves a fixed body on GET.
type fakeStore struct {
	mu          sync.Mutex
	putCalled   bool
	contentType string
	contentLen  int64
	body        []byte
	putStatus   int
	getBody     string
}

func (f *fakeStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			f.putCalled = true
			f.contentType = r.Header.Get("Content-Type")
			f.contentLen = r.ContentLength
			f.body, _ = io.ReadAll(r.Body)
			status := f.putStatus
			if status == 0 {
				status = http.StatusOK
			}
			w.WriteHeader(status)
		case http.MethodGet:
			io.WriteString(w, f.getBody)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// fakeAPI is a minimal FileVault server: it hands out URLs pointing at the
// fake store and records every confirm it receives.
type fakeAPI struct {
	mu         sync.Mutex
	storeURL   string
	confirms   []model.FileStatus
	reserveErr int
	confirmErr int
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/files/upload-url", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		if f.reserveErr != 0 {
			writeErrBody(w, f.reserveErr, "INVALID_REQUEST", "bad reservation")
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.ReserveResult{
			FileID:      testFileID,
			UploadURL:   f.storeURL + "/put",
			StoragePath: "files/owner/" + testFileID + ".txt",
		})
	})
	mux.HandleFunc("PATCH /api/v1/files/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status model.FileStatus `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.confirms = append(f.confirms, body.Status)
		f.mu.Unlock()
		if f.confirmErr != 0 {
			writeErrBody(w, f.confirmErr, "CONFLICT", "file state conflict")
			return
		}
		json.NewEncoder(w).Encode(service.ConfirmResult{FileID: r.PathValue("id"), Status: body.Status})
	})
	mux.HandleFunc("GET /api/v1/files/{id}/download-url", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.DownloadResult{
			FileID:      r.PathValue("id"),
			DownloadURL: f.storeURL + "/get",
			ExpiresIn:   3600,
		})
	})
	mux.HandleFunc("GET /api/v1/files", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.FileListResult{
			Files: []model.FileRecord{{ID: testFileID}},
			Total: 1, Limit: 20,
		})
	})
	mux.HandleFunc("DELETE /api/v1/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeAPI) confirmed() []model.FileStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.FileStatus(nil), f.confirms...)
}

func writeErrBody(w http.ResponseWriter, status int, code, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"request_id": "req-1",
		"error":      map[string]string{"code": code, "message": msg},
	})
}

func newTestClient(t *testing.T, api *fakeAPI, store *fakeStore) *Client {
	t.Helper()
	storeSrv := httptest.NewServer(store.handler())
	t.Cleanup(storeSrv.Close)
	api.storeURL = storeSrv.URL

	apiSrv := httptest.NewServer(api.handler(t))
	t.Cleanup(apiSrv.Close)

	return New(apiSrv.URL, testToken, WithHTTPClient(apiSrv.Client()))
}

func TestUpload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &fakeAPI{}
		store := &fakeStore{}
		c := newTestClient(t, api, store)

		content := "hello, vault"
		res, err := c.Upload(context.Background(), "notes.txt", "text/plain",
			int64(len(content)), strings.NewReader(content))

		require.NoError(t, err)
		assert.Equal(t, testFileID, res.FileID)
		assert.Equal(t, model.StatusUploaded, res.Status)

		assert.True(t, store.putCalled)
		assert.Equal(t, "text/plain", store.contentType)
		assert.Equal(t, int64(len(content)), store.contentLen)
		assert.Equal(t, content, string(store.body))
		assert.Equal(t, []model.FileStatus{model.StatusUploaded}, api.confirmed())
	})

	t.Run("reservation rejected", func(t *testing.T) {
		api := &fakeAPI{reserveErr: http.StatusBadRequest}
		c := newTestClient(t, api, &fakeStore{})

		_, err := c.Upload(context.Background(), "notes.txt", "text/plain", 5, strings.NewReader("hello"))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "INVALID_REQUEST", apiErr.Code)
		assert.Empty(t, api.confirmed())
	})

	t.Run("transfer failure reports failed", func(t *testing.T) {
		api := &fakeAPI{}
		store := &fakeStore{putStatus: http.StatusForbidden}
		c := newTestClient(t, api, store)

		_, err := c.Upload(context.Background(), "notes.txt", "text/plain", 5, strings.NewReader("hello"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "transfer")
		assert.Equal(t, []model.FileStatus{model.StatusFailed}, api.confirmed())
	})

	t.Run("conflicting confirm surfaces without failed report", func(t *testing.T) {
		api := &fakeAPI{confirmErr: http.StatusConflict}
		c := newTestClient(t, api, &fakeStore{})

		_, err := c.Upload(context.Background(), "notes.txt", "text/plain", 5, strings.NewReader("hello"))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		// The server already holds a terminal state; no failed report follows.
		assert.Equal(t, []model.FileStatus{model.StatusUploaded}, api.confirmed())
	})

	t.Run("transfer timeout is bounded", func(t *testing.T) {
		api := &fakeAPI{}
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer slow.Close()
		api.storeURL = slow.URL

		apiSrv := httptest.NewServer(api.handler(t))
		defer apiSrv.Close()

		c := New(apiSrv.URL, testToken, WithTransferTimeout(50*time.Millisecond))

		start := time.Now()
		_, err := c.Upload(context.Background(), "notes.txt", "text/plain", 5, strings.NewReader("hello"))

		require.Error(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, []model.FileStatus{model.StatusFailed}, api.confirmed())
	})
}

func TestDownload(t *testing.T) {
	api := &fakeAPI{}
	store := &fakeStore{getBody: "stored bytes"}
	c := newTestClient(t, api, store)

	rc, err := c.Download(context.Background(), testFileID)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "stored bytes", string(got))
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrBody(w, http.StatusNotFound, "NOT_FOUND", "file not found")
	}))
	defer srv.Close()

	c := New(srv.URL, testToken)

	_, err := c.Download(context.Background(), testFileID)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestList(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, &fakeStore{})

	res, err := c.List(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.Equal(t, 1, res.Total)
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, &fakeStore{})

	require.NoError(t, c.Delete(context.Background(), testFileID))
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 409, Code: "CONFLICT", Message: "file state conflict"}
	assert.Equal(t, "filevault api: 409 CONFLICT: file state conflict", err.Error())
}

func TestUpload_BodyShorterThanDeclared(t *testing.T) {
	// The declared size is part of the reservation and the URL signature, so
	// a body that does not match it must fail the transfer, not silently
	// upload the wrong length.
	api := &fakeAPI{}
	c := newTestClient(t, api, &fakeStore{})

	_, err := c.Upload(context.Background(), "notes.txt", "text/plain", 5, strings.NewReader("abc"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer")
	assert.Equal(t, []model.FileStatus{model.StatusFailed}, api.confirmed())
}
