// Package client is a Go driver for the FileVault HTTP API. It runs the full
// upload saga on behalf of a caller: reserve a slot, PUT the bytes straight to
// the object store, then confirm the outcome. The service never sees the
// bytes; only this driver and the store do.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"filevault/internal/model"
	"filevault/internal/service"
)

const defaultTransferTimeout = 5 * time.Minute

// APIError is a non-2xx response from the FileVault API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("filevault api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to a FileVault server with a fixed bearer token.
type Client struct {
	baseURL         string
	token           string
	httpClient      *http.Client
	transferTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client for both API calls and
// byte transfers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransferTimeout bounds a single PUT to the object store. Must exceed
// the worst-case transfer time; the server's reconciler cleans up anything
// abandoned past its own, longer, staleness window.
func WithTransferTimeout(d time.Duration) Option {
	return func(c *Client) { c.transferTimeout = d }
}

// New returns a Client for the API at baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		transferTimeout: defaultTransferTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload runs the full saga: reserve, transfer, confirm. On a transfer or
// confirm-transport failure it reports the reservation as failed with a
// best-effort confirm and returns the original error; the record never sticks
// in the uploading state unless that confirm is lost too, in which case the
// server sweeps it later.
//
// body must hold exactly size bytes: the upload URL is signed for the
// declared Content-Length and the store rejects anything else.
func (c *Client) Upload(ctx context.Context, name, mimeType string, size int64, body io.Reader) (*service.ConfirmResult, error) {
	reserved, err := c.reserve(ctx, service.ReserveRequest{
		Name:      name,
		SizeBytes: size,
		MimeType:  mimeType,
	})
	if err != nil {
		return nil, err
	}

	if err := c.transfer(ctx, reserved.UploadURL, mimeType, size, body); err != nil {
		c.abandon(reserved.FileID)
		return nil, fmt.Errorf("transfer: %w", err)
	}

	res, err := c.Confirm(ctx, reserved.FileID, model.StatusUploaded)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			// Transport-level failure: the confirm may or may not have
			// landed. Reporting failed here is safe either way, the server
			// treats a repeat outcome as a no-op and a conflicting one as
			// a rejection of this late report.
			c.abandon(reserved.FileID)
		}
		return nil, fmt.Errorf("confirm: %w", err)
	}
	return res, nil
}

// Confirm reports a transfer outcome for a reserved file.
func (c *Client) Confirm(ctx context.Context, fileID string, outcome model.FileStatus) (*service.ConfirmResult, error) {
	payload, err := json.Marshal(map[string]model.FileStatus{"status": outcome})
	if err != nil {
		return nil, err
	}
	var res service.ConfirmResult
	if err := c.apiCall(ctx, http.MethodPatch, "/api/v1/files/"+fileID+"/confirm", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Download fetches the bytes of an uploaded file. The caller owns the
// returned reader and must close it.
func (c *Client) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	var res service.DownloadResult
	if err := c.apiCall(ctx, http.MethodGet, "/api/v1/files/"+fileID+"/download-url", nil, &res); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, res.DownloadURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch object: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch object: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// List returns a page of the caller's files.
func (c *Client) List(ctx context.Context, skip, limit int) (*service.FileListResult, error) {
	path := fmt.Sprintf("/api/v1/files?skip=%d&limit=%d", skip, limit)
	var res service.FileListResult
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete soft-deletes a file.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	return c.apiCall(ctx, http.MethodDelete, "/api/v1/files/"+fileID, nil, nil)
}

func (c *Client) reserve(ctx context.Context, req service.ReserveRequest) (*service.ReserveResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var res service.ReserveResult
	if err := c.apiCall(ctx, http.MethodPost, "/api/v1/files/upload-url", payload, &res); err != nil {
		return nil, fmt.Errorf("reserve: %w", err)
	}
	return &res, nil
}

// transfer PUTs the bytes to the presigned URL under its own deadline so a
// stalled upload cannot hang the caller forever.
func (c *Client) transfer(ctx context.Context, uploadURL, mimeType string, size int64, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, c.transferTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return err
	}
	// Both headers are part of the URL's signature.
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = size

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("object store returned status %d", resp.StatusCode)
	}
	return nil
}

// abandon reports a failed outcome on a fresh, short-lived context. The
// original context may already be cancelled, and this report must still get
// out. Errors are swallowed: the server's reconciler is the backstop.
func (c *Client) abandon(fileID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = c.Confirm(ctx, fileID, model.StatusFailed)
}

func (c *Client) apiCall(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	if apiErr.Code == "" {
		apiErr.Code = strconv.Itoa(resp.StatusCode)
	}
	return apiErr
}
