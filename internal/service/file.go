package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"filevault/internal/model"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

var (
	// ErrInvalidRequest marks bad input shape or value; callers must change
	// the input before retrying.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound covers both missing and not-owned records. Existence and
	// authorization are deliberately conflated so a non-owner cannot probe
	// for ids.
	ErrNotFound = errors.New("file not found")
	// ErrConflict marks a state-machine violation, e.g. confirming with a
	// different outcome than a prior confirm. Not retryable.
	ErrConflict = errors.New("file state conflict")
	// ErrIssuer marks a presigned-URL signing failure or unreachable object
	// store. Safe to retry with backoff.
	ErrIssuer = errors.New("storage issuer error")
)

// ReserveRequest carries the client-declared upload parameters.
type ReserveRequest struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// ReserveResult is returned from a successful reservation. The id and
// storage path are minted server-side; the caller never chooses either.
type ReserveResult struct {
	FileID      string `json:"file_id"`
	UploadURL   string `json:"upload_url"`
	StoragePath string `json:"storage_path"`
}

// ConfirmResult reports the effective status after a confirm.
type ConfirmResult struct {
	FileID string           `json:"file_id"`
	Status model.FileStatus `json:"status"`
}

// DownloadResult carries a presigned download URL and its lifetime in seconds.
type DownloadResult struct {
	FileID      string `json:"file_id"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int    `json:"expires_in"`
}

// FileListResult is the service-level DTO for paginated file listings.
type FileListResult struct {
	Files []model.FileRecord `json:"files"`
	Total int                `json:"total"`
	Skip  int                `json:"skip"`
	Limit int                `json:"limit"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// FileService coordinates the upload/download lifecycle: it owns the status
// state machine, while bytes move directly between clients and the object
// store via presigned URLs.
type FileService interface {
	// Reserve validates the declared name, size and MIME type, creates a
	// record in the uploading state, and returns a presigned upload URL
	// scoped to the record's storage path, type, and size.
	Reserve(ctx context.Context, ownerID string, req ReserveRequest) (*ReserveResult, error)

	// Confirm transitions a record from uploading to the given terminal
	// outcome via compare-and-swap. A repeat confirm with the same outcome
	// is a no-op success; a conflicting outcome returns ErrConflict.
	Confirm(ctx context.Context, ownerID, fileID string, outcome model.FileStatus) (*ConfirmResult, error)

	// RequestDownload returns a presigned download URL for an uploaded,
	// non-deleted record owned by the caller; ErrNotFound otherwise.
	RequestDownload(ctx context.Context, ownerID, fileID string) (*DownloadResult, error)

	// List returns the owner's non-deleted records, newest first.
	List(ctx context.Context, ownerID string, skip, limit int) (*FileListResult, error)

	// Delete soft-deletes the record regardless of its status. The storage
	// object is left for an out-of-band purge job.
	Delete(ctx context.Context, ownerID, fileID string) error
}

// fileService is a concrete implementation of FileService. It is stateless
// between calls; all durable state lives in the repository.
type fileService struct {
	repo          repository.FileRepository
	presigner     storage.Presigner
	maxSizeBytes  int64
	presignExpiry time.Duration
	now           func() time.Time
}

// NewFileService constructs a new FileService.
func NewFileService(repo repository.FileRepository, presigner storage.Presigner, maxSizeBytes int64, presignExpiry time.Duration) FileService {
	return &fileService{
		repo:          repo,
		presigner:     presigner,
		maxSizeBytes:  maxSizeBytes,
		presignExpiry: presignExpiry,
		now:           time.Now,
	}
}

func (s *fileService) Reserve(ctx context.Context, ownerID string, req ReserveRequest) (*ReserveResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidRequest)
	}
	if req.Name == "" || len(req.Name) > model.MaxDisplayNameLen {
		return nil, fmt.Errorf("%w: name must be between 1 and %d characters", ErrInvalidRequest, model.MaxDisplayNameLen)
	}
	if req.SizeBytes <= 0 {
		return nil, fmt.Errorf("%w: size_bytes must be positive", ErrInvalidRequest)
	}
	if req.SizeBytes > s.maxSizeBytes {
		return nil, fmt.Errorf("%w: size_bytes %d exceeds the maximum of %d", ErrInvalidRequest, req.SizeBytes, s.maxSizeBytes)
	}
	if !model.AllowedMimeType(req.MimeType) {
		return nil, fmt.Errorf("%w: unsupported mime type %q (allowed: %s)",
			ErrInvalidRequest, req.MimeType, strings.Join(model.AllowedMimeTypes(), ", "))
	}

	// The storage path is derived from the freshly minted id, never from
	// user input, so paths cannot be chosen or collided with by a caller.
	id := uuid.NewString()
	path := fmt.Sprintf("files/%s/%s%s", ownerID, id, model.ExtensionFor(req.MimeType))
	now := s.now().UTC()

	rec := &model.FileRecord{
		ID:          id,
		OwnerID:     ownerID,
		DisplayName: req.Name,
		StoragePath: path,
		SizeBytes:   req.SizeBytes,
		MimeType:    req.MimeType,
		Status:      model.StatusUploading,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A collision on a freshly minted uuid path should never happen,
			// but the contract surfaces it rather than pretending it cannot.
			return nil, fmt.Errorf("%w: storage path already reserved", ErrConflict)
		}
		return nil, fmt.Errorf("create file record: %w", err)
	}

	uploadURL, err := s.presigner.PresignPut(ctx, path, req.MimeType, req.SizeBytes, s.presignExpiry)
	if err != nil {
		// The reservation is unusable without its URL. Best-effort fail it
		// now; if this loses a race or errors, the reconciler sweeps the
		// row later.
		_, _ = s.repo.UpdateStatus(ctx, stored.ID, ownerID, model.StatusUploading, model.StatusFailed)
		return nil, fmt.Errorf("%w: presign upload: %v", ErrIssuer, err)
	}

	return &ReserveResult{
		FileID:      stored.ID,
		UploadURL:   uploadURL,
		StoragePath: stored.StoragePath,
	}, nil
}

func (s *fileService) Confirm(ctx context.Context, ownerID, fileID string, outcome model.FileStatus) (*ConfirmResult, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", ErrInvalidRequest)
	}
	if !outcome.Valid() || !outcome.Terminal() {
		return nil, fmt.Errorf("%w: outcome must be %q or %q", ErrInvalidRequest, model.StatusUploaded, model.StatusFailed)
	}

	swapped, err := s.repo.UpdateStatus(ctx, fileID, ownerID, model.StatusUploading, outcome)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if swapped {
		return &ConfirmResult{FileID: fileID, Status: outcome}, nil
	}

	// The swap lost: the record is missing, deleted, not owned, or already
	// in a terminal state. Re-read to tell a duplicate confirm apart from a
	// conflicting one.
	rec, err := s.repo.FindByID(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.Status == outcome {
		// Duplicate confirm with the same outcome, e.g. a client retry
		// after a lost response. Idempotent success.
		return &ConfirmResult{FileID: fileID, Status: rec.Status}, nil
	}
	return nil, fmt.Errorf("%w: file is %q, cannot confirm as %q", ErrConflict, rec.Status, outcome)
}

func (s *fileService) RequestDownload(ctx context.Context, ownerID, fileID string) (*DownloadResult, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", ErrInvalidRequest)
	}

	rec, err := s.repo.FindByID(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Only trusted uploads are downloadable. Anything else looks exactly
	// like a missing file to the caller.
	if rec.Status != model.StatusUploaded {
		return nil, ErrNotFound
	}

	url, err := s.presigner.PresignGet(ctx, rec.StoragePath, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign download: %v", ErrIssuer, err)
	}

	return &DownloadResult{
		FileID:      rec.ID,
		DownloadURL: url,
		ExpiresIn:   int(s.presignExpiry.Seconds()),
	}, nil
}

func (s *fileService) List(ctx context.Context, ownerID string, skip, limit int) (*FileListResult, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must not be negative", ErrInvalidRequest)
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	res, err := s.repo.List(ctx, ownerID, repository.PageQuery{Skip: skip, Limit: limit})
	if err != nil {
		return nil, err
	}
	return &FileListResult{Files: res.Items, Total: res.Total, Skip: skip, Limit: limit}, nil
}

func (s *fileService) Delete(ctx context.Context, ownerID, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: file id is required", ErrInvalidRequest)
	}
	// Soft delete only: the record is hidden from every listing and lookup,
	// and the storage object is reclaimed by a separate purge job. Allowed
	// from any status so stuck or failed uploads can be cleared.
	deleted, err := s.repo.SoftDelete(ctx, fileID, ownerID)
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
