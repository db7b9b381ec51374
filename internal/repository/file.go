package repository

import (
	"context"
	"errors"
	"time"

	"filevault/internal/model"
)

// ErrDuplicate is returned by Create when a unique constraint is violated,
// i.e. an id or storage_path collision.
var ErrDuplicate = errors.New("duplicate record")

// FileRepository defines data access for file records using SQL queries only.
// No business logic here — strictly persistence operations.
//
// Every read and write is scoped by (id, owner_id) in a single predicate, so a
// lookup by the wrong owner is indistinguishable from a missing row.
type FileRepository interface {
	// Create inserts a new file record. The caller provides all fields
	// including ID and timestamps. A storage_path collision surfaces as
	// ErrDuplicate.
	Create(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error)

	// FindByID returns a non-deleted record by (id, owner_id).
	// Returns sql.ErrNoRows when the row is absent, soft-deleted, or owned
	// by someone else.
	FindByID(ctx context.Context, id, ownerID string) (*model.FileRecord, error)

	// List returns a page of non-deleted records for the owner, newest
	// first, and the total count of rows matching the filter.
	List(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.FileRecord], error)

	// UpdateStatus performs a compare-and-swap on status: the row is updated
	// only if its current status equals expected and it is not soft-deleted.
	// The boolean reports whether the swap took effect; false with a nil
	// error means the row was missing, deleted, not owned, or in a different
	// state. updated_at advances on a successful swap.
	UpdateStatus(ctx context.Context, id, ownerID string, expected, next model.FileStatus) (bool, error)

	// SoftDelete marks the record deleted and bumps updated_at. The boolean
	// reports whether a live row was actually flagged.
	SoftDelete(ctx context.Context, id, ownerID string) (bool, error)

	// FindStaleUploading returns up to limit non-deleted records still in
	// the uploading state whose updated_at predates cutoff. Feed for the
	// background reconciler; ordered oldest first.
	FindStaleUploading(ctx context.Context, cutoff time.Time, limit int) ([]model.FileRecord, error)
}

// PageQuery holds skip/limit pagination parameters.
type PageQuery struct {
	Skip  int
	Limit int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
