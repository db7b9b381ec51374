package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business
// logic. Concurrency safety for status changes rests on the conditional
// UPDATE in UpdateStatus: the database applies it atomically per row.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, owner_id, display_name, storage_path, size_bytes, mime_type, status, is_deleted, created_at, updated_at`

func scanFile(row interface{ Scan(...any) error }) (*model.FileRecord, error) {
	var rec model.FileRecord
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.DisplayName,
		&rec.StoragePath,
		&rec.SizeBytes,
		&rec.MimeType,
		&rec.Status,
		&rec.IsDeleted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new file record and returns the stored row.
func (r *FilePostgres) Create(ctx context.Context, rec *model.FileRecord) (*model.FileRecord, error) {
	const q = `
		INSERT INTO user_files (id, owner_id, display_name, storage_path, size_bytes, mime_type, status, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.OwnerID,
		rec.DisplayName,
		rec.StoragePath,
		rec.SizeBytes,
		rec.MimeType,
		rec.Status,
		rec.IsDeleted,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	stored, err := scanFile(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
		}
		return nil, err
	}
	return stored, nil
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FindByID fetches a single non-deleted record scoped by owner.
func (r *FilePostgres) FindByID(ctx context.Context, id, ownerID string) (*model.FileRecord, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM user_files
		WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE
	`
	row := r.db.QueryRowContext(ctx, q, id, ownerID)
	return scanFile(row)
}

// List returns the owner's non-deleted records using LIMIT/OFFSET pagination
// and a total count.
func (r *FilePostgres) List(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.FileRecord], error) {
	const qCount = `SELECT COUNT(*) FROM user_files WHERE owner_id = $1 AND is_deleted = FALSE`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + fileColumns + `
		FROM user_files
		WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileRecord, 0)
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.FileRecord]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateStatus performs the compare-and-swap status transition. Exactly one
// of two concurrent swaps for the same row can see RowsAffected == 1.
func (r *FilePostgres) UpdateStatus(ctx context.Context, id, ownerID string, expected, next model.FileStatus) (bool, error) {
	const q = `
		UPDATE user_files
		SET status = $1, updated_at = now()
		WHERE id = $2 AND owner_id = $3 AND status = $4 AND is_deleted = FALSE
	`
	res, err := r.db.ExecContext(ctx, q, next, id, ownerID, expected)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SoftDelete flags the record as deleted. The row and any storage object stay
// behind for an out-of-band purge job.
func (r *FilePostgres) SoftDelete(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `
		UPDATE user_files
		SET is_deleted = TRUE, updated_at = now()
		WHERE id = $1 AND owner_id = $2 AND is_deleted = FALSE
	`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FindStaleUploading returns non-deleted rows stuck in uploading past the
// cutoff, oldest first.
func (r *FilePostgres) FindStaleUploading(ctx context.Context, cutoff time.Time, limit int) ([]model.FileRecord, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM user_files
		WHERE status = $1 AND is_deleted = FALSE AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, model.StatusUploading, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileRecord, 0)
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
