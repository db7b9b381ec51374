package model

import "time"

// FileRecord represents the metadata row for a user file whose bytes live in
// object storage. This is a pure domain model with no database-specific
// dependencies or tags; it can be used across layers (HTTP, service, storage)
// without coupling to persistence.
type FileRecord struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	DisplayName string     `json:"name"`
	StoragePath string     `json:"storage_path"`
	SizeBytes   int64      `json:"size_bytes"`
	MimeType    string     `json:"mime_type"`
	Status      FileStatus `json:"status"`
	IsDeleted   bool       `json:"is_deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
