package storage

import (
	"context"
	"time"
)

// Package storage contains the presigned-URL issuer for S3-compatible object
// stores. The service never streams file bytes itself: clients transfer
// directly against the store using the URLs issued here, so the service's
// resource footprint is independent of file size.

// Presigner issues time-limited, single-purpose URLs against an object store
// and removes objects. Implementations hold no per-request state and are safe
// for concurrent use.
type Presigner interface {
	// PresignPut returns a URL that authorizes exactly one kind of upload:
	// a PUT of size bytes with the given content type to key. The content
	// type and length are part of the signature, so the store rejects a
	// transfer that deviates from what was authorized.
	PresignPut(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error)
	// PresignGet returns a time-limited URL granting read-only access to
	// the object at key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Delete removes an object by key. Used by purge tooling; the upload
	// lifecycle itself never deletes objects.
	Delete(ctx context.Context, key string) error
}
