package model

import "sort"

// Package model contains domain models/data structures.
// No business logic here; status transition rules live in the service layer.

// FileStatus is the lifecycle state of a FileRecord.
type FileStatus string

const (
	// StatusUploading is the initial state: a reservation exists but the
	// transfer outcome is unknown.
	StatusUploading FileStatus = "uploading"
	// StatusUploaded is the terminal success state; the only state from
	// which a download URL may be issued.
	StatusUploaded FileStatus = "uploaded"
	// StatusFailed is the terminal failure state. "Failed" means the upload
	// is not trusted, not necessarily that no bytes landed in storage.
	StatusFailed FileStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s FileStatus) Valid() bool {
	switch s {
	case StatusUploading, StatusUploaded, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s permits no further status transitions.
func (s FileStatus) Terminal() bool {
	return s == StatusUploaded || s == StatusFailed
}

// MaxDisplayNameLen bounds the user-supplied file name.
const MaxDisplayNameLen = 255

// mimeExtensions is the fixed MIME type allow-list together with the
// extension used when deriving a storage path. Anything outside this map is
// rejected at reservation time.
var mimeExtensions = map[string]string{
	"text/plain":       ".txt",
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"application/json": ".json",
	"application/pdf":  ".pdf",
}

// AllowedMimeType reports whether mt is on the upload allow-list.
func AllowedMimeType(mt string) bool {
	_, ok := mimeExtensions[mt]
	return ok
}

// ExtensionFor returns the canonical file extension for an allow-listed MIME
// type, or the empty string for anything else.
func ExtensionFor(mt string) string {
	return mimeExtensions[mt]
}

// AllowedMimeTypes returns the allow-list sorted, for error messages and
// API documentation.
func AllowedMimeTypes() []string {
	out := make([]string, 0, len(mimeExtensions))
	for mt := range mimeExtensions {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}
