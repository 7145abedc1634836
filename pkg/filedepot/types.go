package filedepot

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Category is the domain type for content classes. Each category gets its
// own Store, blob root and response content type.
type Category string

// Category constants (typed).
const (
	CategoryPDF   Category = "pdf"
	CategoryImage Category = "image"
)

// Categories lists every category the service stores.
func Categories() []Category {
	return []Category{CategoryPDF, CategoryImage}
}

// IsValid reports whether the category is one the service knows.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPDF, CategoryImage:
		return true
	}
	return false
}

// ContentType returns the MIME type served for blobs of this category.
// Images are served uniformly as JPEG regardless of the actual subtype.
func (c Category) ContentType() string {
	switch c {
	case CategoryPDF:
		return "application/pdf"
	case CategoryImage:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// Record describes one stored blob.
type Record struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	StorageKey string    `json:"storage_key"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// UpdateRequest enumerates the fields an Edit may change. Nil fields are
// left untouched. Timestamps are always server-computed and cannot be
// supplied by callers.
type UpdateRequest struct {
	FileName *string
	Data     io.Reader
}
