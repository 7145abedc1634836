package filedepot

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for blob storage backends.
type BlobStore interface {
	// Upload writes the blob under the given key, overwriting any
	// previous content.
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download opens the blob for reading. A missing key fails with
	// ErrBlobMissing.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting an absent key is not an error:
	// the goal state is already met.
	Delete(ctx context.Context, key string) error

	// Meta probes a stored blob without reading its content.
	Meta(ctx context.Context, key string) (*BlobInfo, error)
}

// BlobInfo contains metadata about a blob in storage.
type BlobInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}
