// Package memory provides an in-memory implementation of the
// filedepot.BlobStore interface, primarily for tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/filedepot/filedepot/pkg/filedepot"
)

// Backend is an in-memory implementation of the filedepot.BlobStore interface.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	updated map[string]time.Time
}

// New creates a new in-memory storage backend.
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		updated: make(map[string]time.Time),
	}
}

// Upload stores the blob in memory.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data
	b.updated[key] = time.Now()
	return nil
}

// Download returns a reader over the stored blob.
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, filedepot.ErrBlobMissing
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the blob. Deleting an absent key is success.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	delete(b.updated, key)
	return nil
}

// Meta probes a stored blob.
func (b *Backend) Meta(ctx context.Context, key string) (*filedepot.BlobInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[key]
	if !exists {
		return nil, filedepot.ErrBlobMissing
	}
	return &filedepot.BlobInfo{
		Key:       key,
		Size:      int64(len(data)),
		UpdatedAt: b.updated[key],
	}, nil
}

// Drop removes the blob without going through Delete, simulating external
// interference with storage. Test helper.
func (b *Backend) Drop(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	delete(b.updated, key)
}
