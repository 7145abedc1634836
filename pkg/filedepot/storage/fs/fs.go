// Package fs provides a filesystem implementation of the
// filedepot.BlobStore interface. Blobs live directly under a configured
// base directory, named by their storage key.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/filedepot/filedepot/pkg/filedepot"
)

// Backend is a filesystem implementation of the filedepot.BlobStore interface.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend.
type Config struct {
	BaseDir string // Base directory for storing blobs
}

// New creates a new filesystem storage backend.
func New(config Config) (filedepot.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// keyPath validates the key and resolves it under the base directory.
// Keys are caller-supplied filenames, so path traversal is rejected.
func (b *Backend) keyPath(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}
	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(b.baseDir, clean), nil
}

// Upload writes the blob to the filesystem, overwriting any previous file.
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader) error {
	filePath, err := b.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Download opens the blob for reading.
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := b.keyPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, filedepot.ErrBlobMissing
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the blob. An already-absent file is success.
func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath, err := b.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Meta probes a stored blob.
func (b *Backend) Meta(ctx context.Context, key string) (*filedepot.BlobInfo, error) {
	filePath, err := b.keyPath(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, filedepot.ErrBlobMissing
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return &filedepot.BlobInfo{
		Key:       key,
		Size:      info.Size(),
		UpdatedAt: info.ModTime(),
	}, nil
}
