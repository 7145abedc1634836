package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/filedepot/filedepot/pkg/filedepot"
)

func TestMemoryBackend_BasicOps(t *testing.T) {
	backend := New()
	ctx := context.Background()

	data := []byte("in memory")
	if err := backend.Upload(ctx, "a.jpg", bytes.NewReader(data)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := backend.Meta(ctx, "a.jpg")
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), info.Size)
	}

	rc, err := backend.Download(ctx, "a.jpg")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(got, data) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	if err := backend.Delete(ctx, "a.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := backend.Download(ctx, "a.jpg"); !errors.Is(err, filedepot.ErrBlobMissing) {
		t.Fatalf("expected ErrBlobMissing, got %v", err)
	}
}

func TestMemoryBackend_DeleteAbsent(t *testing.T) {
	backend := New()
	if err := backend.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("delete of absent blob: %v", err)
	}
}
