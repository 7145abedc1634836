package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/filedepot/filedepot/pkg/filedepot"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "report.pdf"
	data := []byte("hello fs")

	if err := backend.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		t.Fatalf("upload: %v", err)
	}

	info, err := backend.Meta(ctx, key)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), info.Size)
	}

	rc, err := backend.Download(ctx, key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, key)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestFSBackend_Overwrite(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	if err := backend.Upload(ctx, "a.pdf", bytes.NewReader([]byte("old"))); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := backend.Upload(ctx, "a.pdf", bytes.NewReader([]byte("newer"))); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	rc, err := backend.Download(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "newer" {
		t.Fatalf("expected overwritten content, got %q", string(got))
	}
}

func TestFSBackend_MissingBlob(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	if _, err := backend.Download(ctx, "ghost.pdf"); !errors.Is(err, filedepot.ErrBlobMissing) {
		t.Fatalf("expected ErrBlobMissing from download, got %v", err)
	}
	if _, err := backend.Meta(ctx, "ghost.pdf"); !errors.Is(err, filedepot.ErrBlobMissing) {
		t.Fatalf("expected ErrBlobMissing from meta, got %v", err)
	}
	// Deleting a missing blob is success.
	if err := backend.Delete(ctx, "ghost.pdf"); err != nil {
		t.Fatalf("delete of absent blob: %v", err)
	}
}

func TestFSBackend_RejectsTraversal(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	for _, key := range []string{"", "../escape.pdf", "/etc/passwd"} {
		if err := backend.Upload(ctx, key, bytes.NewReader([]byte("x"))); err == nil {
			t.Fatalf("expected upload of key %q to fail", key)
		}
	}
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing base dir")
	}
}
