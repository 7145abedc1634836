package filedepot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the frame header every zstd stream starts with. Load uses it
// to accept both compressed and plain snapshots regardless of the writer's
// current setting.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// EncodeSnapshot serializes records into the durable snapshot format.
func EncodeSnapshot(records []*Record) ([]byte, error) {
	if records == nil {
		records = []*Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses snapshot bytes back into records. Empty input
// yields an empty slice: a blank snapshot on first boot is normal, not
// corruption. Malformed non-empty input fails with ErrCorruptSnapshot.
func DecodeSnapshot(data []byte) ([]*Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Record{}, nil
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return records, nil
}

// SnapshotFile owns the durable snapshot for one category's index.
type SnapshotFile struct {
	path     string
	compress bool
}

// SnapshotOption configures a SnapshotFile.
type SnapshotOption func(*SnapshotFile)

// WithCompression enables zstd compression of the snapshot body.
func WithCompression(enabled bool) SnapshotOption {
	return func(s *SnapshotFile) {
		s.compress = enabled
	}
}

// NewSnapshotFile creates a snapshot file bound to the given path. The file
// itself is created lazily on the first Save.
func NewSnapshotFile(path string, opts ...SnapshotOption) *SnapshotFile {
	s := &SnapshotFile{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot's location on disk.
func (s *SnapshotFile) Path() string {
	return s.path
}

// Load reads and decodes the snapshot. An absent file yields an empty
// record set; malformed content fails with ErrCorruptSnapshot.
func (s *SnapshotFile) Load() ([]*Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []*Record{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot: %w", err)
		}
		defer dec.Close()

		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
	}

	return DecodeSnapshot(data)
}

// Save encodes records and writes them durably. The write goes through a
// temp file in the same directory followed by a rename, so readers never
// observe a partially written snapshot.
func (s *SnapshotFile) Save(records []*Record) error {
	data, err := EncodeSnapshot(records)
	if err != nil {
		return err
	}

	if s.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
