package filedepot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store manages one category: its index, its blob storage and its durable
// snapshot. It is the only component that touches both the index and the
// blobs, and the sole writer of its category's records.
type Store struct {
	category Category
	index    *Index
	blobs    BlobStore
	snapshot *SnapshotFile

	now           func() time.Time
	persistNotify func(error)

	// txMu serializes transaction bodies so check-then-write sequences
	// (uniqueness scan, delete-then-write) never interleave within one
	// category.
	txMu sync.Mutex

	// saveMu orders the asynchronous snapshot writers. saveSeq is assigned
	// under txMu; savedSeq, guarded by saveMu, is the highest sequence
	// already on disk, so a stale state never renames over a newer one.
	saveMu   sync.Mutex
	saveSeq  uint64
	savedSeq uint64
}

// Option represents a functional option for configuring a store.
type Option func(*Store)

// WithBlobStore sets the blob storage backend.
func WithBlobStore(blobs BlobStore) Option {
	return func(s *Store) {
		s.blobs = blobs
	}
}

// WithSnapshot sets the durable snapshot file.
func WithSnapshot(snapshot *SnapshotFile) Option {
	return func(s *Store) {
		s.snapshot = snapshot
	}
}

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithPersistNotify registers a callback invoked after every asynchronous
// snapshot write, with the write's outcome. Tests use it to await
// persistence deterministically instead of racing it.
func WithPersistNotify(fn func(error)) Option {
	return func(s *Store) {
		s.persistNotify = fn
	}
}

// New creates a store for the given category.
func New(category Category, opts ...Option) (*Store, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	s := &Store{
		category: category,
		index:    NewIndex(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.blobs == nil {
		return nil, errors.New("blob store is required")
	}
	return s, nil
}

// Category returns the category this store manages.
func (s *Store) Category() Category {
	return s.category
}

// Open populates the index from the durable snapshot. A corrupt snapshot is
// logged and replaced with an empty index; startup never fails over it.
func (s *Store) Open(ctx context.Context) error {
	if s.snapshot == nil {
		return nil
	}

	records, err := s.snapshot.Load()
	if err != nil {
		if errors.Is(err, ErrCorruptSnapshot) {
			slog.Warn("snapshot corrupt, starting with empty index",
				"category", s.category, "path", s.snapshot.Path(), "error", err)
			return nil
		}
		return &StoreError{Category: s.category, Op: "open", Err: err}
	}

	for _, rec := range records {
		s.index.Put(rec)
	}
	return nil
}

// Create stores a new blob under fileName and returns its record. The blob
// is written before the index is touched, so a failed write cannot leave a
// dangling record.
func (s *Store) Create(ctx context.Context, fileName string, data io.Reader) (*Record, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if fileName == "" || data == nil {
		return nil, &StoreError{Category: s.category, Op: "create", Err: ErrBadRequest}
	}
	if s.fileNameTaken(fileName, uuid.Nil) {
		return nil, &StoreError{Category: s.category, Op: "create", Err: ErrConflict}
	}

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, &StoreError{Category: s.category, Op: "create", Err: err}
	}

	id := uuid.New()
	if err := s.blobs.Upload(ctx, fileName, bytes.NewReader(buf)); err != nil {
		return nil, &StoreError{Category: s.category, Op: "create", ID: id, Err: err}
	}

	now := s.now().UTC()
	rec := &Record{
		ID:         id,
		FileName:   fileName,
		StorageKey: fileName,
		SizeBytes:  int64(len(buf)),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	s.index.Put(rec)
	s.persist()

	return rec, nil
}

// Get returns the record for id without touching blob storage.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec := s.index.Get(id)
	if rec == nil {
		return nil, &StoreError{Category: s.category, Op: "get", ID: id, Err: ErrNotFound}
	}
	return rec, nil
}

// Fetch returns the record for id along with a reader over its blob. A blob
// missing despite a live record indicates prior partial-failure corruption
// and surfaces as ErrBlobMissing, not a caller error.
func (s *Store) Fetch(ctx context.Context, id uuid.UUID) (*Record, io.ReadCloser, error) {
	rec := s.index.Get(id)
	if rec == nil {
		return nil, nil, &StoreError{Category: s.category, Op: "fetch", ID: id, Err: ErrNotFound}
	}

	rc, err := s.blobs.Download(ctx, rec.StorageKey)
	if err != nil {
		return nil, nil, &StoreError{Category: s.category, Op: "fetch", ID: id, Err: err}
	}
	return rec, rc, nil
}

// List returns all live records, in no particular order.
func (s *Store) List(ctx context.Context) []*Record {
	return s.index.List()
}

// Edit applies the requested changes to a record. With new bytes the old
// blob is deleted before the new one is written: a brief window with no
// blob for the id is preferred over ever holding two blobs for one id.
// ModifiedAt is always set by the store as the final step.
func (s *Store) Edit(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Record, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	rec := s.index.Get(id)
	if rec == nil {
		return nil, &StoreError{Category: s.category, Op: "edit", ID: id, Err: ErrNotFound}
	}

	newName := rec.FileName
	if req.FileName != nil && *req.FileName != "" {
		newName = *req.FileName
	}
	if newName != rec.FileName && s.fileNameTaken(newName, id) {
		return nil, &StoreError{Category: s.category, Op: "edit", ID: id, Err: ErrConflict}
	}

	if req.Data != nil {
		buf, err := io.ReadAll(req.Data)
		if err != nil {
			return nil, &StoreError{Category: s.category, Op: "edit", ID: id, Err: err}
		}

		if err := s.blobs.Delete(ctx, rec.StorageKey); err != nil {
			return nil, &StoreError{Category: s.category, Op: "edit", ID: id, Err: err}
		}
		if err := s.blobs.Upload(ctx, newName, bytes.NewReader(buf)); err != nil {
			return nil, &StoreError{Category: s.category, Op: "edit", ID: id, Err: err}
		}
		rec.StorageKey = newName
		rec.SizeBytes = int64(len(buf))
	} else if newName != rec.FileName {
		// Rename without new bytes: move the blob so the storage key
		// keeps matching the filename. Leaving it under the old key
		// would let a later create under that name overwrite it.
		if err := s.moveBlob(ctx, rec.StorageKey, newName); err != nil {
			return nil, &StoreError{Category: s.category, Op: "edit", ID: id, Err: err}
		}
		rec.StorageKey = newName
	}

	rec.FileName = newName
	rec.ModifiedAt = s.now().UTC()
	s.index.Put(rec)
	s.persist()

	return rec, nil
}

// Delete removes a record and its blob. The blob goes first: the record
// stays in the index until removal succeeds, so a failed delete can be
// retried and the index never claims a record is gone while it is not.
// An already-absent blob is treated as success.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	rec := s.index.Get(id)
	if rec == nil {
		return nil, &StoreError{Category: s.category, Op: "delete", ID: id, Err: ErrNotFound}
	}

	if err := s.blobs.Delete(ctx, rec.StorageKey); err != nil {
		return nil, &StoreError{Category: s.category, Op: "delete", ID: id, Err: err}
	}

	s.index.Delete(id)
	s.persist()

	return rec, nil
}

// moveBlob copies the blob at oldKey to newKey and removes the original.
func (s *Store) moveBlob(ctx context.Context, oldKey, newKey string) error {
	rc, err := s.blobs.Download(ctx, oldKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := s.blobs.Upload(ctx, newKey, rc); err != nil {
		return err
	}
	return s.blobs.Delete(ctx, oldKey)
}

// fileNameTaken scans the category for a live record named name, excluding
// the record with the given id. Callers must hold txMu.
func (s *Store) fileNameTaken(name string, exclude uuid.UUID) bool {
	for _, rec := range s.index.List() {
		if rec.ID != exclude && rec.FileName == name {
			return true
		}
	}
	return false
}

// persist schedules a best-effort snapshot write. Failure is logged, not
// surfaced: the in-memory index stays authoritative for the running
// process and the snapshot only aids the next boot.
func (s *Store) persist() {
	if s.snapshot == nil {
		if s.persistNotify != nil {
			s.persistNotify(nil)
		}
		return
	}

	records := s.index.List()
	s.saveSeq++
	seq := s.saveSeq
	go func() {
		var err error
		s.saveMu.Lock()
		if seq > s.savedSeq {
			err = s.snapshot.Save(records)
			if err == nil {
				s.savedSeq = seq
			}
		}
		s.saveMu.Unlock()
		if err != nil {
			slog.Error("snapshot write failed",
				"category", s.category, "path", s.snapshot.Path(), "error", err)
		}
		if s.persistNotify != nil {
			s.persistNotify(err)
		}
	}()
}
