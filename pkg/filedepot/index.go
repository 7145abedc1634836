package filedepot

import (
	"sync"

	"github.com/google/uuid"
)

// Index is the in-memory keyed collection of records for one category.
// It has no side effects beyond the map it guards and is not itself
// durable; persistence is the owning Store's job.
type Index struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		records: make(map[uuid.UUID]*Record),
	}
}

// Get returns the record for id, or nil if absent.
func (ix *Index) Get(id uuid.UUID) *Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	rec, ok := ix.records[id]
	if !ok {
		return nil
	}
	// Return a copy to prevent external modifications
	recCopy := *rec
	return &recCopy
}

// Has reports whether a record exists for id.
func (ix *Index) Has(id uuid.UUID) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	_, ok := ix.records[id]
	return ok
}

// Put inserts or overwrites the record for rec.ID.
func (ix *Index) Put(rec *Record) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	recCopy := *rec
	ix.records[rec.ID] = &recCopy
}

// Delete removes the record for id and reports whether it was present.
func (ix *Index) Delete(id uuid.UUID) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, ok := ix.records[id]
	delete(ix.records, id)
	return ok
}

// List returns copies of all records, in no particular order.
func (ix *Index) List() []*Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	result := make([]*Record, 0, len(ix.records))
	for _, rec := range ix.records {
		recCopy := *rec
		result = append(result, &recCopy)
	}
	return result
}

// Len returns the number of records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.records)
}
