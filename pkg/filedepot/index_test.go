package filedepot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func testRecord(name string) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:         uuid.New(),
		FileName:   name,
		StorageKey: name,
		SizeBytes:  42,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func TestIndexBasicOps(t *testing.T) {
	ix := NewIndex()

	rec := testRecord("report.pdf")
	assert.Nil(t, ix.Get(rec.ID))
	assert.False(t, ix.Has(rec.ID))

	ix.Put(rec)
	assert.True(t, ix.Has(rec.ID))
	assert.Equal(t, 1, ix.Len())

	got := ix.Get(rec.ID)
	assert.NotNil(t, got)
	assert.Equal(t, rec.FileName, got.FileName)

	assert.True(t, ix.Delete(rec.ID))
	assert.False(t, ix.Delete(rec.ID))
	assert.Equal(t, 0, ix.Len())
}

func TestIndexPutOverwrites(t *testing.T) {
	ix := NewIndex()

	rec := testRecord("a.pdf")
	ix.Put(rec)

	rec.FileName = "b.pdf"
	ix.Put(rec)

	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, "b.pdf", ix.Get(rec.ID).FileName)
}

func TestIndexCopiesRecords(t *testing.T) {
	ix := NewIndex()

	rec := testRecord("a.pdf")
	ix.Put(rec)

	// Mutating the caller's record must not touch the stored one.
	rec.FileName = "mutated.pdf"
	assert.Equal(t, "a.pdf", ix.Get(rec.ID).FileName)

	// Mutating a returned record must not touch the stored one either.
	got := ix.Get(rec.ID)
	got.FileName = "mutated.pdf"
	assert.Equal(t, "a.pdf", ix.Get(rec.ID).FileName)
}

func TestIndexListUnordered(t *testing.T) {
	ix := NewIndex()

	names := map[string]bool{"a.pdf": true, "b.pdf": true, "c.pdf": true}
	for name := range names {
		ix.Put(testRecord(name))
	}

	records := ix.List()
	assert.Len(t, records, 3)
	for _, rec := range records {
		assert.True(t, names[rec.FileName])
	}
}

func TestIndexListEmpty(t *testing.T) {
	ix := NewIndex()
	records := ix.List()
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
