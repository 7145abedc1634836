// Package filedepot implements a metadata-indexed blob store.
//
// Each content category (PDF, image) owns a Store: an in-memory index of
// Records, a BlobStore holding the raw bytes, and a durable snapshot file
// used to repopulate the index on restart. The Store sequences index and
// blob operations so the two never diverge for longer than one transaction,
// and it enforces filename uniqueness within its category.
//
// The in-memory index is the source of truth for a running process. The
// snapshot is written asynchronously after every successful mutation and is
// best-effort only: a failed write is logged, never surfaced to the caller.
package filedepot
