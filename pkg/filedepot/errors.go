package filedepot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNotFound indicates no record exists for the given id.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates another live record in the category already
	// carries the requested filename.
	ErrConflict = errors.New("filename already in use")

	// ErrBadRequest indicates a required upload or filename was missing.
	ErrBadRequest = errors.New("missing file upload")

	// ErrBlobMissing indicates a record's blob is absent from storage.
	ErrBlobMissing = errors.New("blob missing from storage")

	// ErrCorruptSnapshot indicates the durable snapshot could not be decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// StoreError represents an error raised by a store transaction.
type StoreError struct {
	Category Category
	Op       string
	ID       uuid.UUID
	Err      error
}

func (e *StoreError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s %s: %v", e.Category, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Category, e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
