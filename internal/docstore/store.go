package docstore

import (
	"context"
	"errors"
)

// MaxBatchOps is the most writes a single atomic batch may carry.
const MaxBatchOps = 500

var (
	ErrNotFound      = errors.New("document not found")
	ErrBatchTooLarge = errors.New("batch exceeds maximum operation count")
)

// Ref addresses one document.
type Ref struct {
	Collection string
	ID         string
}

// Document is a field-name to value mapping.
type Document map[string]any

// Store is the subset of a document database the account workflows need.
type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// QueryRefs returns references of documents whose field equals value.
	QueryRefs(ctx context.Context, collection, field string, value any) ([]Ref, error)
	// DeleteBatch atomically deletes refs. Missing documents are no-ops.
	DeleteBatch(ctx context.Context, refs []Ref) error
	// Merge writes fields into the document, creating it if needed.
	Merge(ctx context.Context, collection, id string, fields Document) error
}

// Chunk splits refs into consecutive slices of at most size elements.
func Chunk(refs []Ref, size int) [][]Ref {
	if size <= 0 || size > MaxBatchOps {
		size = MaxBatchOps
	}
	var out [][]Ref
	for start := 0; start < len(refs); start += size {
		end := start + size
		if end > len(refs) {
			end = len(refs)
		}
		out = append(out, refs[start:end])
	}
	return out
}
