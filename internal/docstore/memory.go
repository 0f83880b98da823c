package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store for local development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document

	commits int
	deleted int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

// Put stores a document, replacing any previous version.
func (m *MemoryStore) Put(collection, id string, doc Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		c = make(map[string]Document)
		m.collections[collection] = c
	}
	c[id] = copyDoc(doc)
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (m *MemoryStore) QueryRefs(_ context.Context, collection, field string, value any) ([]Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var refs []Ref
	for id, doc := range m.collections[collection] {
		if v, ok := doc[field]; ok && reflect.DeepEqual(v, value) {
			refs = append(refs, Ref{Collection: collection, ID: id})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (m *MemoryStore) DeleteBatch(_ context.Context, refs []Ref) error {
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > MaxBatchOps {
		return ErrBatchTooLarge
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.commits++
	for _, ref := range refs {
		if _, ok := m.collections[ref.Collection][ref.ID]; ok {
			delete(m.collections[ref.Collection], ref.ID)
			m.deleted++
		}
	}
	return nil
}

func (m *MemoryStore) Merge(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collection]
	if !ok {
		c = make(map[string]Document)
		m.collections[collection] = c
	}
	doc, ok := c[id]
	if !ok {
		doc = make(Document)
		c[id] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

// Commits returns how many non-empty batches have been committed.
func (m *MemoryStore) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

// Deleted returns how many documents were actually removed.
func (m *MemoryStore) Deleted() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deleted
}

// Count returns the number of documents in a collection.
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func copyDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
