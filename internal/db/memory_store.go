package db

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryDoc struct {
	seq  uint64
	data map[string]interface{}
}

// MemoryStore is an in-process DocumentStore used for local development and tests.
// It mirrors the Firestore semantics the application relies on: atomic Create, Update on
// existing documents only, server timestamps and equality/order queries.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryDoc
	seq         uint64
	now         func() time.Time
}

// NewMemoryStore creates an empty MemoryStore. A nil clock defaults to time.Now.
func NewMemoryStore(clock func() time.Time) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		collections: make(map[string]map[string]*memoryDoc),
		now:         clock,
	}
}

func (s *MemoryStore) collection(name string) map[string]*memoryDoc {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]*memoryDoc)
		s.collections[name] = c
	}
	return c
}

// resolve copies data, replacing ServerTimestamp sentinels with the store clock.
func (s *MemoryStore) resolve(data map[string]interface{}, now time.Time) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case serverTimestamp:
			out[k] = now
		case map[string]interface{}:
			out[k] = s.resolve(val, now)
		default:
			out[k] = v
		}
	}
	return out
}

func copyMap(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = copyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(_ context.Context, collection string, docID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][docID]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, docID, ErrNotFound)
	}
	return copyMap(doc.data), nil
}

// Create writes a document only if the id is free.
func (s *MemoryStore) Create(_ context.Context, collection string, docID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, exists := c[docID]; exists {
		return fmt.Errorf("%s/%s: %w", collection, docID, ErrAlreadyExists)
	}
	s.seq++
	c[docID] = &memoryDoc{seq: s.seq, data: s.resolve(data, s.now())}
	return nil
}

// Add writes a document under a generated id.
func (s *MemoryStore) Add(_ context.Context, collection string, data map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.seq++
	s.collection(collection)[id] = &memoryDoc{seq: s.seq, data: s.resolve(data, s.now())}
	return id, nil
}

// Update merges fields into an existing document. Dotted keys address nested maps.
func (s *MemoryStore) Update(_ context.Context, collection string, docID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][docID]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, docID, ErrNotFound)
	}

	for path, value := range s.resolve(data, s.now()) {
		parts := strings.Split(path, ".")
		target := doc.data
		for _, part := range parts[:len(parts)-1] {
			next, ok := target[part].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				target[part] = next
			}
			target = next
		}
		target[parts[len(parts)-1]] = value
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error, as in Firestore.
func (s *MemoryStore) Delete(_ context.Context, collection string, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], docID)
	return nil
}

// Query filters, orders and limits a collection. Documents with equal order values keep insertion order
// (reversed for descending queries).
func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		id  string
		doc *memoryDoc
	}
	var matches []entry
	for id, doc := range s.collections[collection] {
		if matchesFilters(doc.data, q.Filters) {
			matches = append(matches, entry{id: id, doc: doc})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if q.OrderBy != "" {
			if c := compareValues(a.doc.data[q.OrderBy], b.doc.data[q.OrderBy]); c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		if q.Desc {
			return a.doc.seq > b.doc.seq
		}
		return a.doc.seq < b.doc.seq
	})

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	docs := make([]Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, Document{ID: m.id, Data: copyMap(m.doc.data)})
	}
	return docs, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func matchesFilters(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		v, ok := data[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// compareValues orders the value types the application stores in order-by fields.
func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return 0
}
