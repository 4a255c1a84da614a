package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used when no database is configured
// and by package tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) GetDocument(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (s *MemoryStore) SetDocument(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = cloneFields(fields)
	return nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) QueryCollection(_ context.Context, collection string, filters []Filter, order *Ordering, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Document
	for id, fields := range s.collections[collection] {
		if matchesFilters(fields, filters) {
			results = append(results, Document{ID: id, Fields: cloneFields(fields)})
		}
	}

	if order != nil {
		sort.SliceStable(results, func(i, j int) bool {
			a := fieldString(results[i].Fields[order.Field])
			b := fieldString(results[j].Fields[order.Field])
			if order.Desc {
				return a > b
			}
			return a < b
		})
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func matchesFilters(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		val, ok := fields[f.Field]
		if !ok {
			return false
		}
		cmp := strings.Compare(fieldString(val), fieldString(f.Value))
		switch f.Op {
		case OpEqual:
			if cmp != 0 {
				return false
			}
		case OpGreaterEqual:
			if cmp < 0 {
				return false
			}
		case OpLess:
			if cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func fieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
