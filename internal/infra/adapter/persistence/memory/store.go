// Package memory provides in-memory implementations of the repository interfaces.
// All stores are safe for concurrent use: writes are serialized per store and reads
// observe a consistent snapshot. Records are deep-copied on the way in and out.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// Store is a generic keyed collection that remembers insertion order.
// It implements repository.Repository for any entity kind.
type Store[T repository.Entity[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewStore creates an empty store.
func NewStore[T repository.Entity[T]]() *Store[T] {
	return &Store[T]{items: make(map[string]T)}
}

// Insert stores a copy of item. It fails with entity.ErrAlreadyExists if the key is taken.
func (s *Store[T]) Insert(_ context.Context, item T) error {
	key := item.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; exists {
		return fmt.Errorf("insert %q: %w", key, entity.ErrAlreadyExists)
	}
	s.items[key] = item.Clone()
	s.order = append(s.order, key)
	return nil
}

// Upsert inserts item or replaces the stored record with the same key.
// A replaced record keeps its position.
func (s *Store[T]) Upsert(_ context.Context, item T) error {
	key := item.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		s.order = append(s.order, key)
	}
	s.items[key] = item.Clone()
	return nil
}

// Get returns a copy of the record stored under id.
func (s *Store[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("get %q: %w", id, entity.ErrNotFound)
	}
	return item.Clone(), nil
}

// Modify runs fn against a working copy of the record and stores the result.
// The stored record is replaced only when fn succeeds, and the key cannot change.
func (s *Store[T]) Modify(_ context.Context, id string, fn func(T) error) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return zero, fmt.Errorf("modify %q: %w", id, entity.ErrNotFound)
	}

	work := current.Clone()
	if err := fn(work); err != nil {
		return zero, err
	}
	if work.Key() != id {
		return zero, &entity.ValidationError{Field: "id", Message: "cannot be changed"}
	}

	s.items[id] = work
	return work.Clone(), nil
}

// Delete removes the record stored under id. Missing ids are ignored.
func (s *Store[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })
	return nil
}

// List returns copies of all records in stored order.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	return s.Find(ctx, nil)
}

// Find returns copies of the records accepted by match, in stored order.
// A nil match accepts every record.
func (s *Store[T]) Find(_ context.Context, match func(T) bool) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, key := range s.order {
		item := s.items[key]
		if match == nil || match(item) {
			out = append(out, item.Clone())
		}
	}
	return out, nil
}

// DeleteWhere removes every record accepted by match and returns how many were removed.
func (s *Store[T]) DeleteWhere(_ context.Context, match func(T) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	s.order = slices.DeleteFunc(s.order, func(key string) bool {
		if !match(s.items[key]) {
			return false
		}
		delete(s.items, key)
		removed++
		return true
	})
	return removed, nil
}

// SortStable sorts copies of the records under the write lock and stores the
// resulting order. Records that compare equal keep their relative order.
func (s *Store[T]) SortStable(_ context.Context, cmp func(a, b T) int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]T, 0, len(s.order))
	for _, key := range s.order {
		sorted = append(sorted, s.items[key].Clone())
	}
	slices.SortStableFunc(sorted, cmp)

	for i, item := range sorted {
		s.order[i] = item.Key()
	}
	return sorted, nil
}

// Len returns the number of stored records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
