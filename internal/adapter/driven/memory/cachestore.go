// Package memory implements the CacheStore port in process memory.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/wian47/portfolio/internal/domain/model"
	"github.com/wian47/portfolio/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore keeps one snapshot per key for the life of the process.
// Entries are copied on the way in and out so callers cannot mutate them.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
}

// NewCacheStore creates an empty CacheStore.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]model.CacheEntry)}
}

// Get returns a copy of the entry under key, or nil, nil if there is none.
func (s *CacheStore) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}

	entry.Data = slices.Clone(entry.Data)
	return &entry, nil
}

// Put stores a copy of entry, replacing any entry under the same key.
func (s *CacheStore) Put(_ context.Context, entry model.CacheEntry) error {
	if entry.Key == "" {
		return errors.New("put cache entry: empty key")
	}

	entry.Data = slices.Clone(entry.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

// Delete evicts key.
func (s *CacheStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Clear evicts every entry and returns how many were removed.
func (s *CacheStore) Clear(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.entries))
	clear(s.entries)
	return n, nil
}
