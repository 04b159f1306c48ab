// Package memstore provides an in-memory storage.Store for tests and local
// one-shot runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/edlowe/flatsheet/providers/storage"
)

// Store is an in-memory blob store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

var _ storage.Store = (*Store)(nil)

// Download returns a copy of the blob at path.
func (s *Store) Download(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, storage.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Upload stores a copy of data at path.
func (s *Store) Upload(_ context.Context, path string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[path] = stored
	return nil
}

// List returns the objects under prefix, names relative to it, sorted.
func (s *Store) List(_ context.Context, prefix string) ([]storage.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clean := strings.TrimSuffix(prefix, "/") + "/"
	var out []storage.Object
	for path, data := range s.blobs {
		if strings.HasPrefix(path, clean) {
			out = append(out, storage.Object{
				Name: strings.TrimPrefix(path, clean),
				Size: int64(len(data)),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove deletes the given paths. Missing paths are ignored.
func (s *Store) Remove(_ context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range paths {
		delete(s.blobs, p)
	}
	return nil
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
