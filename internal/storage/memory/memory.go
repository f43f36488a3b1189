// Package memory provides an in-process implementation of storage.Store.
// Records do not survive a restart; it backs tests and the degraded mode
// used when the database cannot be opened.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmynk/quotation/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps records in a map.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string][]byte)}
}

// Get returns a copy of the stored payload.
func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.records[name]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", name, storage.ErrNotFound)
	}
	return append([]byte(nil), payload...), nil
}

// Put stores a copy of payload.
func (s *Store) Put(_ context.Context, name string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[name] = append([]byte(nil), payload...)
	return nil
}

// Delete removes the record.
func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, name)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
