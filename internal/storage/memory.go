package storage

import (
	"context"

	"github.com/puzpuzpuz/xsync"
)

// MemoryStore keeps values in process memory. Nothing survives a restart;
// it backs tests and throwaway sessions.
type MemoryStore struct {
	values *xsync.MapOf[string, string]
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: xsync.NewMapOf[string]()}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values.Load(key)
	if !ok {
		return "", notFound(key)
	}
	return value, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.values.Store(key, value)
	return nil
}

// Del removes key.
func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.values.Delete(key)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
