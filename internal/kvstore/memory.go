package kvstore

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a process-local Store used in tests and for ephemeral
// single-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]string)
	for k, v := range s.entries {
		if strings.HasPrefix(k, prefix) {
			entries[k] = v
		}
	}
	return entries, nil
}
