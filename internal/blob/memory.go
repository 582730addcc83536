package blob

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory implements Store on a process-local map. Used by tests and
// ephemeral sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Driver implements Store.
func (s *Memory) Driver() Driver { return DriverMemory }

// Put implements Store.
func (s *Memory) Put(_ context.Context, key string, payload []byte) error {
	if _, err := sanitizeKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
	return nil
}

// Get implements Store.
func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

// Delete implements Store.
func (s *Memory) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false, nil
	}
	delete(s.data, key)
	return true, nil
}

// List implements Store.
func (s *Memory) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
