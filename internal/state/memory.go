package state

import (
	"context"
	"sync"
)

// MemoryStore keeps state in-process. Useful for development and tests.
type MemoryStore struct {
	mu sync.Mutex
	st State
}

// NewMemoryStore creates an in-memory store starting from the default state.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the current state.
func (s *MemoryStore) Load(_ context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Save replaces the current state.
func (s *MemoryStore) Save(_ context.Context, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = st
	return nil
}
