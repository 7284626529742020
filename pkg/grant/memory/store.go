// Package memory implements an in-memory grant store.
//
// This implementation is suitable for tests and for development deployments
// where losing the grant on restart is acceptable. Production deployments
// should use the badger store, which survives restarts.
package memory

import (
	"context"
	"sync"

	"github.com/docgate/docgate/pkg/grant"
)

// MemoryGrantStore implements grant.Store using process memory.
//
// Thread Safety: all operations are protected by a read-write mutex.
type MemoryGrantStore struct {
	mu     sync.RWMutex
	active *grant.Grant
}

// NewMemoryGrantStore creates an empty in-memory grant store.
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{}
}

// Active returns a copy of the persisted grant, or (nil, nil) when no grant
// has been stored.
func (s *MemoryGrantStore) Active(ctx context.Context) (*grant.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return nil, nil
	}
	g := *s.active
	return &g, nil
}

// Put overwrites the persisted grant. Last write wins.
func (s *MemoryGrantStore) Put(ctx context.Context, g *grant.Grant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *g
	s.active = &cp
	return nil
}

// Close releases nothing; it exists to satisfy grant.Store.
func (s *MemoryGrantStore) Close() error {
	return nil
}
