/*
Package sharedcache is the shared cache tier: a durable key-value store,
outlives any single process, holding the serialized dataset plus its
freshness metadata.

The tier itself is dumb on purpose. Puts are unconditional last-write-wins;
TTL arbitration and the monotonicity check belong to the loader, which runs
them before deciding to write. The tier only has to tolerate being empty
(cold start) and being written concurrently by independent processes.
*/
package sharedcache

import (
	"context"
	"sync"

	"github.com/jvb127/faultserve/types"
)

// Store is the shared tier contract.
type Store interface {

	// Get returns the entry under key, or (nil, false, nil) when the tier
	// is cold. An error means the backing store itself failed; callers
	// degrade that to a miss.
	Get(ctx context.Context, key string) (*types.CacheEntry, bool, error)

	// Put overwrites the entry under key. Last write wins.
	Put(ctx context.Context, key string, entry *types.CacheEntry) error

	// Close releases the backing store.
	Close() error
}

// MemoryStore is a process-local Store. It backs tests and single-instance
// deployments that run without a cache database.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*types.CacheEntry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*types.CacheEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*types.CacheEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, entry *types.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Close() error { return nil }
