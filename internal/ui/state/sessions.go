package state

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Sessions keeps one Store per console session, the way a browser tab keeps its
// own state. The least recently used sessions are dropped once size is reached.
type Sessions struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Store]
}

// NewSessions builds a registry holding up to size stores.
func NewSessions(size int) (*Sessions, error) {
	cache, err := lru.New[string, *Store](size)
	if err != nil {
		return nil, err
	}
	return &Sessions{cache: cache}, nil
}

// Open returns the store for id, creating it on first use.
func (s *Sessions) Open(id string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.cache.Get(id); ok {
		return store
	}
	store := NewStore()
	s.cache.Add(id, store)
	return store
}

// Lookup returns the store for id without creating one.
func (s *Sessions) Lookup(id string) (*Store, bool) {
	return s.cache.Get(id)
}

// Len reports how many sessions are held.
func (s *Sessions) Len() int {
	return s.cache.Len()
}
