package memory

import (
	"sync"

	"github.com/patrickmn/go-cache"
)

// Store backs the in-memory repositories. Documents and chunks never expire;
// the store lives as long as the process.
type Store struct {
	documents *cache.Cache
	chunks    *cache.Cache

	// guards read-modify-write sequences spanning both caches
	mu sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		documents: cache.New(cache.NoExpiration, 0),
		chunks:    cache.New(cache.NoExpiration, 0),
	}
}
