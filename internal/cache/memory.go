package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryBackend caches responses in an in-process LRU with a fixed TTL,
// matching the prior-response Store's expirable.LRU idiom.
type MemoryBackend struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryBackend builds a MemoryBackend holding at most maxItems entries,
// each expiring ttl after insertion.
func NewMemoryBackend(maxItems int, ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{lru: expirable.NewLRU[string, []byte](maxItems, nil, ttl)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.lru.Get(key)
	return v, ok, nil
}

// Set ignores ttl: the backend's TTL is fixed at construction, matching
// spec.md §4.3's single-TTL-per-backend model.
func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.lru.Add(key, value)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.lru.Remove(key)
	return nil
}

func (b *MemoryBackend) Clear(_ context.Context) error {
	b.lru.Purge()
	return nil
}
