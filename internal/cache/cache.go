package cache

import (
	"context"
	"time"
)

// Backend is a pluggable key-value store for cached ChatResponse payloads,
// keyed by the fingerprint returned by Key. Values are opaque bytes — the
// caller is responsible for marshaling/unmarshaling ChatResponse.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
