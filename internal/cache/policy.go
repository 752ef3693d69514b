package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hemanth/llmux/internal/metrics"
	"github.com/hemanth/llmux/internal/provider"
	"go.uber.org/zap"
)

// Cache applies the caching policy of spec.md §4.3 on top of a Backend:
// streaming requests and requests with cache=false never consult the
// backend, a global disable short-circuits everything, and backend errors
// are logged and swallowed rather than failing the request.
type Cache struct {
	backend Backend
	ttl     time.Duration
	enabled bool
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds a Cache. enabled gates the cache globally, independent of any
// per-request cache=false override.
func New(backend Backend, ttl time.Duration, enabled bool, mets *metrics.Metrics, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{backend: backend, ttl: ttl, enabled: enabled, metrics: mets, logger: logger}
}

// Lookup returns a cached response for req, if caching applies and a
// fresh entry exists. The second return reports whether a hit occurred.
// There is no error return — backend failures are treated as misses.
func (c *Cache) Lookup(ctx context.Context, req provider.ChatRequest) (*provider.ChatResponse, bool) {
	if !c.eligible(req) {
		return nil, false
	}

	key, err := Key(req)
	if err != nil {
		c.logger.Warn("cache key computation failed", zap.Error(err))
		c.metrics.ObserveCacheMiss()
		return nil, false
	}

	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache backend get failed", zap.Error(err))
		c.metrics.ObserveCacheMiss()
		return nil, false
	}
	if !ok {
		c.metrics.ObserveCacheMiss()
		return nil, false
	}

	var resp provider.ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("cache entry decode failed", zap.Error(err))
		c.metrics.ObserveCacheMiss()
		return nil, false
	}
	resp.Cached = true
	c.metrics.ObserveCacheHit()
	return &resp, true
}

// Store writes resp under req's fingerprint, when caching applies. Errors
// are logged and swallowed — a cache write failure must never fail the
// request that produced the response.
func (c *Cache) Store(ctx context.Context, req provider.ChatRequest, resp provider.ChatResponse) {
	if !c.eligible(req) {
		return
	}

	key, err := Key(req)
	if err != nil {
		c.logger.Warn("cache key computation failed", zap.Error(err))
		return
	}

	resp.Cached = false
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("cache entry encode failed", zap.Error(err))
		return
	}

	if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("cache backend set failed", zap.Error(err))
	}
}

// eligible reports whether req may participate in caching at all: the
// cache must be enabled globally, the request must not be streaming, and
// the request must not opt out via cache=false.
func (c *Cache) eligible(req provider.ChatRequest) bool {
	return c.enabled && !req.Stream && req.CacheEnabled()
}
