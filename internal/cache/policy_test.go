package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hemanth/llmux/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_StoreThenLookupHits(t *testing.T) {
	c := New(NewMemoryBackend(10, time.Minute), time.Minute, true, nil, nil)
	ctx := context.Background()

	req := provider.ChatRequest{Model: "m", Messages: []provider.Message{{Role: "user", Content: strPtr("hi")}}}
	resp := provider.ChatResponse{ID: "chatcmpl-1", Model: "m"}

	c.Store(ctx, req, resp)

	got, ok := c.Lookup(ctx, req)
	require.True(t, ok)
	assert.Equal(t, "chatcmpl-1", got.ID)
	assert.True(t, got.Cached)
}

func TestCache_DisabledGloballyNeverHits(t *testing.T) {
	c := New(NewMemoryBackend(10, time.Minute), time.Minute, false, nil, nil)
	ctx := context.Background()

	req := provider.ChatRequest{Model: "m"}
	c.Store(ctx, req, provider.ChatResponse{ID: "x"})

	_, ok := c.Lookup(ctx, req)
	assert.False(t, ok)
}

func TestCache_StreamingRequestsNeverCached(t *testing.T) {
	c := New(NewMemoryBackend(10, time.Minute), time.Minute, true, nil, nil)
	ctx := context.Background()

	req := provider.ChatRequest{Model: "m", Stream: true}
	c.Store(ctx, req, provider.ChatResponse{ID: "x"})

	_, ok := c.Lookup(ctx, req)
	assert.False(t, ok)
}

func TestCache_PerRequestOptOut(t *testing.T) {
	c := New(NewMemoryBackend(10, time.Minute), time.Minute, true, nil, nil)
	ctx := context.Background()

	cacheOff := false
	req := provider.ChatRequest{Model: "m", Cache: &cacheOff}
	c.Store(ctx, req, provider.ChatResponse{ID: "x"})

	_, ok := c.Lookup(ctx, req)
	assert.False(t, ok)
}

func TestCache_MissReturnsFalseNotError(t *testing.T) {
	c := New(NewMemoryBackend(10, time.Minute), time.Minute, true, nil, nil)
	_, ok := c.Lookup(context.Background(), provider.ChatRequest{Model: "unknown"})
	assert.False(t, ok)
}
