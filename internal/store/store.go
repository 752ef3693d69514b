// Package store implements the prior-response store of spec.md §4.7: a
// short-lived map from response id to the (input, output) pair needed to
// continue an OpenResponses conversation.
package store

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hemanth/llmux/internal/openresponses"
)

// DefaultSize and DefaultTTL are spec.md §3's defaults for the response
// store: 1000 entries, 1 hour.
const (
	DefaultSize = 1000
	DefaultTTL  = time.Hour
)

// StoredResponse is the (response, input) pair kept per response id, so a
// later request can continue the conversation via previous_response_id.
type StoredResponse struct {
	Response openresponses.Response
	Input    []openresponses.InputItem
}

// Store is a concurrency-safe, bounded, TTL-expiring map from response id
// to StoredResponse, backed by the same LRU family the memory cache uses.
type Store struct {
	lru *expirable.LRU[string, StoredResponse]
}

// New builds a Store holding at most maxItems entries, each expiring ttl
// after insertion.
func New(maxItems int, ttl time.Duration) *Store {
	return &Store{lru: expirable.NewLRU[string, StoredResponse](maxItems, nil, ttl)}
}

// Get returns the stored pair for id, if present and not expired.
func (s *Store) Get(id string) (StoredResponse, bool) {
	return s.lru.Get(id)
}

// Set stores resp and the input that produced it, keyed by id (callers
// pass resp.ID).
func (s *Store) Set(id string, resp openresponses.Response, input []openresponses.InputItem) {
	s.lru.Add(id, StoredResponse{Response: resp, Input: input})
}

// Delete removes id from the store, if present.
func (s *Store) Delete(id string) {
	s.lru.Remove(id)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.lru.Purge()
}
