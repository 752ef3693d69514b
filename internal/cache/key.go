// Package cache implements the content-addressed response cache of
// spec.md §4.3: a deterministic request fingerprint plus a pluggable
// get/set/delete/clear KV backend.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/hemanth/llmux/internal/provider"
)

// keyFields lists exactly the request fields that may affect the response
// and therefore participate in the cache fingerprint, per spec.md §3.
// Provider, Cache, Stream, and any future gateway-only or purely
// transport-level field MUST NOT appear here.
type keyFields struct {
	Model            string              `json:"model"`
	Messages         []provider.Message  `json:"messages"`
	Temperature      *float64            `json:"temperature,omitempty"`
	TopP             *float64            `json:"top_p,omitempty"`
	MaxTokens        *int                `json:"max_tokens,omitempty"`
	Stop             []string            `json:"stop,omitempty"`
	PresencePenalty  *float64            `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64            `json:"frequency_penalty,omitempty"`
}

// Key computes a SHA-256 hex digest over exactly the cache-relevant
// fields of a request. Two requests differing only in Provider, Cache,
// Stream, or any ignored field hash identically — this is the invariant
// tested in spec.md §8 property 1.
func Key(req provider.ChatRequest) (string, error) {
	fields := keyFields{
		Model:            req.Model,
		Messages:         req.Messages,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxTokens:        req.MaxTokens,
		Stop:             req.Stop,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
	}

	// encoding/json marshals struct fields in declaration order, so two
	// keyFields values with the same content always produce byte-identical
	// JSON — the determinism the fingerprint depends on.
	b, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
