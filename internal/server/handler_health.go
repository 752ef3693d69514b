package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
)

type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleHealth is an unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthBody{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type providerHealth struct {
	Provider string   `json:"provider"`
	Healthy  bool     `json:"healthy"`
	Models   []string `json:"models,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type providersHealthBody struct {
	Providers []providerHealth `json:"providers"`
}

// handleHealthProviders probes every enabled provider's /models endpoint
// in parallel, per spec.md §6. This is a liveness/diagnostic check, never
// consulted by the Provider Registry itself (spec.md §4.1 forbids the
// registry from probing providers at startup).
func (s *Server) handleHealthProviders(w http.ResponseWriter, r *http.Request) {
	descs := s.registry.List()
	results := make([]providerHealth, len(descs))

	var wg sync.WaitGroup
	for i, d := range descs {
		wg.Add(1)
		go func(i int, baseURL, name string, models []string) {
			defer wg.Done()
			results[i] = s.probeProvider(r.Context(), name, baseURL, models)
		}(i, d.BaseURL, d.Name, d.SupportedModels)
	}
	wg.Wait()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(providersHealthBody{Providers: results})
}

func (s *Server) probeProvider(ctx context.Context, name, baseURL string, models []string) providerHealth {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/models", nil)
	if err != nil {
		return providerHealth{Provider: name, Healthy: false, Error: err.Error()}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return providerHealth{Provider: name, Healthy: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return providerHealth{Provider: name, Healthy: false, Error: resp.Status}
	}

	return providerHealth{Provider: name, Healthy: true, Models: models}
}
