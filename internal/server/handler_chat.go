package server

import (
	"encoding/json"
	"net/http"

	"github.com/hemanth/llmux/internal/gatewayerr"
	"github.com/hemanth/llmux/internal/provider"
	"go.uber.org/zap"
)

// handleChatCompletions serves POST /v1/chat/completions: cache lookup,
// route, optional cache store, reply — or pipe an SSE stream straight
// through, per spec.md §2's data-flow summary.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req provider.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, gatewayerr.Validation("invalid_request", "invalid request body: "+err.Error()))
		return
	}
	if err := validateChatRequest(req); err != nil {
		s.writeError(w, err)
		return
	}

	if req.Stream {
		s.streamChatCompletion(w, r, req)
		return
	}

	if cached, ok := s.cache.Lookup(r.Context(), req); ok {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cached)
		return
	}

	resp, err := s.router.RouteUnary(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.cache.Store(r.Context(), req, *resp)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func validateChatRequest(req provider.ChatRequest) error {
	if req.Model == "" {
		return gatewayerr.Validation("missing_model", "model is required")
	}
	if len(req.Messages) == 0 {
		return gatewayerr.Validation("missing_messages", "messages must be a non-empty array")
	}
	return nil
}

// streamChatCompletion pipes provider SSE frames back to the client
// verbatim as Chat-Completions chunks, terminated by [DONE]. Per spec.md
// §4.5, a mid-stream upstream error is surfaced to the caller, never used
// to trigger fallback — the candidate is already committed once
// RouteStream returns.
func (s *Server) streamChatCompletion(w http.ResponseWriter, r *http.Request, req provider.ChatRequest) {
	ch, _, err := s.router.RouteStream(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sw, err := newSSEWriter(w, s.logger)
	if err != nil {
		s.writeError(w, gatewayerr.Internal(err))
		return
	}

	for frame := range ch {
		if frame.Err != nil {
			s.logger.Warn("mid-stream provider error", zap.Error(frame.Err))
			sw.writeData(map[string]any{"error": frame.Err.Error()})
			break
		}
		if err := sw.writeData(frame.Chunk); err != nil {
			s.logger.Warn("stream write failed", zap.Error(err))
			return
		}
	}

	sw.done()
}
