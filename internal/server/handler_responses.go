package server

import (
	"encoding/json"
	"net/http"

	"github.com/hemanth/llmux/internal/gatewayerr"
	"github.com/hemanth/llmux/internal/openresponses"
	"github.com/hemanth/llmux/internal/provider"
	"go.uber.org/zap"
)

// handleResponses serves POST /v1/responses: normalize input, expand any
// previous_response_id conversation, translate to Chat-Completions, route,
// translate back, store, reply — unary or streaming, per spec.md §4.6.
func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	var req openresponses.ResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, gatewayerr.Validation("invalid_request", "invalid request body: "+err.Error()))
		return
	}
	if req.Model == "" {
		s.writeError(w, gatewayerr.Validation("missing_model", "model is required"))
		return
	}

	items, err := openresponses.NormalizeInput(req.Input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.PreviousResponseID != "" {
		stored, ok := s.store.Get(req.PreviousResponseID)
		if !ok {
			s.writeError(w, gatewayerr.NotFound("unknown_response_id", "unknown previous_response_id: "+req.PreviousResponseID))
			return
		}
		items = openresponses.ExpandInput(stored.Input, stored.Response, items)
	}

	chatReq, err := openresponses.ToChatRequest(req, items)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Stream {
		s.streamResponses(w, r, chatReq, items)
		return
	}

	chatResp, err := s.router.RouteUnary(r.Context(), chatReq)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := openresponses.FromChatResponse(*chatResp)
	s.store.Set(resp.ID, resp, items)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// streamResponses drives an openresponses.Emitter from the router's
// provider.StreamFrame channel, writing each emitted StreamEvent as an SSE
// frame, and stores the completed response for later continuation via
// previous_response_id. A mid-stream upstream error is surfaced through
// Emitter.Fail rather than silently dropped, per spec.md §4.6.3 step 3.
func (s *Server) streamResponses(w http.ResponseWriter, r *http.Request, chatReq provider.ChatRequest, input []openresponses.InputItem) {
	ch, providerName, err := s.router.RouteStream(r.Context(), chatReq)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sw, err := newSSEWriter(w, s.logger)
	if err != nil {
		s.writeError(w, gatewayerr.Internal(err))
		return
	}

	emitter := openresponses.NewEmitter(chatReq.Model, providerName)
	writeAll := func(events []openresponses.StreamEvent) bool {
		for _, ev := range events {
			if err := sw.writeEvent(ev.Type, ev); err != nil {
				s.logger.Warn("stream write failed", zap.Error(err))
				return false
			}
		}
		return true
	}

	if !writeAll(emitter.Open()) {
		return
	}

	var failed bool
	var finalEvents []openresponses.StreamEvent
	for frame := range ch {
		if frame.Err != nil {
			s.logger.Warn("mid-stream provider error", zap.Error(frame.Err))
			finalEvents = emitter.Fail(frame.Err.Error())
			failed = true
			break
		}
		if !writeAll(emitter.Feed(frame.Chunk)) {
			return
		}
	}
	if !failed {
		finalEvents = emitter.Close()
	}

	if !writeAll(finalEvents) {
		return
	}

	for _, ev := range finalEvents {
		if ev.Response != nil && (ev.Type == openresponses.EventResponseCompleted || ev.Type == openresponses.EventResponseFailed) {
			s.store.Set(ev.Response.ID, *ev.Response, input)
		}
	}

	sw.done()
}
