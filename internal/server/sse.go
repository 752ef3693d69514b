package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// sseWriter wraps an http.ResponseWriter with the SSE framing of spec.md
// §6: headers set once up front, each write flushed immediately so the
// client sees tokens as they arrive.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	logger  *zap.Logger
}

// newSSEWriter sets the SSE headers and returns a writer, or an error if
// the underlying ResponseWriter can't be flushed incrementally.
func newSSEWriter(w http.ResponseWriter, logger *zap.Logger) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &sseWriter{w: w, flusher: flusher, logger: logger}, nil
}

// writeData writes a Chat-Completions-style "data: {json}\n\n" frame.
func (s *sseWriter) writeData(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling SSE frame: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return fmt.Errorf("writing SSE frame: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// writeEvent writes an OpenResponses-style "event: <type>\ndata:
// {json}\n\n" frame.
func (s *sseWriter) writeEvent(eventType string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling SSE event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, b); err != nil {
		return fmt.Errorf("writing SSE event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// done writes the terminal "data: [DONE]\n\n" sentinel shared by both
// wire formats.
func (s *sseWriter) done() {
	fmt.Fprintf(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}
