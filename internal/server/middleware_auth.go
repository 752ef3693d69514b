package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/hemanth/llmux/internal/gatewayerr"
)

type contextKey int

const clientLabelKey contextKey = iota

// clientLabel returns the label recorded for the request's bearer key, or
// "anonymous" if auth middleware never ran (e.g. in a test handler called
// directly).
func clientLabel(ctx context.Context) string {
	if v, ok := ctx.Value(clientLabelKey).(string); ok {
		return v
	}
	return "anonymous"
}

// authMiddleware implements spec.md §6's bearer-token check: compare the
// presented key against the configured label->key map, attach the
// matching label to the request context, and reject with 401 on mismatch.
// When no keys are configured, auth is disabled and every request is
// labeled "anonymous".
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys := s.cfg.Auth.Keys()
		if len(keys) == 0 {
			ctx := context.WithValue(r.Context(), clientLabelKey, "anonymous")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		presented := bearerToken(r.Header.Get("Authorization"))
		if presented == "" {
			s.writeError(w, gatewayerr.Authentication("missing_api_key", "missing API key"))
			return
		}

		for label, key := range keys {
			if key == presented {
				ctx := context.WithValue(r.Context(), clientLabelKey, label)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		s.writeError(w, gatewayerr.Authentication("invalid_api_key", "invalid API key"))
	})
}

// bearerToken accepts both "Bearer <key>" and a bare key in the
// Authorization header.
func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return rest
	}
	return header
}
