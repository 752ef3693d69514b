package server

import (
	"encoding/json"
	"net/http"

	"github.com/hemanth/llmux/internal/gatewayerr"
	"go.uber.org/zap"
)

// apiErrorBody is the `{error: {type, code, message}}` envelope of
// spec.md §7.
type apiErrorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError renders err as the JSON error envelope, mapping gatewayerr
// kinds to their HTTP status per spec.md §7. Any other error is treated
// as internal (500).
func (s *Server) writeError(w http.ResponseWriter, err error) {
	ge, ok := gatewayerr.As(err)
	if !ok {
		ge = gatewayerr.Internal(err)
	}

	if ge.Status >= 500 {
		s.logger.Error("request failed", zap.String("kind", string(ge.Kind)), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ge.Status)
	json.NewEncoder(w).Encode(apiErrorBody{Error: apiError{
		Type:    ge.EnvelopeType(),
		Code:    ge.Code,
		Message: ge.Message,
	}})
}
