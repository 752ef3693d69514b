package server

import (
	"encoding/json"
	"net/http"
)

type modelListEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type modelListBody struct {
	Object string           `json:"object"`
	Data   []modelListEntry `json:"data"`
}

// handleListModels renders the OpenAI-compatible GET /v1/models listing:
// one entry per native model advertised by an enabled provider.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	var data []modelListEntry
	for _, d := range s.registry.List() {
		for _, m := range d.SupportedModels {
			data = append(data, modelListEntry{
				ID:      m,
				Object:  "model",
				OwnedBy: d.Name,
			})
		}
	}
	if data == nil {
		data = []modelListEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(modelListBody{Object: "list", Data: data})
}
