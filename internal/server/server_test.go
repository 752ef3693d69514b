package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", "http://unused.invalid", nil)})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body healthBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestHandleHealth_UnauthenticatedEvenWithKeysConfigured(t *testing.T) {
	s := newTestServer(t, testServerOpts{
		registry: testRegistry(t, "groq", "http://unused.invalid", nil),
		apiKeys:  map[string]string{"default": "secret"},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandleListModels(t *testing.T) {
	reg := testRegistry(t, "groq", "http://unused.invalid", []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant"})
	s := newTestServer(t, testServerOpts{registry: reg})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body modelListBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, "list", body.Object)
}
