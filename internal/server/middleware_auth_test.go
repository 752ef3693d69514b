package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware_NoKeysConfiguredAllowsAnonymous(t *testing.T) {
	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"})})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_MissingKeyRejected(t *testing.T) {
	s := newTestServer(t, testServerOpts{
		registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"}),
		apiKeys:  map[string]string{"default": "secret"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_WrongKeyRejected(t *testing.T) {
	s := newTestServer(t, testServerOpts{
		registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"}),
		apiKeys:  map[string]string{"default": "secret"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_CorrectKeyAccepted(t *testing.T) {
	s := newTestServer(t, testServerOpts{
		registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"}),
		apiKeys:  map[string]string{"ops": "secret"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_BareKeyWithoutBearerPrefixAccepted(t *testing.T) {
	s := newTestServer(t, testServerOpts{
		registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"}),
		apiKeys:  map[string]string{"ops": "secret"},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "secret")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
