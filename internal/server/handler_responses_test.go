package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hemanth/llmux/internal/openresponses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleResponses_Unary(t *testing.T) {
	upstream := newFakeUpstream(t, "groq")
	defer upstream.Close()

	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", upstream.URL, []string{"m"})})

	reqBody, _ := json.Marshal(openresponses.ResponseRequest{
		Model: "m",
		Input: json.RawMessage(`"hello"`),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/responses", bytes.NewReader(reqBody))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp openresponses.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, openresponses.StatusCompleted, resp.Status)
	require.Len(t, resp.Output, 1)
	assert.Equal(t, openresponses.ItemTypeMessage, resp.Output[0].Type)
}

func TestHandleResponses_MissingModelRejected(t *testing.T) {
	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"})})

	reqBody, _ := json.Marshal(openresponses.ResponseRequest{Input: json.RawMessage(`"hi"`)})
	req := httptest.NewRequest(http.MethodPost, "/v1/responses", bytes.NewReader(reqBody))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleResponses_UnknownPreviousResponseIDRejected(t *testing.T) {
	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", "http://unused.invalid", []string{"m"})})

	reqBody, _ := json.Marshal(openresponses.ResponseRequest{
		Model:              "m",
		Input:              json.RawMessage(`"hi"`),
		PreviousResponseID: "resp_does_not_exist",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/responses", bytes.NewReader(reqBody))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleResponses_ContinuesWithPreviousResponseID(t *testing.T) {
	upstream := newFakeUpstream(t, "groq")
	defer upstream.Close()

	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", upstream.URL, []string{"m"})})

	firstBody, _ := json.Marshal(openresponses.ResponseRequest{Model: "m", Input: json.RawMessage(`"hello"`)})
	first := httptest.NewRecorder()
	s.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/responses", bytes.NewReader(firstBody)))
	require.Equal(t, http.StatusOK, first.Code)

	var firstResp openresponses.Response
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))

	secondBody, _ := json.Marshal(openresponses.ResponseRequest{
		Model:              "m",
		Input:              json.RawMessage(`"and then?"`),
		PreviousResponseID: firstResp.ID,
	})
	second := httptest.NewRecorder()
	s.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/responses", bytes.NewReader(secondBody)))
	require.Equal(t, http.StatusOK, second.Code)
}

func TestHandleResponses_Streaming(t *testing.T) {
	upstream := newFakeStreamingUpstream(t)
	defer upstream.Close()

	s := newTestServer(t, testServerOpts{registry: testRegistry(t, "groq", upstream.URL, []string{"m"})})

	reqBody, _ := json.Marshal(openresponses.ResponseRequest{
		Model:  "m",
		Input:  json.RawMessage(`"hello"`),
		Stream: true,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/responses", bytes.NewReader(reqBody))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "event: response.created")
	assert.Contains(t, body, "event: response.completed")
	assert.Contains(t, body, "[DONE]")
}
