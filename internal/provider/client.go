package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hemanth/llmux/internal/registry"
	"go.uber.org/zap"
)

// Mode names the two call shapes a Client offers: a unary call
// (InvokeUnary) or an SSE stream (InvokeStream). Neither method takes a
// Mode argument.
type Mode int

const (
	Unary Mode = iota
	Streaming
)

// UpstreamError carries the HTTP status and raw body of a non-2xx response
// from an upstream provider, per spec.md §4.4.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// StreamFrame is one decoded item from a provider's SSE stream: either a
// ChatChunk, or a terminal error. The stream is done when the channel is
// closed with no trailing error frame (in the [DONE] case) or after an
// error frame (upstream failure mid-stream).
type StreamFrame struct {
	Chunk *ChatChunk
	Err   error
}

// Client issues Chat-Completions calls against any OpenAI-compatible
// upstream described by a registry.Descriptor.
type Client struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient builds a Client. A nil logger falls back to a no-op logger.
func NewClient(httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{HTTPClient: httpClient, Logger: logger}
}

// InvokeUnary performs a single non-streaming Chat-Completions call.
func (c *Client) InvokeUnary(ctx context.Context, d registry.Descriptor, req ChatRequest) (*ChatResponse, error) {
	upstream := req.ForUpstream(req.Model, false)

	httpResp, cancel, err := c.send(ctx, d, upstream)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, readUpstreamError(d.Name, httpResp)
	}

	var resp ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", d.Name, err)
	}
	resp.Provider = d.Name
	return &resp, nil
}

// InvokeStream opens a server-sent-event stream against the upstream. It
// returns once the response headers arrive (HTTP 200) — this is the
// router's commit point. The returned channel is closed when the stream
// ends; a malformed frame is logged and skipped, never terminating the
// stream early, per spec.md §4.4.
func (c *Client) InvokeStream(ctx context.Context, d registry.Descriptor, req ChatRequest) (<-chan StreamFrame, error) {
	upstream := req.ForUpstream(req.Model, true)

	httpResp, cancel, err := c.send(ctx, d, upstream)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode != http.StatusOK {
		defer cancel()
		defer httpResp.Body.Close()
		return nil, readUpstreamError(d.Name, httpResp)
	}

	ch := make(chan StreamFrame)
	go func() {
		defer cancel()
		c.pump(ctx, d.Name, httpResp.Body, ch)
	}()
	return ch, nil
}

// send issues the HTTP request, enforcing the provider's timeout on both
// header and body phases (spec.md §4.4). The returned cancel func must be
// called once the caller is done reading the response body — deferred
// immediately for unary calls, deferred inside the stream-pumping
// goroutine for streaming calls.
func (c *Client) send(ctx context.Context, d registry.Descriptor, req ChatRequest) (*http.Response, context.CancelFunc, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, func() {}, fmt.Errorf("marshaling request: %w", err)
	}

	cctx := ctx
	cancel := func() {}
	if d.Timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, d.Timeout)
	}

	url := strings.TrimRight(d.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(cctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, func() {}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.APIKey)
	for k, v := range d.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, func() {}, fmt.Errorf("sending request to %s: %w", d.Name, err)
	}
	return resp, cancel, nil
}

func readUpstreamError(provider string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	return &UpstreamError{Provider: provider, StatusCode: resp.StatusCode, Body: string(b)}
}

// pump reads SSE lines from body and decodes them into StreamFrames.
// Interprets the SSE framing rules of spec.md §4.4: blank lines and
// comment lines (starting with ":") are skipped, "data: [DONE]" ends the
// stream cleanly, and "data: <json>" lines decode into ChatChunks. A
// malformed chunk is logged and skipped rather than terminating the
// stream.
func (c *Client) pump(ctx context.Context, providerName string, body io.ReadCloser, ch chan<- StreamFrame) {
	defer close(ch)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return
		}

		var chunk ChatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			c.Logger.Warn("skipping malformed stream chunk",
				zap.String("provider", providerName),
				zap.Error(err),
			)
			continue
		}

		select {
		case ch <- StreamFrame{Chunk: &chunk}:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case ch <- StreamFrame{Err: fmt.Errorf("reading %s stream: %w", providerName, err)}:
		case <-ctx.Done():
		}
	}
}
