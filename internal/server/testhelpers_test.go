package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hemanth/llmux/internal/alias"
	"github.com/hemanth/llmux/internal/cache"
	"github.com/hemanth/llmux/internal/config"
	"github.com/hemanth/llmux/internal/metrics"
	"github.com/hemanth/llmux/internal/provider"
	"github.com/hemanth/llmux/internal/registry"
	llmuxrouter "github.com/hemanth/llmux/internal/router"
	"github.com/hemanth/llmux/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

// newFakeUpstream returns an httptest server that speaks just enough of the
// OpenAI Chat-Completions wire format to exercise the router and cache.
func newFakeUpstream(t *testing.T, name string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"native-model","choices":[{"index":0,"message":{"role":"assistant","content":"hi from %s"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`, name)
	}))
}

func newFakeStreamingUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		w.Write([]byte(`data: {"id":"c1","choices":[{"index":0,"delta":{"content":"Hi"}}]}` + "\n"))
		flusher.Flush()
		w.Write([]byte(`data: {"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}` + "\n"))
		w.Write([]byte("data: [DONE]\n"))
		flusher.Flush()
	}))
}

func testRegistry(t *testing.T, name, baseURL string, models []string) *registry.Registry {
	t.Helper()
	providers := map[string]config.ProviderConfig{
		name: {Enabled: true, APIKey: "k", BaseURL: baseURL, Models: models, Timeout: 2 * time.Second},
	}
	return registry.New(providers, []string{name})
}

type testServerOpts struct {
	registry  *registry.Registry
	apiKeys   map[string]string
	cacheOn   bool
	cacheTTL  time.Duration
}

func newTestServer(t *testing.T, opts testServerOpts) *Server {
	t.Helper()

	cfg := &config.Config{Auth: config.AuthConfig{APIKeys: opts.apiKeys}}
	mets := metrics.New(prometheus.NewRegistry())
	client := provider.NewClient(http.DefaultClient, nil)
	rt := llmuxrouter.New(llmuxrouter.Config{
		Registry: opts.registry,
		Aliases:  alias.Table{},
		Client:   client,
		Metrics:  mets,
	})

	ttl := opts.cacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	c := cache.New(cache.NewMemoryBackend(100, ttl), ttl, opts.cacheOn, mets, nil)
	st := store.New(100, time.Hour)

	return New(Deps{
		Config:   cfg,
		Registry: opts.registry,
		Router:   rt,
		Cache:    c,
		Store:    st,
	})
}
