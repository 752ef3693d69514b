// Package server exposes llmux's HTTP surface: health probes, model
// listing, and the two chat-shaped endpoints (Chat-Completions and
// OpenResponses), wired per spec.md §6.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hemanth/llmux/internal/cache"
	"github.com/hemanth/llmux/internal/config"
	"github.com/hemanth/llmux/internal/registry"
	llmuxrouter "github.com/hemanth/llmux/internal/router"
	"github.com/hemanth/llmux/internal/store"
	"go.uber.org/zap"
)

// Server holds the HTTP mux and every dependency its handlers need.
type Server struct {
	mux chi.Router

	cfg      *config.Config
	registry *registry.Registry
	router   *llmuxrouter.Router
	cache    *cache.Cache
	store    *store.Store
	logger   *zap.Logger

	httpClient *http.Client
}

// Deps bundles the Server's dependencies, built once at startup in main.
type Deps struct {
	Config     *config.Config
	Registry   *registry.Registry
	Router     *llmuxrouter.Router
	Cache      *cache.Cache
	Store      *store.Store
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// New builds a Server, wires up routes and middleware, and returns it
// ready to use as an http.Handler.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := d.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	s := &Server{
		cfg:        d.Config,
		registry:   d.Registry,
		router:     d.Router,
		cache:      d.Cache,
		store:      d.Store,
		logger:     logger,
		httpClient: httpClient,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/health/providers", s.handleHealthProviders)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/v1/models", s.handleListModels)
		r.Post("/v1/chat/completions", s.handleChatCompletions)
		r.Post("/v1/responses", s.handleResponses)
	})

	s.mux = r
}

// ServeHTTP makes Server satisfy http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
