// Package router implements the routing and fallback engine of spec.md
// §4.5: turning one inbound request into an ordered candidate list of
// providers, trying each in turn, and falling back silently on failure.
package router

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hemanth/llmux/internal/alias"
	"github.com/hemanth/llmux/internal/gatewayerr"
	"github.com/hemanth/llmux/internal/metrics"
	"github.com/hemanth/llmux/internal/provider"
	"github.com/hemanth/llmux/internal/registry"
	"go.uber.org/zap"
)

// Strategy selects the order in which equally-eligible candidate
// providers are tried when the caller did not pin a specific provider.
type Strategy string

const (
	StrategyFirstAvailable Strategy = "first-available"
	StrategyRandom         Strategy = "random"
	StrategyRoundRobin     Strategy = "round-robin"
)

// Router orders candidate providers for a request and drives the
// try-then-fallback loop against the Provider Client.
type Router struct {
	registry *registry.Registry
	aliases  alias.Table
	client   *provider.Client
	strategy Strategy
	fallback []string
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu      sync.Mutex
	rrIndex map[string]int
}

// Config bundles the Router's dependencies and static configuration.
type Config struct {
	Registry        *registry.Registry
	Aliases         alias.Table
	Client          *provider.Client
	DefaultStrategy Strategy
	FallbackChain   []string
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

// New builds a Router. An empty DefaultStrategy defaults to
// first-available.
func New(cfg Config) *Router {
	strategy := cfg.DefaultStrategy
	if strategy == "" {
		strategy = StrategyFirstAvailable
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		registry: cfg.Registry,
		aliases:  cfg.Aliases,
		client:   cfg.Client,
		strategy: strategy,
		fallback: cfg.FallbackChain,
		metrics:  cfg.Metrics,
		logger:   logger,
		rrIndex:  make(map[string]int),
	}
}

// candidate is one provider worth attempting for a given request, already
// resolved to its native model name.
type candidate struct {
	descriptor  registry.Descriptor
	nativeModel string
}

// candidates builds the ordered list of providers to try for req, per
// spec.md §4.5:
//   - an explicit req.Provider pins exactly that provider (no fallback);
//   - otherwise the configured fallback chain, filtered to providers that
//     support the requested model, ordered by the configured strategy;
//   - providers that don't support the model are skipped silently, never
//     surfaced as an error.
func (r *Router) candidates(req provider.ChatRequest) ([]candidate, error) {
	if req.Provider != "" {
		d, ok := r.registry.Get(req.Provider)
		if !ok {
			return nil, gatewayerr.NoProvidersAvailable()
		}
		native := r.aliases.Resolve(req.Model, d.Name)
		if !d.SupportsModel(native) {
			return nil, gatewayerr.NoProvidersAvailable()
		}
		return []candidate{{descriptor: d, nativeModel: native}}, nil
	}

	var descriptors []registry.Descriptor
	if len(r.fallback) > 0 {
		for _, name := range r.fallback {
			if d, ok := r.registry.Get(name); ok {
				descriptors = append(descriptors, d)
			}
		}
	} else {
		descriptors = r.registry.List()
	}

	var eligible []candidate
	for _, d := range descriptors {
		native := r.aliases.Resolve(req.Model, d.Name)
		if !d.SupportsModel(native) {
			continue
		}
		eligible = append(eligible, candidate{descriptor: d, nativeModel: native})
	}

	if len(eligible) == 0 {
		return nil, gatewayerr.NoProvidersAvailable()
	}

	return r.order(req.Model, eligible), nil
}

// order arranges eligible candidates per the configured strategy. The
// first-available strategy is a no-op (candidates already carry the
// fallback-chain order, or the registry's List order when no chain is set); random performs an in-place Fisher-Yates shuffle; round-robin
// rotates the start position per model using a mutex-guarded counter.
func (r *Router) order(model string, eligible []candidate) []candidate {
	switch r.strategy {
	case StrategyRandom:
		shuffled := make([]candidate, len(eligible))
		copy(shuffled, eligible)
		for i := len(shuffled) - 1; i > 0; i-- {
			j := rand.Intn(i + 1)
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		}
		return shuffled

	case StrategyRoundRobin:
		r.mu.Lock()
		start := r.rrIndex[model] % len(eligible)
		r.rrIndex[model] = start + 1
		r.mu.Unlock()

		rotated := make([]candidate, len(eligible))
		for i := range eligible {
			rotated[i] = eligible[(start+i)%len(eligible)]
		}
		return rotated

	default: // StrategyFirstAvailable
		return eligible
	}
}

// RouteUnary tries each candidate in order until one succeeds, returning
// the first successful response and the provider that produced it. If
// every candidate fails, it returns a gatewayerr.AllProvidersFailed error
// wrapping the last upstream error.
func (r *Router) RouteUnary(ctx context.Context, req provider.ChatRequest) (*provider.ChatResponse, error) {
	cands, err := r.candidates(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i, c := range cands {
		upstreamReq := req
		resp, err := r.client.InvokeUnary(ctx, c.descriptor, upstreamReq.ForUpstream(c.nativeModel, false))
		if err != nil {
			r.metrics.ObserveAttempt(c.descriptor.Name, metrics.AttemptFailure)
			r.logger.Warn("provider attempt failed",
				zap.String("provider", c.descriptor.Name),
				zap.Error(err),
			)
			lastErr = err
			if i < len(cands)-1 {
				r.metrics.ObserveFallback(c.descriptor.Name)
			}
			continue
		}
		r.metrics.ObserveAttempt(c.descriptor.Name, metrics.AttemptSuccess)
		return resp, nil
	}

	return nil, gatewayerr.AllProvidersFailed(lastErr)
}

// RouteStream is RouteUnary's streaming counterpart. Fallback can only
// happen before the first byte of the chosen candidate's response — once
// InvokeStream returns a channel, that candidate is committed and its
// later failures surface as stream errors, not fallbacks.
func (r *Router) RouteStream(ctx context.Context, req provider.ChatRequest) (<-chan provider.StreamFrame, string, error) {
	cands, err := r.candidates(req)
	if err != nil {
		return nil, "", err
	}

	var lastErr error
	for i, c := range cands {
		upstreamReq := req
		ch, err := r.client.InvokeStream(ctx, c.descriptor, upstreamReq.ForUpstream(c.nativeModel, true))
		if err != nil {
			r.metrics.ObserveAttempt(c.descriptor.Name, metrics.AttemptFailure)
			r.logger.Warn("provider stream attempt failed",
				zap.String("provider", c.descriptor.Name),
				zap.Error(err),
			)
			lastErr = err
			if i < len(cands)-1 {
				r.metrics.ObserveFallback(c.descriptor.Name)
			}
			continue
		}
		r.metrics.ObserveAttempt(c.descriptor.Name, metrics.AttemptSuccess)
		return ch, c.descriptor.Name, nil
	}

	return nil, "", gatewayerr.AllProvidersFailed(lastErr)
}
