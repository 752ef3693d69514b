// Package metrics defines the Prometheus instrumentation hooks the router
// and cache call into, per SPEC_FULL.md's ambient metrics section.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters exposed by a gateway instance, built by
// New, which registers everything against the given registerer. A nil
// *Metrics is accepted everywhere: every Observe* method is a no-op on a
// nil receiver.
type Metrics struct {
	RouterAttempts  *prometheus.CounterVec
	RouterFallbacks *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// New builds and registers the gateway's counters against reg. Passing
// prometheus.NewRegistry() keeps tests isolated from the global default
// registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RouterAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmux",
			Subsystem: "router",
			Name:      "attempts_total",
			Help:      "Number of upstream invocation attempts, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		RouterFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmux",
			Subsystem: "router",
			Name:      "fallbacks_total",
			Help:      "Number of times routing fell back to the next candidate provider.",
		}, []string{"from_provider"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llmux",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Number of cache lookups that returned a stored response.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llmux",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Number of cache lookups that found nothing.",
		}),
	}

	reg.MustRegister(m.RouterAttempts, m.RouterFallbacks, m.CacheHits, m.CacheMisses)
	return m
}

// AttemptOutcome labels a single router attempt against one provider.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptFailure AttemptOutcome = "failure"
	AttemptSkipped AttemptOutcome = "skipped"
)

// ObserveAttempt records one router attempt against providerName.
func (m *Metrics) ObserveAttempt(providerName string, outcome AttemptOutcome) {
	if m == nil {
		return
	}
	m.RouterAttempts.WithLabelValues(providerName, string(outcome)).Inc()
}

// ObserveFallback records that routing moved on from fromProvider to try
// the next candidate.
func (m *Metrics) ObserveFallback(fromProvider string) {
	if m == nil {
		return
	}
	m.RouterFallbacks.WithLabelValues(fromProvider).Inc()
}

// ObserveCacheHit and ObserveCacheMiss record one cache lookup outcome.
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) ObserveCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
