// Package registry holds the provider descriptor table built from
// configuration at startup, per spec.md §4.1.
package registry

import (
	"time"

	"github.com/hemanth/llmux/internal/config"
)

// Descriptor is the immutable, per-provider configuration the rest of the
// gateway reasons about: endpoint, credentials, supported model list,
// timeout, and any extra headers a provider's auth quirks require.
type Descriptor struct {
	Name            string
	BaseURL         string
	APIKey          string
	SupportedModels []string
	Timeout         time.Duration
	ExtraHeaders    map[string]string
	MaxRetries      int
}

// SupportsModel reports whether the native model string is one this
// provider advertises.
func (d Descriptor) SupportsModel(nativeModel string) bool {
	for _, m := range d.SupportedModels {
		if m == nativeModel {
			return true
		}
	}
	return false
}

// Registry enumerates enabled providers, in the order of the names passed
// to New. It is built once at startup and never mutated afterward, so
// concurrent reads need no locking.
type Registry struct {
	order []string
	byName map[string]Descriptor
}

// New builds a Registry from the raw provider configuration map. A provider
// is enabled iff its config block is present, its `enabled` flag is true,
// and its API key is non-empty. Go map iteration order is randomized, so
// the caller supplies `order` to make `List` deterministic. cmd/llmux
// passes the provider names sorted alphabetically, because koanf's map
// unmarshaling does not keep YAML key order; List therefore does not
// follow the order in which providers appear in the config file.
func New(providers map[string]config.ProviderConfig, order []string) *Registry {
	r := &Registry{byName: make(map[string]Descriptor, len(providers))}

	seen := make(map[string]bool, len(order))
	for _, name := range order {
		seen[name] = true
		pc, ok := providers[name]
		if !ok || !pc.Enabled || pc.APIKey == "" {
			continue
		}
		r.byName[name] = toDescriptor(name, pc)
		r.order = append(r.order, name)
	}
	// Defensive: include any providers not present in `order` (e.g. when
	// the caller didn't thread key order through) so nothing silently
	// disappears — appended in map-iteration order, which is the best
	// that can be done without the original document order.
	for name, pc := range providers {
		if seen[name] || !pc.Enabled || pc.APIKey == "" {
			continue
		}
		r.byName[name] = toDescriptor(name, pc)
		r.order = append(r.order, name)
	}

	return r
}

func toDescriptor(name string, pc config.ProviderConfig) Descriptor {
	return Descriptor{
		Name:            name,
		BaseURL:         pc.BaseURL,
		APIKey:          pc.APIKey,
		SupportedModels: pc.Models,
		Timeout:         pc.Timeout,
		ExtraHeaders:    pc.ExtraHeaders,
		MaxRetries:      pc.MaxRetries,
	}
}

// Get returns the descriptor for a provider name and whether it exists
// (and is therefore enabled).
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Enabled reports whether the named provider is enabled.
func (r *Registry) Enabled(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// List returns all enabled providers in the order passed to New.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Supports reports whether the given provider exists and advertises the
// native model name.
func (r *Registry) Supports(provider, nativeModel string) bool {
	d, ok := r.byName[provider]
	if !ok {
		return false
	}
	return d.SupportsModel(nativeModel)
}
