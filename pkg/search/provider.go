package search

import (
	"context"
	"net/http"
	"slices"
)

// Provider builds requests for one search backend and parses its responses.
//
// ParseResponse must be pure: the same body and options always produce the
// same results, and it performs no I/O.
type Provider interface {
	Name() string
	BuildRequest(ctx context.Context, opts Options) (*http.Request, error)
	ParseResponse(body []byte, opts Options) ([]Result, error)
}

// Registry stores named providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry holding every built-in provider enabled in cfg.
func NewRegistry(cfg *Config) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	registerProviders(r, cfg.WithDefaults())
	return r
}

// Register adds or replaces a provider by name.
func (r *Registry) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[provider.Name()] = provider
}

// Get returns a provider by name.
func (r *Registry) Get(name string) Provider {
	if r == nil {
		return nil
	}
	return r.providers[name]
}

// Names returns registered provider names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func registerProviders(registry *Registry, cfg *Config) {
	if registry == nil || cfg == nil {
		return
	}
	if isEnabled(cfg.DDG.Enabled, true) {
		registry.Register(NewDuckDuckGoProvider(cfg.DDG))
	}
	if isEnabled(cfg.Arxiv.Enabled, true) {
		registry.Register(NewArxivProvider(cfg.Arxiv))
	}
}
