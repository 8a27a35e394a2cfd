package adapter

import (
	"sort"
	"strings"
)

// Registry is an explicit name -> adapter mapping. It is built by the
// composition root (the CLI or the API server); there is no package-level
// registration side channel.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter under its Info name. Later registrations with the
// same name win.
func (r *Registry) Register(a Adapter) {
	if r == nil {
		panic("adapter: register on nil registry")
	}
	if a == nil {
		panic("adapter: register nil adapter")
	}
	name := strings.TrimSpace(a.Info().Name)
	if name == "" {
		panic("adapter: adapter has empty name")
	}
	if r.adapters == nil {
		r.adapters = make(map[string]Adapter)
	}
	r.adapters[name] = a
}

// Get returns a named adapter if present.
func (r *Registry) Get(name string) (Adapter, bool) {
	if r == nil || r.adapters == nil {
		return nil, false
	}
	a, ok := r.adapters[strings.TrimSpace(name)]
	return a, ok
}

// Names lists registered adapter names, sorted.
func (r *Registry) Names() []string {
	if r == nil || len(r.adapters) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
