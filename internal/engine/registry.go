package engine

import (
	"sort"
	"sync"
)

type registry struct {
	mu        sync.RWMutex
	scenarios map[string]Scenario
}

func newRegistry() *registry {
	return &registry{scenarios: make(map[string]Scenario)}
}

// put stores a copy of s and returns the registration it replaced.
func (r *registry) put(s Scenario) (Scenario, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous, replaced := r.scenarios[s.Name]
	r.scenarios[s.Name] = s.clone()
	return previous, replaced
}

func (r *registry) get(name string) (Scenario, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, false
	}
	return s.clone(), true
}

func (r *registry) list() []Scenario {
	r.mu.RLock()
	out := make([]Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		out = append(out, s.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
