package metadata

import "sync"

type Registry struct {
	mu       sync.RWMutex
	ruleSets map[string]*RuleSet
}

func NewRegistry() *Registry {
	return &Registry{
		ruleSets: make(map[string]*RuleSet),
	}
}

// GetRuleSet returns the rule set with the given name, or nil.
func (r *Registry) GetRuleSet(name string) *RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ruleSets[name]
}

// AllRuleSets returns all registered rule sets.
func (r *Registry) AllRuleSets() []*RuleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sets := make([]*RuleSet, 0, len(r.ruleSets))
	for _, rs := range r.ruleSets {
		sets = append(sets, rs)
	}
	return sets
}

// Load replaces all rule sets in the registry.
// Called during startup and after admin mutations.
func (r *Registry) Load(ruleSets []*RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ruleSets = make(map[string]*RuleSet, len(ruleSets))
	for _, rs := range ruleSets {
		r.ruleSets[rs.Name] = rs
	}
}
