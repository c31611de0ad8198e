package metadata

// RuleSetDefinition is the JSONB content of a rule set.
type RuleSetDefinition struct {
	Description string  `json:"description,omitempty"`
	Rules       []*Rule `json:"rules"`
}

// RuleSet is a named, ordered collection of rules from the _rulesets table.
type RuleSet struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Definition RuleSetDefinition `json:"definition"`
	Active     bool              `json:"active"`
}

// Rules returns the ordered rule list.
func (rs *RuleSet) Rules() []*Rule {
	return rs.Definition.Rules
}

// GetRule returns the rule with the given name, or nil.
func (rs *RuleSet) GetRule(name string) *Rule {
	for _, r := range rs.Definition.Rules {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// RuleNames returns the names of all rules in order.
func (rs *RuleSet) RuleNames() []string {
	names := make([]string, len(rs.Definition.Rules))
	for i, r := range rs.Definition.Rules {
		names[i] = r.Name
	}
	return names
}
