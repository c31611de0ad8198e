package metadata

import "encoding/json"

// RuleType identifies the validation strategy for a rule.
type RuleType string

const (
	RuleTypeScript       RuleType = "script"
	RuleTypeUnique       RuleType = "unique"
	RuleTypeStateMachine RuleType = "state_machine"
	RuleTypeCrossField   RuleType = "cross_field"
	RuleTypeAsync        RuleType = "async"
	RuleTypeConditional  RuleType = "conditional"
	RuleTypeFormat       RuleType = "format"
	RuleTypeRange        RuleType = "range"
)

// Event is the lifecycle event a validation run is performed for.
type Event string

const (
	EventInsert Event = "insert"
	EventUpdate Event = "update"
	EventDelete Event = "delete"
)

// Valid reports whether e is one of the known lifecycle events.
func (e Event) Valid() bool {
	return e == EventInsert || e == EventUpdate || e == EventDelete
}

// Severity classifies how the host application should treat a violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// TransitionFrom handles both string and []string for the "from" field.
type TransitionFrom []string

func (t *TransitionFrom) UnmarshalJSON(data []byte) error {
	// Try string first
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = []string{single}
		return nil
	}
	// Try array
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*t = arr
	return nil
}

func (t TransitionFrom) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Contains reports whether state is a member of the from set.
func (t TransitionFrom) Contains(state string) bool {
	for _, s := range t {
		if s == state {
			return true
		}
	}
	return false
}

// Transition represents a single allowed state change for a state_machine rule.
type Transition struct {
	From      TransitionFrom `json:"from"`
	To        string         `json:"to"`
	Condition string         `json:"condition,omitempty"`

	// Compiled holds the compiled guard expression (not serialized).
	Compiled any `json:"-"`
}

// RuleDefinition is the variant-specific payload of a rule. Which fields
// are meaningful depends on the rule's Type.
type RuleDefinition struct {
	// script, cross_field, conditional
	Condition string `json:"condition,omitempty"`

	// unique, cross_field
	Fields []string `json:"fields,omitempty"`
	Scope  string   `json:"scope,omitempty"`

	// state_machine
	StateField  string       `json:"state_field,omitempty"`
	Transitions []Transition `json:"transitions,omitempty"`

	// async
	Endpoint string `json:"endpoint,omitempty"`
	Method   string `json:"method,omitempty"`

	// conditional (nested rules)
	Rules []*Rule `json:"rules,omitempty"`

	// format, range
	Field   string `json:"field,omitempty"`
	Format  string `json:"format,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Flags   string `json:"flags,omitempty"`

	// range
	Min          any  `json:"min,omitempty"`
	Max          any  `json:"max,omitempty"`
	MinExclusive bool `json:"min_exclusive,omitempty"`
	MaxExclusive bool `json:"max_exclusive,omitempty"`
}

// Rule is one declarative validation constraint. Name should be unique
// within a rule set; the engine does not enforce this, but duplicate names
// make violation reports ambiguous.
type Rule struct {
	Name       string         `json:"name"`
	Label      string         `json:"label,omitempty"`
	Type       RuleType       `json:"type"`
	Active     bool           `json:"active"`
	Events     []Event        `json:"events,omitempty"`
	Severity   Severity       `json:"severity,omitempty"`
	Message    string         `json:"message,omitempty"`
	Definition RuleDefinition `json:"definition"`

	// Compiled holds the compiled condition program (set lazily, not serialized).
	Compiled any `json:"-"`
}

// AppliesTo reports whether the rule opts in to the given lifecycle event.
// A rule with no events listed applies to every event.
func (r *Rule) AppliesTo(event Event) bool {
	if len(r.Events) == 0 {
		return true
	}
	for _, e := range r.Events {
		if e == event {
			return true
		}
	}
	return false
}
