package engine

import (
	"log"

	"gatekeeper-backend/internal/metadata"
)

// CompileRules precompiles every condition in the rule list: script and
// cross_field conditions, conditional gates and their nested rules,
// state machine transition guards, and custom format patterns. Registry
// rule sets are shared across requests, so their compiled programs must
// be in place before publication; the lazy compile path in the
// evaluators only serves request-local inline rules. A condition that
// does not compile is logged and left uncompiled, and the rule fails
// closed at evaluation time.
func CompileRules(rules []*metadata.Rule) {
	for _, rule := range rules {
		switch rule.Type {
		case metadata.RuleTypeScript, metadata.RuleTypeCrossField, metadata.RuleTypeConditional:
			if prog, err := CompileCondition(rule.Definition.Condition); err != nil {
				log.Printf("WARN: rule %q condition does not compile: %v", rule.Name, err)
			} else {
				rule.Compiled = prog
			}
			if rule.Type == metadata.RuleTypeConditional {
				CompileRules(rule.Definition.Rules)
			}
		case metadata.RuleTypeStateMachine:
			for i := range rule.Definition.Transitions {
				t := &rule.Definition.Transitions[i]
				if t.Condition == "" {
					continue
				}
				if prog, err := CompileCondition(t.Condition); err != nil {
					log.Printf("WARN: rule %q transition guard does not compile: %v", rule.Name, err)
				} else {
					t.Compiled = prog
				}
			}
		case metadata.RuleTypeFormat:
			if rule.Definition.Pattern != "" {
				if _, err := resolvePattern(rule); err != nil {
					log.Printf("WARN: rule %q pattern does not compile: %v", rule.Name, err)
				}
			}
		}
	}
}

// CompileRuleSets precompiles every rule set. It is the loader's prepare
// hook, run before the registry publishes the new rule sets to requests.
func CompileRuleSets(ruleSets []*metadata.RuleSet) {
	for _, rs := range ruleSets {
		CompileRules(rs.Rules())
	}
}
