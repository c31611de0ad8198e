package engine

import (
	"fmt"

	"github.com/expr-lang/expr/vm"

	"gatekeeper-backend/internal/metadata"
)

// EvaluateStateMachineRule guards transitions of the rule's state field.
// The rule only constrains transitions: when the prior record has no
// value for the state field (the insert case), it passes unconditionally.
// Otherwise some transition entry must match previous → current, and its
// optional condition must be truthy against the new record.
func EvaluateStateMachineRule(rule *metadata.Rule, vctx *metadata.ValidationContext) Result {
	stateField := rule.Definition.StateField

	previousState, hasPrevious := previousStateValue(vctx, stateField)
	if !hasPrevious {
		return passResult()
	}

	currentState := ""
	if v, ok := vctx.Record[stateField]; ok && v != nil {
		currentState = fmt.Sprintf("%v", v)
	}

	for i := range rule.Definition.Transitions {
		t := &rule.Definition.Transitions[i]
		if t.To != currentState {
			continue
		}
		if !t.From.Contains(previousState) {
			continue
		}
		if t.Condition == "" {
			return passResult()
		}
		allowed, err := evaluateTransitionCondition(t, vctx.Record)
		if err != nil {
			return faultResult(rule, fmt.Sprintf("transition condition: %v", err))
		}
		if allowed {
			return passResult()
		}
		// Condition blocked this entry; a later transition may still match.
	}

	return failResult(rule, ruleMessage(rule,
		fmt.Sprintf("Invalid transition from '%s' to '%s'", previousState, currentState)))
}

// previousStateValue reads the state field from the prior record.
// A nil old record or an absent/nil field value means no prior state.
func previousStateValue(vctx *metadata.ValidationContext, stateField string) (string, bool) {
	if vctx.OldRecord == nil {
		return "", false
	}
	v, ok := vctx.OldRecord[stateField]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// evaluateTransitionCondition compiles and runs a transition's guard
// condition against the new record. Uses lazy compilation with caching.
func evaluateTransitionCondition(t *metadata.Transition, record map[string]any) (bool, error) {
	prog, ok := t.Compiled.(*vm.Program)
	if !ok || prog == nil {
		compiled, err := CompileCondition(t.Condition)
		if err != nil {
			return false, err
		}
		t.Compiled = compiled
		prog = compiled
	}

	result, err := RunCondition(prog, record)
	if err != nil {
		return false, err
	}
	return IsTruthy(result), nil
}
