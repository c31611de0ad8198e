package engine

import (
	"context"

	"github.com/expr-lang/expr/vm"

	"gatekeeper-backend/internal/metadata"
)

// evaluateConditionalRule gates a nested rule list behind a condition.
// A falsy gate passes without evaluating any nested rule. A truthy gate
// evaluates the nested rules in order and returns the first failure,
// unlike the top-level dispatcher which always runs every rule.
func (e *Engine) evaluateConditionalRule(ctx context.Context, rule *metadata.Rule, vctx *metadata.ValidationContext, event metadata.Event) Result {
	prog, ok := rule.Compiled.(*vm.Program)
	if !ok || prog == nil {
		compiled, err := CompileCondition(rule.Definition.Condition)
		if err != nil {
			return faultResult(rule, err.Error())
		}
		rule.Compiled = compiled
		prog = compiled
	}

	gate, err := RunCondition(prog, vctx.Record)
	if err != nil {
		return faultResult(rule, err.Error())
	}
	if !IsTruthy(gate) {
		return passResult()
	}

	for _, nested := range rule.Definition.Rules {
		if !nested.Active {
			continue
		}
		if !nested.AppliesTo(event) {
			continue
		}
		result := e.evaluateRule(ctx, nested, vctx, event)
		if !result.Valid {
			return result
		}
	}
	return passResult()
}
