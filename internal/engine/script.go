package engine

import (
	"fmt"

	"github.com/expr-lang/expr/vm"

	"gatekeeper-backend/internal/metadata"
)

// EvaluateScriptRule evaluates a script or cross_field rule. Both run the
// rule's condition against the record; cross_field only differs in intent
// (it relates several fields). The rule passes iff the condition is truthy.
// A sandbox rejection or evaluation failure fails closed.
func EvaluateScriptRule(rule *metadata.Rule, vctx *metadata.ValidationContext) Result {
	prog, ok := rule.Compiled.(*vm.Program)
	if !ok || prog == nil {
		// Registry rules are compiled before publication; this path only
		// serves request-local inline rules.
		compiled, err := CompileCondition(rule.Definition.Condition)
		if err != nil {
			return faultResult(rule, err.Error())
		}
		rule.Compiled = compiled
		prog = compiled
	}

	result, err := RunCondition(prog, vctx.Record)
	if err != nil {
		return faultResult(rule, err.Error())
	}

	if !IsTruthy(result) {
		return failResult(rule, ruleMessage(rule, fmt.Sprintf("Rule %s failed", rule.Name)))
	}
	return passResult()
}
