package engine

import (
	"fmt"

	"gatekeeper-backend/internal/metadata"
)

// Result is the outcome of evaluating one rule. A clean validation run
// produces no results at all; callers should treat an empty list as "no
// violations", not as "no rules were checked".
type Result struct {
	Valid    bool              `json:"valid"`
	Rule     string            `json:"rule,omitempty"`
	Message  string            `json:"message,omitempty"`
	Severity metadata.Severity `json:"severity,omitempty"`
}

func passResult() Result {
	return Result{Valid: true}
}

// failResult reports a business violation: legitimate data that does not
// satisfy the rule.
func failResult(rule *metadata.Rule, message string) Result {
	severity := rule.Severity
	if severity == "" {
		severity = metadata.SeverityError
	}
	return Result{
		Valid:    false,
		Rule:     rule.Name,
		Message:  message,
		Severity: severity,
	}
}

// faultResult reports that the rule itself could not be evaluated. The
// message prefix lets callers distinguish internal faults from business
// violations.
func faultResult(rule *metadata.Rule, detail string) Result {
	return failResult(rule, fmt.Sprintf("evaluation error: %s", detail))
}

// ruleMessage returns the rule's configured message, or the fallback.
func ruleMessage(rule *metadata.Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}
