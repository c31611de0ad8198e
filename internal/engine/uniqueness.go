package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gatekeeper-backend/internal/metadata"
)

// UniquenessChecker answers whether a combination of field values is
// unique. Returning true means no conflicting record exists. The engine
// treats it as an opaque predicate; what "unique" means (table, tenant,
// soft-deleted rows) belongs to the implementation.
type UniquenessChecker interface {
	CheckUnique(ctx context.Context, fields []string, values map[string]any, scope string, vctx *metadata.ValidationContext) (bool, error)
}

// evaluateUniqueRule projects the rule's fields out of the record and
// asks the injected checker. With no checker configured the rule passes
// (fail-open) with a logged warning; unlike the fail-closed evaluators,
// a deployment that forgets to wire a checker degrades loudly but does
// not reject every write.
func (e *Engine) evaluateUniqueRule(ctx context.Context, rule *metadata.Rule, vctx *metadata.ValidationContext) Result {
	if e.checker == nil {
		log.Printf("WARN: unique rule %q skipped: no uniqueness checker configured", rule.Name)
		return passResult()
	}

	fields := rule.Definition.Fields
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		values[f] = vctx.Record[f]
	}

	unique, err := e.checker.CheckUnique(ctx, fields, values, rule.Definition.Scope, vctx)
	if err != nil {
		return faultResult(rule, fmt.Sprintf("uniqueness check: %v", err))
	}
	if !unique {
		return failResult(rule, ruleMessage(rule,
			fmt.Sprintf("Values for %s must be unique", strings.Join(fields, ", "))))
	}
	return passResult()
}
