package engine

import (
	"context"
	"log"

	"gatekeeper-backend/internal/instrument"
	"gatekeeper-backend/internal/metadata"
)

// Engine evaluates validation rules against records. The uniqueness
// checker and remote transport are injected at construction time so that
// engines with different collaborators can coexist in one process.
type Engine struct {
	checker   UniquenessChecker
	transport Transport
}

// Option configures an Engine.
type Option func(*Engine)

// WithUniquenessChecker injects the collaborator used by unique rules.
// Without one, unique rules pass with a logged warning.
func WithUniquenessChecker(c UniquenessChecker) Option {
	return func(e *Engine) { e.checker = c }
}

// WithTransport overrides the HTTP transport used by async rules.
func WithTransport(t Transport) Option {
	return func(e *Engine) { e.transport = t }
}

// New creates an Engine. The default transport is a shared HTTP client;
// there is no default uniqueness checker.
func New(opts ...Option) *Engine {
	e := &Engine{
		transport: NewHTTPTransport(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateRecord runs all rules against the context for the given
// lifecycle event and returns the failing results, in rule order.
// Inactive rules and rules that do not apply to the event are skipped.
// Rules are evaluated sequentially: a failing rule does not stop the
// rules after it, so callers always receive the complete violation set.
func (e *Engine) ValidateRecord(ctx context.Context, rules []*metadata.Rule, vctx *metadata.ValidationContext, event metadata.Event) []Result {
	_, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "engine", "validate", "record.validate")
	defer span.End()
	span.SetMetadata("event", string(event))
	span.SetMetadata("rule_count", len(rules))

	var failures []Result
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if !rule.AppliesTo(event) {
			continue
		}
		result := e.evaluateRule(ctx, rule, vctx, event)
		if !result.Valid {
			failures = append(failures, result)
		}
	}

	if len(failures) > 0 {
		span.SetMetadata("violations", len(failures))
		span.SetStatus("error")
	} else {
		span.SetStatus("ok")
	}
	return failures
}

// evaluateRule routes a single rule to its evaluator. Unknown rule types
// pass silently; this mirrors the permissive behavior rule authors rely
// on when a deployment runs an older engine than its rule sets.
func (e *Engine) evaluateRule(ctx context.Context, rule *metadata.Rule, vctx *metadata.ValidationContext, event metadata.Event) Result {
	switch rule.Type {
	case metadata.RuleTypeScript, metadata.RuleTypeCrossField:
		return EvaluateScriptRule(rule, vctx)
	case metadata.RuleTypeUnique:
		return e.evaluateUniqueRule(ctx, rule, vctx)
	case metadata.RuleTypeStateMachine:
		return EvaluateStateMachineRule(rule, vctx)
	case metadata.RuleTypeAsync:
		return e.evaluateAsyncRule(ctx, rule, vctx)
	case metadata.RuleTypeConditional:
		return e.evaluateConditionalRule(ctx, rule, vctx, event)
	case metadata.RuleTypeFormat:
		return EvaluateFormatRule(rule, vctx.Record)
	case metadata.RuleTypeRange:
		return EvaluateRangeRule(rule, vctx.Record)
	default:
		log.Printf("INFO: rule %q has unknown type %q, treating as passed", rule.Name, rule.Type)
		return passResult()
	}
}
