package engine

import (
	"context"
	"testing"

	"gatekeeper-backend/internal/metadata"
)

func conditionalRule(condition string, nested ...*metadata.Rule) *metadata.Rule {
	return &metadata.Rule{
		Name:   "gated",
		Type:   metadata.RuleTypeConditional,
		Active: true,
		Definition: metadata.RuleDefinition{
			Condition: condition,
			Rules:     nested,
		},
	}
}

func TestConditionalRule_FalsyGateSkipsNested(t *testing.T) {
	checker := &fakeChecker{unique: false}
	e := New(WithUniquenessChecker(checker))

	rule := conditionalRule("country == 'US'", uniqueRule([]string{"ssn"}, ""))
	vctx := &metadata.ValidationContext{Record: map[string]any{"country": "DE", "ssn": "123"}}

	results := e.ValidateRecord(context.Background(), []*metadata.Rule{rule}, vctx, metadata.EventInsert)
	if len(results) != 0 {
		t.Fatalf("expected pass when gate is falsy, got %v", results)
	}
	if checker.calls != 0 {
		t.Fatalf("expected nested rule never evaluated, got %d checker calls", checker.calls)
	}
}

func TestConditionalRule_TruthyGateRunsNested(t *testing.T) {
	checker := &fakeChecker{unique: false}
	e := New(WithUniquenessChecker(checker))

	rule := conditionalRule("country == 'US'", uniqueRule([]string{"ssn"}, ""))
	vctx := &metadata.ValidationContext{Record: map[string]any{"country": "US", "ssn": "123"}}

	results := e.ValidateRecord(context.Background(), []*metadata.Rule{rule}, vctx, metadata.EventInsert)
	if len(results) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(results))
	}
	if results[0].Rule != "no_duplicates" {
		t.Fatalf("expected nested rule name in violation, got %s", results[0].Rule)
	}
}

func TestConditionalRule_NestedShortCircuits(t *testing.T) {
	e := New()

	rule := conditionalRule("true",
		scriptRule("first_nested", "a > 0", "first failed"),
		scriptRule("second_nested", "b > 0", "second failed"),
	)
	vctx := &metadata.ValidationContext{Record: map[string]any{"a": 0, "b": 0}}

	results := e.ValidateRecord(context.Background(), []*metadata.Rule{rule}, vctx, metadata.EventInsert)
	if len(results) != 1 {
		t.Fatalf("expected only the first nested failure, got %d", len(results))
	}
	if results[0].Rule != "first_nested" {
		t.Fatalf("expected first_nested, got %s", results[0].Rule)
	}
}

func TestConditionalRule_NestedFiltersApply(t *testing.T) {
	e := New()

	inactive := scriptRule("inactive_nested", "a > 0", "")
	inactive.Active = false
	updateOnly := scriptRule("update_nested", "a > 0", "")
	updateOnly.Events = []metadata.Event{metadata.EventUpdate}

	rule := conditionalRule("true", inactive, updateOnly)
	vctx := &metadata.ValidationContext{Record: map[string]any{"a": 0}}

	results := e.ValidateRecord(context.Background(), []*metadata.Rule{rule}, vctx, metadata.EventInsert)
	if len(results) != 0 {
		t.Fatalf("expected nested filters to skip both rules, got %v", results)
	}
}

func TestConditionalRule_BadGateFailsClosed(t *testing.T) {
	e := New()

	rule := conditionalRule("len(x) > 0", scriptRule("nested", "a > 0", ""))
	vctx := &metadata.ValidationContext{Record: map[string]any{"a": 1}}

	results := e.ValidateRecord(context.Background(), []*metadata.Rule{rule}, vctx, metadata.EventInsert)
	if len(results) != 1 {
		t.Fatalf("expected 1 violation for bad gate, got %d", len(results))
	}
}
