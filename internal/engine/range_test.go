package engine

import (
	"testing"

	"gatekeeper-backend/internal/metadata"
)

func rangeRule(field string, min, max any) *metadata.Rule {
	return &metadata.Rule{
		Name:   "range_check",
		Type:   metadata.RuleTypeRange,
		Active: true,
		Definition: metadata.RuleDefinition{
			Field: field,
			Min:   min,
			Max:   max,
		},
	}
}

func TestRangeRule_Numeric(t *testing.T) {
	rule := rangeRule("age", float64(18), float64(65))

	if result := EvaluateRangeRule(rule, map[string]any{"age": float64(30)}); !result.Valid {
		t.Fatalf("expected 30 to pass, got %v", result)
	}
	if result := EvaluateRangeRule(rule, map[string]any{"age": float64(16)}); result.Valid {
		t.Fatal("expected 16 to fail")
	}
	if result := EvaluateRangeRule(rule, map[string]any{"age": float64(70)}); result.Valid {
		t.Fatal("expected 70 to fail")
	}

	// Inclusive bounds
	if result := EvaluateRangeRule(rule, map[string]any{"age": float64(18)}); !result.Valid {
		t.Fatalf("expected 18 to pass inclusively, got %v", result)
	}
	if result := EvaluateRangeRule(rule, map[string]any{"age": float64(65)}); !result.Valid {
		t.Fatalf("expected 65 to pass inclusively, got %v", result)
	}
}

func TestRangeRule_ExclusiveBounds(t *testing.T) {
	rule := rangeRule("score", float64(0), float64(100))
	rule.Definition.MinExclusive = true
	rule.Definition.MaxExclusive = true

	if result := EvaluateRangeRule(rule, map[string]any{"score": float64(0)}); result.Valid {
		t.Fatal("expected 0 to fail exclusive min")
	}
	if result := EvaluateRangeRule(rule, map[string]any{"score": float64(100)}); result.Valid {
		t.Fatal("expected 100 to fail exclusive max")
	}
	if result := EvaluateRangeRule(rule, map[string]any{"score": float64(50)}); !result.Valid {
		t.Fatalf("expected 50 to pass, got %v", result)
	}
}

func TestRangeRule_MinOnly(t *testing.T) {
	rule := rangeRule("total", float64(0), nil)

	if result := EvaluateRangeRule(rule, map[string]any{"total": float64(1000000)}); !result.Valid {
		t.Fatalf("expected large value to pass with no max, got %v", result)
	}
	if result := EvaluateRangeRule(rule, map[string]any{"total": float64(-1)}); result.Valid {
		t.Fatal("expected -1 to fail min")
	}
}

func TestRangeRule_Dates(t *testing.T) {
	rule := rangeRule("due_date", "2024-01-01", "2024-12-31")

	if result := EvaluateRangeRule(rule, map[string]any{"due_date": "2024-06-15"}); !result.Valid {
		t.Fatalf("expected mid-year date to pass, got %v", result)
	}
	if result := EvaluateRangeRule(rule, map[string]any{"due_date": "2023-12-31"}); result.Valid {
		t.Fatal("expected earlier date to fail")
	}
	if result := EvaluateRangeRule(rule, map[string]any{"due_date": "2025-01-01"}); result.Valid {
		t.Fatal("expected later date to fail")
	}
}

func TestRangeRule_DateTimestamps(t *testing.T) {
	rule := rangeRule("created_at", "2024-01-01T00:00:00Z", nil)

	if result := EvaluateRangeRule(rule, map[string]any{"created_at": "2024-03-15T10:30:00Z"}); !result.Valid {
		t.Fatalf("expected RFC3339 timestamp to pass, got %v", result)
	}
	if result := EvaluateRangeRule(rule, map[string]any{"created_at": "2023-06-01T00:00:00Z"}); result.Valid {
		t.Fatal("expected earlier timestamp to fail")
	}
}

func TestRangeRule_AbsentValuePasses(t *testing.T) {
	rule := rangeRule("age", float64(18), float64(65))

	if result := EvaluateRangeRule(rule, map[string]any{}); !result.Valid {
		t.Fatalf("expected absent field to pass, got %v", result)
	}
	if result := EvaluateRangeRule(rule, map[string]any{"age": nil}); !result.Valid {
		t.Fatalf("expected nil field to pass, got %v", result)
	}
}

func TestRangeRule_NonComparableFailsClosed(t *testing.T) {
	rule := rangeRule("age", float64(18), nil)

	result := EvaluateRangeRule(rule, map[string]any{"age": "not a number"})
	if result.Valid {
		t.Fatal("expected non-comparable value to fail")
	}
}

func TestRangeRule_CustomMessage(t *testing.T) {
	rule := rangeRule("age", float64(18), nil)
	rule.Message = "Must be an adult"

	result := EvaluateRangeRule(rule, map[string]any{"age": float64(10)})
	if result.Valid {
		t.Fatal("expected 10 to fail")
	}
	if result.Message != "Must be an adult" {
		t.Fatalf("expected configured message, got %q", result.Message)
	}
}
