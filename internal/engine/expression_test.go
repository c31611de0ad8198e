package engine

import (
	"errors"
	"testing"
)

func TestCompileCondition_AllowsComparisons(t *testing.T) {
	exprs := []string{
		"age >= 18",
		"status == 'active'",
		"total > 0 && total <= 1000",
		"a == 1 or b == 2",
		"!archived",
		"not archived",
		"-discount < 0",
	}
	for _, e := range exprs {
		if _, err := CompileCondition(e); err != nil {
			t.Fatalf("expected %q to compile, got %v", e, err)
		}
	}
}

func TestCompileCondition_RejectsCalls(t *testing.T) {
	_, err := CompileCondition("len(name) > 0")
	if err == nil {
		t.Fatal("expected sandbox rejection for function call")
	}
	if !errors.Is(err, ErrSandbox) {
		t.Fatalf("expected ErrSandbox, got %v", err)
	}
}

func TestCompileCondition_RejectsMemberAccess(t *testing.T) {
	_, err := CompileCondition("user.role == 'admin'")
	if err == nil {
		t.Fatal("expected sandbox rejection for member access")
	}
	if !errors.Is(err, ErrSandbox) {
		t.Fatalf("expected ErrSandbox, got %v", err)
	}
}

func TestCompileCondition_RejectsTernary(t *testing.T) {
	_, err := CompileCondition("a > 0 ? 1 : 2")
	if !errors.Is(err, ErrSandbox) {
		t.Fatalf("expected ErrSandbox for ternary, got %v", err)
	}
}

func TestCompileCondition_RejectsArithmetic(t *testing.T) {
	_, err := CompileCondition("a + b > 10")
	if !errors.Is(err, ErrSandbox) {
		t.Fatalf("expected ErrSandbox for arithmetic, got %v", err)
	}
}

func TestEvaluateCondition(t *testing.T) {
	result, err := EvaluateCondition("age >= 18", map[string]any{"age": 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != true {
		t.Fatalf("expected true, got %v", result)
	}

	result, err = EvaluateCondition("age >= 18", map[string]any{"age": 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != false {
		t.Fatalf("expected false, got %v", result)
	}
}

func TestRunCondition_DoesNotMutateBindings(t *testing.T) {
	bindings := map[string]any{
		"status": "active",
		"nested": map[string]any{"count": 3},
	}
	prog, err := CompileCondition("status == 'active'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := RunCondition(prog, bindings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bindings["status"] != "active" {
		t.Fatalf("bindings mutated: %v", bindings)
	}
	if bindings["nested"].(map[string]any)["count"] != 3 {
		t.Fatalf("nested bindings mutated: %v", bindings)
	}
}

func TestIsTruthy(t *testing.T) {
	truthy := []any{true, 1, int64(-1), 3.14, "yes", []any{}, map[string]any{}}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Fatalf("expected %v (%T) to be truthy", v, v)
		}
	}

	falsy := []any{nil, false, 0, int64(0), 0.0, ""}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Fatalf("expected %v (%T) to be falsy", v, v)
		}
	}
}

func TestDeepCopyMap(t *testing.T) {
	original := map[string]any{
		"list":   []any{1, 2},
		"nested": map[string]any{"k": "v"},
	}
	copied := deepCopyMap(original)

	copied["list"].([]any)[0] = 99
	copied["nested"].(map[string]any)["k"] = "changed"

	if original["list"].([]any)[0] != 1 {
		t.Fatal("slice was shared, not copied")
	}
	if original["nested"].(map[string]any)["k"] != "v" {
		t.Fatal("nested map was shared, not copied")
	}
}
