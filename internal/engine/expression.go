package engine

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// ErrSandbox marks an expression that was rejected before evaluation.
// Rule conditions are authored by end users, so the grammar is restricted
// to comparisons and boolean connectives over the record's fields: no
// function calls, no member access, no builtins, no closures.
var ErrSandbox = errors.New("expression violates sandbox restrictions")

var allowedBinaryOps = map[string]bool{
	"&&": true, "and": true,
	"||": true, "or": true,
	"==": true, "!=": true,
	"<": true, "<=": true,
	">": true, ">=": true,
}

var allowedUnaryOps = map[string]bool{
	"!": true, "not": true, "-": true,
}

// sandboxVisitor walks a parsed expression and records the first node
// outside the allowed grammar.
type sandboxVisitor struct {
	err error
}

func (v *sandboxVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.NilNode, *ast.IdentifierNode, *ast.IntegerNode,
		*ast.FloatNode, *ast.BoolNode, *ast.StringNode:
		// literals and record field references
	case *ast.UnaryNode:
		if !allowedUnaryOps[n.Operator] {
			v.err = fmt.Errorf("%w: unary operator %q", ErrSandbox, n.Operator)
		}
	case *ast.BinaryNode:
		if !allowedBinaryOps[n.Operator] {
			v.err = fmt.Errorf("%w: binary operator %q", ErrSandbox, n.Operator)
		}
	default:
		v.err = fmt.Errorf("%w: %T not allowed", ErrSandbox, *node)
	}
}

// CompileCondition parses a condition, verifies it against the sandbox
// grammar, and compiles it into an expr program. Record fields referenced
// by the condition may be absent at run time, so undefined variables are
// allowed at compile time.
func CompileCondition(expression string) (*vm.Program, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse condition: %w", err)
	}

	visitor := &sandboxVisitor{}
	ast.Walk(&tree.Node, visitor)
	if visitor.err != nil {
		return nil, visitor.err
	}

	prog, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile condition: %w", err)
	}
	return prog, nil
}

// RunCondition evaluates a compiled condition against the given bindings.
// Bindings are deep-copied into the evaluation scope so that an expression
// can never mutate the record under validation.
func RunCondition(prog *vm.Program, bindings map[string]any) (any, error) {
	result, err := expr.Run(prog, deepCopyMap(bindings))
	if err != nil {
		return nil, fmt.Errorf("evaluate condition: %w", err)
	}
	return result, nil
}

// EvaluateCondition compiles and runs a condition in one step.
func EvaluateCondition(expression string, bindings map[string]any) (any, error) {
	prog, err := CompileCondition(expression)
	if err != nil {
		return nil, err
	}
	return RunCondition(prog, bindings)
}

// IsTruthy coerces an expression result to a boolean. Nil, false, zero
// numbers, and empty strings are falsy; everything else is truthy.
func IsTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int32:
		return val != 0
	case int64:
		return val != 0
	case uint:
		return val != 0
	case uint64:
		return val != 0
	case float32:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// deepCopyMap returns a structural copy of m. Nested maps and slices are
// copied recursively; scalar values are copied by value.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}
