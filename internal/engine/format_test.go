package engine

import (
	"testing"

	"gatekeeper-backend/internal/metadata"
)

func formatRule(field, format, pattern, flags string) *metadata.Rule {
	return &metadata.Rule{
		Name:   "format_check",
		Type:   metadata.RuleTypeFormat,
		Active: true,
		Definition: metadata.RuleDefinition{
			Field:   field,
			Format:  format,
			Pattern: pattern,
			Flags:   flags,
		},
	}
}

func TestFormatRule_Email(t *testing.T) {
	rule := formatRule("email", "email", "", "")

	result := EvaluateFormatRule(rule, map[string]any{"email": "user@example.com"})
	if !result.Valid {
		t.Fatalf("expected user@example.com to pass, got %v", result)
	}

	result = EvaluateFormatRule(rule, map[string]any{"email": "invalid-email"})
	if result.Valid {
		t.Fatal("expected invalid-email to fail")
	}
}

func TestFormatRule_NamedFormats(t *testing.T) {
	cases := []struct {
		format string
		pass   string
		fail   string
	}{
		{"url", "https://example.com/x", "ftp://example.com"},
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "not-a-uuid"},
		{"ipv4", "192.168.1.1", "999.1.1.1"},
		{"iso_date", "2024-03-15", "15/03/2024"},
	}
	for _, c := range cases {
		rule := formatRule("v", c.format, "", "")
		if result := EvaluateFormatRule(rule, map[string]any{"v": c.pass}); !result.Valid {
			t.Fatalf("format %s: expected %q to pass, got %v", c.format, c.pass, result)
		}
		if result := EvaluateFormatRule(rule, map[string]any{"v": c.fail}); result.Valid {
			t.Fatalf("format %s: expected %q to fail", c.format, c.fail)
		}
	}
}

func TestFormatRule_CustomPattern(t *testing.T) {
	rule := formatRule("code", "", "^[A-Z]{3}$", "")

	result := EvaluateFormatRule(rule, map[string]any{"code": "ABC"})
	if !result.Valid {
		t.Fatalf("expected ABC to pass, got %v", result)
	}

	result = EvaluateFormatRule(rule, map[string]any{"code": "ab"})
	if result.Valid {
		t.Fatal("expected ab to fail")
	}
}

func TestFormatRule_CaseInsensitiveFlag(t *testing.T) {
	rule := formatRule("code", "", "^[a-z]+$", "i")

	result := EvaluateFormatRule(rule, map[string]any{"code": "MiXeD"})
	if !result.Valid {
		t.Fatalf("expected MiXeD to pass with i flag, got %v", result)
	}
}

func TestFormatRule_EmptyValuePasses(t *testing.T) {
	rule := formatRule("email", "email", "", "")

	for _, record := range []map[string]any{
		{},
		{"email": nil},
		{"email": ""},
	} {
		if result := EvaluateFormatRule(rule, record); !result.Valid {
			t.Fatalf("expected empty value to pass, got %v for %v", result, record)
		}
	}
}

func TestFormatRule_UnknownFormatFailsClosed(t *testing.T) {
	rule := formatRule("v", "hexcolor", "", "")

	result := EvaluateFormatRule(rule, map[string]any{"v": "#fff"})
	if result.Valid {
		t.Fatal("expected fail for unknown format name")
	}
}

func TestFormatRule_BadPatternFailsClosed(t *testing.T) {
	rule := formatRule("v", "", "([a-z", "")

	result := EvaluateFormatRule(rule, map[string]any{"v": "abc"})
	if result.Valid {
		t.Fatal("expected fail for invalid pattern")
	}
}
