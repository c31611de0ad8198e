package engine

import (
	"fmt"
	"regexp"
	"strings"

	"gatekeeper-backend/internal/metadata"
)

// formatPatterns maps named formats to their fixed patterns.
var formatPatterns = map[string]*regexp.Regexp{
	"email":       regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
	"url":         regexp.MustCompile(`^https?://[^\s]+$`),
	"phone":       regexp.MustCompile(`^\+?[0-9][0-9 .\-()]{6,19}$`),
	"ipv4":        regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])\.){3}(25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])$`),
	"ipv6":        regexp.MustCompile(`^([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}$`),
	"uuid":        regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
	"iso_date":    regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`),
	"credit_card": regexp.MustCompile(`^\d{13,19}$`),
}

// EvaluateFormatRule tests a field's stringified value against a named or
// custom pattern. Empty and absent values pass: format rules do not imply
// presence, so pair them with a separate required rule if needed.
func EvaluateFormatRule(rule *metadata.Rule, record map[string]any) Result {
	field := rule.Definition.Field
	val, exists := record[field]
	if !exists || val == nil || val == "" {
		return passResult()
	}

	pattern, err := resolvePattern(rule)
	if err != nil {
		return faultResult(rule, err.Error())
	}

	if !pattern.MatchString(fmt.Sprintf("%v", val)) {
		return failResult(rule, ruleMessage(rule,
			fmt.Sprintf("Field %s does not match the required format", field)))
	}
	return passResult()
}

// resolvePattern returns the compiled pattern for a format rule: either a
// named predefined format or a custom pattern with optional flags.
// Custom patterns are compiled lazily and cached on the rule.
func resolvePattern(rule *metadata.Rule) (*regexp.Regexp, error) {
	if name := rule.Definition.Format; name != "" {
		pattern, ok := formatPatterns[name]
		if !ok {
			return nil, fmt.Errorf("unknown format %q", name)
		}
		return pattern, nil
	}

	if cached, ok := rule.Compiled.(*regexp.Regexp); ok && cached != nil {
		return cached, nil
	}

	raw := rule.Definition.Pattern
	if raw == "" {
		return nil, fmt.Errorf("format rule has neither format nor pattern")
	}
	if prefix := flagPrefix(rule.Definition.Flags); prefix != "" {
		raw = prefix + raw
	}
	pattern, err := regexp.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	rule.Compiled = pattern
	return pattern, nil
}

// flagPrefix translates supported flag characters into a regexp group
// prefix. Unsupported flags are ignored.
func flagPrefix(flags string) string {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			b.WriteRune(f)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}
