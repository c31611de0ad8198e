package engine

import (
	"fmt"
	"time"

	"gatekeeper-backend/internal/metadata"
)

// EvaluateRangeRule checks a field value against the rule's bounds.
// Absent and nil values pass. Date-like values are compared as dates,
// everything else as numbers; each bound is independently optional and
// independently inclusive or exclusive.
func EvaluateRangeRule(rule *metadata.Rule, record map[string]any) Result {
	field := rule.Definition.Field
	val, exists := record[field]
	if !exists || val == nil {
		return passResult()
	}

	if t, ok := toTime(val); ok {
		return evaluateDateRange(rule, t)
	}

	num, ok := toFloat64(val)
	if !ok {
		return faultResult(rule, fmt.Sprintf("field %s is not a comparable value", field))
	}
	return evaluateNumericRange(rule, num)
}

func evaluateNumericRange(rule *metadata.Rule, val float64) Result {
	def := rule.Definition

	if def.Min != nil {
		min, ok := toFloat64(def.Min)
		if !ok {
			return faultResult(rule, "min bound is not numeric")
		}
		if val < min || (def.MinExclusive && val == min) {
			return failResult(rule, ruleMessage(rule, boundMessage(def.Field, "at least", "greater than", def.MinExclusive, def.Min)))
		}
	}
	if def.Max != nil {
		max, ok := toFloat64(def.Max)
		if !ok {
			return faultResult(rule, "max bound is not numeric")
		}
		if val > max || (def.MaxExclusive && val == max) {
			return failResult(rule, ruleMessage(rule, boundMessage(def.Field, "at most", "less than", def.MaxExclusive, def.Max)))
		}
	}
	return passResult()
}

func evaluateDateRange(rule *metadata.Rule, val time.Time) Result {
	def := rule.Definition

	if def.Min != nil {
		min, ok := toTime(def.Min)
		if !ok {
			return faultResult(rule, "min bound is not a valid date")
		}
		if val.Before(min) || (def.MinExclusive && val.Equal(min)) {
			return failResult(rule, ruleMessage(rule, boundMessage(def.Field, "at least", "after", def.MinExclusive, def.Min)))
		}
	}
	if def.Max != nil {
		max, ok := toTime(def.Max)
		if !ok {
			return faultResult(rule, "max bound is not a valid date")
		}
		if val.After(max) || (def.MaxExclusive && val.Equal(max)) {
			return failResult(rule, ruleMessage(rule, boundMessage(def.Field, "at most", "before", def.MaxExclusive, def.Max)))
		}
	}
	return passResult()
}

// boundMessage builds the default message naming which bound failed and
// in which direction.
func boundMessage(field, inclusiveWord, exclusiveWord string, exclusive bool, bound any) string {
	word := inclusiveWord
	if exclusive {
		word = exclusiveWord
	}
	return fmt.Sprintf("Field %s must be %s %v", field, word, bound)
}

// dateLayouts are tried in order when coercing strings to dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime coerces date-like values. Strings must parse with one of the
// supported layouts.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// toFloat64 converts numeric types to float64.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
