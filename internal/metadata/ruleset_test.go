package metadata

import "testing"

func testRuleSet(name string, ruleNames ...string) *RuleSet {
	rules := make([]*Rule, len(ruleNames))
	for i, n := range ruleNames {
		rules[i] = &Rule{Name: n, Type: RuleTypeScript, Active: true}
	}
	return &RuleSet{Name: name, Active: true, Definition: RuleSetDefinition{Rules: rules}}
}

func TestRuleSet_GetRule(t *testing.T) {
	rs := testRuleSet("customer", "age_check", "email_format")

	if rule := rs.GetRule("age_check"); rule == nil || rule.Name != "age_check" {
		t.Fatalf("expected age_check, got %v", rule)
	}
	if rule := rs.GetRule("missing"); rule != nil {
		t.Fatalf("expected nil for missing rule, got %v", rule)
	}
}

func TestRuleSet_RuleNames(t *testing.T) {
	rs := testRuleSet("customer", "a", "b", "c")

	names := rs.RuleNames()
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Fatalf("expected ordered names, got %v", names)
	}
}

func TestRegistry_LoadAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Load([]*RuleSet{testRuleSet("customer"), testRuleSet("order")})

	if rs := reg.GetRuleSet("customer"); rs == nil {
		t.Fatal("expected customer rule set")
	}
	if rs := reg.GetRuleSet("missing"); rs != nil {
		t.Fatalf("expected nil for missing rule set, got %v", rs)
	}
	if got := len(reg.AllRuleSets()); got != 2 {
		t.Fatalf("expected 2 rule sets, got %d", got)
	}

	// Load replaces, not merges.
	reg.Load([]*RuleSet{testRuleSet("invoice")})
	if rs := reg.GetRuleSet("customer"); rs != nil {
		t.Fatal("expected customer to be gone after reload")
	}
	if rs := reg.GetRuleSet("invoice"); rs == nil {
		t.Fatal("expected invoice after reload")
	}
}
