package template

import (
	"sort"

	"github.com/adri-engine/adri/internal/rules"
)

// Skip records a template rule whose params reference an optional role no
// column satisfied. The engine grants such rules full credit with an
// advisory finding: absent optional data is never wrong data.
type Skip struct {
	RuleID string
	Role   string
}

// Overrides converts the template's per-dimension rule configuration into
// a rule override layer keyed "<dimension>.<type>", substituting bound
// physical columns for logical role names inside params. Required roles
// left unresolved keep their logical name, so the affected rules degrade
// with a missing-column finding instead of silently checking the wrong
// column; rules referencing unresolved optional roles are returned as
// skips, sorted by rule ID.
func (t *Template) Overrides(binding *Binding) (map[string]rules.Override, []Skip) {
	optional := make(map[string]bool)
	if binding != nil {
		for _, role := range binding.OptionalUnresolved {
			optional[role] = true
		}
	}

	overrides := make(map[string]rules.Override)
	var skips []Skip
	for dimension, dim := range t.Dimensions {
		for ruleType, rule := range dim.Rules {
			id := dimension + "." + ruleType
			if role, ok := firstReferencedRole(rule.Params, optional); ok {
				skips = append(skips, Skip{RuleID: id, Role: role})
			}
			overrides[id] = rules.Override{
				Enabled: rule.Enabled,
				Weight:  rule.Weight,
				Params:  rules.Params(substitute(rule.Params, binding).(map[string]any)),
			}
		}
	}

	sort.Slice(skips, func(i, j int) bool { return skips[i].RuleID < skips[j].RuleID })
	return overrides, skips
}

// firstReferencedRole walks a param tree and reports the lexically first
// of the given roles named anywhere inside it. The walk is ordered so
// repeated runs report the same role.
func firstReferencedRole(value any, roles map[string]bool) (string, bool) {
	if len(roles) == 0 {
		return "", false
	}
	var found []string
	collectRoles(value, roles, &found)
	if len(found) == 0 {
		return "", false
	}
	sort.Strings(found)
	return found[0], true
}

func collectRoles(value any, roles map[string]bool, found *[]string) {
	switch v := value.(type) {
	case map[string]any:
		for _, inner := range v {
			collectRoles(inner, roles, found)
		}
	case []any:
		for _, inner := range v {
			collectRoles(inner, roles, found)
		}
	case []string:
		for _, inner := range v {
			collectRoles(inner, roles, found)
		}
	case string:
		if roles[v] {
			*found = append(*found, v)
		}
	}
}

// substitute walks a param tree replacing any string that names a bound
// role with its physical column. Always returns a copy.
func substitute(value any, binding *Binding) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[k] = substitute(inner, binding)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = substitute(inner, binding)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = substitute(inner, binding)
		}
		return out
	case string:
		if binding != nil {
			if col, ok := binding.Resolved(v); ok {
				return col
			}
		}
		return v
	default:
		return value
	}
}
