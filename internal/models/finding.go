// Package models contains data structures for ADRI quality assessments.
package models

import (
	"fmt"
)

// Finding represents a structured, severity-tagged explanation attached to
// one rule evaluation. Findings never affect a score directly; the score
// contribution comes from the rule that produced them.
type Finding struct {
	Details  map[string]any `json:"details,omitempty"`
	RuleID   string         `json:"rule_id"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Passed   bool           `json:"passed"`
}

// NewFinding creates a finding for a rule evaluation outcome.
func NewFinding(ruleID, severity, message string, passed bool) Finding {
	return Finding{
		RuleID:   ruleID,
		Severity: severity,
		Message:  message,
		Passed:   passed,
	}
}

// WithDetail attaches a detail entry and returns the finding for chaining.
func (f Finding) WithDetail(key string, value any) Finding {
	if f.Details == nil {
		f.Details = make(map[string]any)
	}
	f.Details[key] = value
	return f
}

// IsValid checks if a finding has all required fields.
func (f *Finding) IsValid() error {
	if f.RuleID == "" {
		return fmt.Errorf("finding missing required field: rule_id")
	}
	if f.Severity == "" {
		return fmt.Errorf("finding missing required field: severity")
	}
	if !IsValidSeverity(f.Severity) {
		return fmt.Errorf("finding has invalid severity: %s", f.Severity)
	}
	if f.Message == "" {
		return fmt.Errorf("finding missing required field: message")
	}
	return nil
}
