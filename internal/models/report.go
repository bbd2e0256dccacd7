package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Mode identifies the scoring semantics of an assessment run.
const (
	ModeDiscovery  = "discovery"
	ModeValidation = "validation"
)

// DimensionScore holds the outcome of one dimension evaluator.
type DimensionScore struct {
	GeneratedMetadata any       `json:"generated_metadata,omitempty"`
	Dimension         string    `json:"dimension"`
	Score             float64   `json:"score"`
	MaxScore          float64   `json:"max_score"`
	Weight            float64   `json:"weight"`
	Findings          []Finding `json:"findings"`
}

// Verdict records an advisory pass/fail comparison of a computed score
// against a template-declared minimum. Verdicts never alter the scores.
type Verdict struct {
	Requirement string  `json:"requirement"`
	Dimension   string  `json:"dimension,omitempty"`
	Minimum     float64 `json:"minimum"`
	Actual      float64 `json:"actual"`
	Passed      bool    `json:"passed"`
}

// ReportSummary provides high-level statistics over all findings.
type ReportSummary struct {
	BySeverity    map[string]int `json:"by_severity"`
	TotalFindings int            `json:"total_findings"`
	RulesPassed   int            `json:"rules_passed"`
	RulesFailed   int            `json:"rules_failed"`
}

// Report is the immutable result of one assessment run.
//
// A Report deliberately carries no wall-clock or random fields: identical
// (data, config, template) inputs marshal to byte-identical documents. Run
// timestamps belong to storage filenames and log lines, not the artifact.
type Report struct {
	ID              string           `json:"id"`
	Source          string           `json:"source"`
	Mode            string           `json:"mode"`
	ADRIVersion     string           `json:"adri_version"`
	TemplateID      string           `json:"template_id,omitempty"`
	MetadataPaths   []string         `json:"generated_metadata_paths,omitempty"`
	DimensionScores []DimensionScore `json:"dimension_scores"`
	Verdicts        []Verdict        `json:"verdicts,omitempty"`
	Summary         ReportSummary    `json:"summary"`
	OverallScore    float64          `json:"overall_score"`
}

// GenerateReportID creates a stable, deterministic ID for a report.
// Identical assessments of the same source produce the same ID, which lets
// callers correlate re-runs without a timestamp.
func GenerateReportID(sourceFingerprint, mode, templateID, version string) string {
	core := fmt.Sprintf("%s:%s:%s:%s", sourceFingerprint, mode, templateID, version)
	hash := sha256.Sum256([]byte(core))
	return hex.EncodeToString(hash[:8]) // First 8 bytes for readability
}

// Dimension returns the score entry for the named dimension, if present.
func (r *Report) Dimension(name string) (DimensionScore, bool) {
	for _, ds := range r.DimensionScores {
		if ds.Dimension == name {
			return ds, true
		}
	}
	return DimensionScore{}, false
}

// Passed reports whether every verdict on the report passed. A report with
// no verdicts (discovery mode, or no template minimums) passes trivially.
func (r *Report) Passed() bool {
	for _, v := range r.Verdicts {
		if !v.Passed {
			return false
		}
	}
	return true
}

// Findings returns all findings across dimensions in report order.
func (r *Report) Findings() []Finding {
	var findings []Finding
	for _, ds := range r.DimensionScores {
		findings = append(findings, ds.Findings...)
	}
	return findings
}
