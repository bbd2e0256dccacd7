package rules

import (
	"fmt"

	"github.com/adri-engine/adri/internal/models"
)

// missingColumnResult is the graceful-degradation outcome for a rule whose
// configured column is absent: one critical finding, zero contribution.
func missingColumnResult(ruleID, column string) Result {
	return Result{
		Score: 0,
		Findings: []models.Finding{
			models.NewFinding(ruleID, models.SeverityCritical,
				fmt.Sprintf("required column %q is not present in the data source", column), false).
				WithDetail("column", column).
				WithDetail("missing_column", true),
		},
	}
}

// insufficientDataResult gives full credit when there is nothing to check:
// absence of checkable data is not penalized.
func insufficientDataResult(ruleID, subject string, weight float64) Result {
	return Result{
		Score: weight,
		Findings: []models.Finding{
			models.NewFinding(ruleID, models.SeverityInfo,
				fmt.Sprintf("insufficient data to evaluate %s", subject), true).
				WithDetail("insufficient_data", true),
		},
	}
}

// notConfiguredResult gives full credit when an optional check has no
// configuration to act on.
func notConfiguredResult(ruleID, reason string, weight float64) Result {
	return Result{
		Score: weight,
		Findings: []models.Finding{
			models.NewFinding(ruleID, models.SeverityInfo, reason, true),
		},
	}
}

// violationSeverity buckets a pass fraction into a finding severity.
func violationSeverity(fraction float64) string {
	if fraction >= 0.9 {
		return models.SeverityMedium
	}
	return models.SeverityHigh
}

// ratioResult scores a rule proportionally to its pass fraction and
// produces a single summarizing finding.
func ratioResult(ruleID string, cfg Config, passing, total int, message string, details map[string]any) Result {
	if total == 0 {
		return insufficientDataResult(ruleID, message, cfg.Weight)
	}

	fraction := float64(passing) / float64(total)
	passed := passing == total

	severity := models.SeverityInfo
	if !passed {
		severity = violationSeverity(fraction)
	}

	finding := models.NewFinding(ruleID, severity,
		fmt.Sprintf("%d of %d %s", passing, total, message), passed).
		WithDetail("passing", passing).
		WithDetail("total", total)
	for k, v := range details {
		finding = finding.WithDetail(k, v)
	}

	return Result{
		Score:    cfg.Weight * fraction,
		Findings: []models.Finding{finding},
	}
}
