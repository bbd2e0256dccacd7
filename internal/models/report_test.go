package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReportID(t *testing.T) {
	a := GenerateReportID("f00db4be", ModeValidation, "financial/invoice-processing-v1.0.0", "1.2.0")
	b := GenerateReportID("f00db4be", ModeValidation, "financial/invoice-processing-v1.0.0", "1.2.0")
	c := GenerateReportID("f00db4be", ModeDiscovery, "", "1.2.0")

	assert.Len(t, a, 16)
	assert.Equal(t, a, b, "same inputs should produce same ID")
	assert.NotEqual(t, a, c, "different inputs should produce different IDs")
}

func sampleReport() *Report {
	return &Report{
		ID:          GenerateReportID("abc", ModeValidation, "financial/invoice-processing-v1.0.0", "1.2.0"),
		Source:      "invoices.csv",
		Mode:        ModeValidation,
		ADRIVersion: "1.2.0",
		TemplateID:  "financial/invoice-processing-v1.0.0",
		DimensionScores: []DimensionScore{
			{Dimension: DimensionValidity, Score: 18.5, MaxScore: MaxDimensionScore, Weight: 1.0},
			{Dimension: DimensionConsistency, Score: 16.0, MaxScore: MaxDimensionScore, Weight: 1.0},
		},
		Verdicts: []Verdict{
			{Requirement: "overall_minimum", Minimum: 85, Actual: 86.25, Passed: true},
		},
		OverallScore: 86.25,
	}
}

func TestReportDimensionLookup(t *testing.T) {
	r := sampleReport()

	ds, ok := r.Dimension(DimensionConsistency)
	require.True(t, ok)
	assert.InDelta(t, 16.0, ds.Score, 1e-9)

	_, ok = r.Dimension(DimensionFreshness)
	assert.False(t, ok)
}

func TestReportPassed(t *testing.T) {
	r := sampleReport()
	assert.True(t, r.Passed())

	r.Verdicts = append(r.Verdicts, Verdict{
		Requirement: "dimension_minimum",
		Dimension:   DimensionConsistency,
		Minimum:     18,
		Actual:      16,
		Passed:      false,
	})
	assert.False(t, r.Passed())

	empty := &Report{}
	assert.True(t, empty.Passed(), "report without verdicts passes trivially")
}

func TestReportMarshalsDeterministically(t *testing.T) {
	r := sampleReport()
	r.Summary = ReportSummary{
		BySeverity:    map[string]int{SeverityCritical: 1, SeverityInfo: 4},
		TotalFindings: 5,
	}

	first, err := json.Marshal(r)
	require.NoError(t, err)
	second, err := json.Marshal(r)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical reports must marshal byte-identically")
}
