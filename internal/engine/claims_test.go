package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-engine/adri/internal/metadata"
	"github.com/adri-engine/adri/internal/models"
)

func TestClaimOverridesTranslatesFacts(t *testing.T) {
	artifacts := map[string]*metadata.Artifact{
		models.DimensionValidity: {
			Dimension: models.DimensionValidity,
			Facts: []metadata.Fact{
				{Name: "type.amount", Value: "float", Confidence: 0.9},
				{Name: "type.notes", Value: "unknown", Confidence: 0.3},
			},
		},
		models.DimensionCompleteness: {
			Dimension: models.DimensionCompleteness,
			Facts: []metadata.Fact{
				{Name: "populated.amount", Value: 1.0, Confidence: 1.0},
				{Name: "populated.notes", Value: 0.75, Confidence: 1.0},
			},
		},
		models.DimensionConsistency: {
			Dimension: models.DimensionConsistency,
			Facts: []metadata.Fact{
				{Name: "distinct_ratio.order_id", Value: 1.0, Confidence: 0.9},
				{Name: "distinct_ratio.amount", Value: 0.8, Confidence: 0.72},
			},
		},
		models.DimensionPlausibility: {
			Dimension: models.DimensionPlausibility,
			Facts: []metadata.Fact{
				{Name: "numeric_range.amount", Value: map[string]any{"min": 10.0, "max": 500.0, "mean": 120.0}, Confidence: 0.8},
			},
		},
	}

	overrides := claimOverrides(artifacts)

	// The low-confidence type fact is filtered out.
	assert.Equal(t, []string{"amount"}, overrides["validity.type_consistency"].Params.Strings("columns"))

	assert.Equal(t, []string{"amount"}, overrides["completeness.required_fields"].Params.Strings("columns"))
	assert.InDelta(t, 0.75, overrides["completeness.population_density"].Params.Float("threshold", 0), 1e-9)

	assert.Equal(t, []string{"order_id"}, overrides["consistency.uniqueness"].Params.Strings("columns"))

	rangeCheck, ok := overrides["validity.range_validation"]
	require.True(t, ok, "a declared numeric range becomes a range check")
	assert.Equal(t, "amount", rangeCheck.Params.String("column", ""))
	assert.InDelta(t, 10.0, rangeCheck.Params.Float("min", 0), 1e-9)
	assert.InDelta(t, 500.0, rangeCheck.Params.Float("max", 0), 1e-9)
}

func TestClaimOverridesIgnoresLowConfidenceRanges(t *testing.T) {
	artifacts := map[string]*metadata.Artifact{
		models.DimensionPlausibility: {
			Dimension: models.DimensionPlausibility,
			Facts: []metadata.Fact{
				{Name: "numeric_range.amount", Value: map[string]any{"min": 0.0, "max": 1.0}, Confidence: 0.4},
			},
		},
	}

	overrides := claimOverrides(artifacts)
	_, ok := overrides["validity.range_validation"]
	assert.False(t, ok)
}

func TestClaimOverridesEmptyArtifacts(t *testing.T) {
	assert.Empty(t, claimOverrides(nil))
	assert.Empty(t, claimOverrides(map[string]*metadata.Artifact{}))
}
