package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/rules"
)

// fixedRule returns a preset score and finding, for exercising aggregation
// without real data checks.
type fixedRule struct {
	id        string
	dimension string
	weight    float64
	score     float64
}

func (r *fixedRule) ID() string          { return r.id }
func (r *fixedRule) Dimension() string   { return r.dimension }
func (r *fixedRule) Description() string { return "fixed outcome" }
func (r *fixedRule) DefaultConfig() rules.Config {
	return rules.Config{Enabled: true, Weight: r.weight, Params: rules.Params{}}
}

func (r *fixedRule) Evaluate(_ *datasource.DataSource, cfg rules.Config) rules.Result {
	passed := r.score >= cfg.Weight
	severity := models.SeverityInfo
	if !passed {
		severity = models.SeverityHigh
	}
	return rules.Result{
		Score:    r.score,
		Findings: []models.Finding{models.NewFinding(r.id, severity, "fixed", passed)},
	}
}

func oneColumnDS(t *testing.T) *datasource.DataSource {
	t.Helper()
	ds, err := datasource.New("fixture.csv",
		[]datasource.Column{{Name: "value", Type: datasource.TypeString}},
		[][]any{{"a"}, {"b"}})
	require.NoError(t, err)
	return ds
}

func registryWith(t *testing.T, ruleSet ...rules.Rule) *rules.Registry {
	t.Helper()
	registry := rules.NewRegistry()
	for _, r := range ruleSet {
		require.NoError(t, registry.Register(r))
	}
	return registry
}

func TestScoreDimensionNormalizes(t *testing.T) {
	registry := registryWith(t,
		&fixedRule{id: "validity.full", dimension: models.DimensionValidity, weight: 10, score: 10},
		&fixedRule{id: "validity.half", dimension: models.DimensionValidity, weight: 10, score: 5},
	)

	score := scoreDimension(oneColumnDS(t), models.DimensionValidity, registry.DefaultConfigs(), registry, 1.0, nil)

	// 15 of 20 weighted points → 15 on the 20-point scale.
	assert.InDelta(t, 15.0, score.Score, 1e-9)
	assert.Equal(t, models.MaxDimensionScore, score.MaxScore)
	assert.Len(t, score.Findings, 2)
}

func TestScoreDimensionWeightsNeedNotSumToTwenty(t *testing.T) {
	registry := registryWith(t,
		&fixedRule{id: "validity.a", dimension: models.DimensionValidity, weight: 3, score: 3},
		&fixedRule{id: "validity.b", dimension: models.DimensionValidity, weight: 1, score: 0},
	)

	score := scoreDimension(oneColumnDS(t), models.DimensionValidity, registry.DefaultConfigs(), registry, 1.0, nil)
	assert.InDelta(t, 15.0, score.Score, 1e-9)
}

func TestScoreDimensionClampsContributions(t *testing.T) {
	registry := registryWith(t,
		&fixedRule{id: "validity.over", dimension: models.DimensionValidity, weight: 10, score: 50},
		&fixedRule{id: "validity.under", dimension: models.DimensionValidity, weight: 10, score: -5},
	)

	score := scoreDimension(oneColumnDS(t), models.DimensionValidity, registry.DefaultConfigs(), registry, 1.0, nil)
	assert.InDelta(t, 10.0, score.Score, 1e-9)
}

func TestScoreDimensionSkippedRuleEarnsFullCredit(t *testing.T) {
	registry := registryWith(t,
		&fixedRule{id: "plausibility.failing", dimension: models.DimensionPlausibility, weight: 10, score: 0},
		&fixedRule{id: "plausibility.passing", dimension: models.DimensionPlausibility, weight: 10, score: 10},
	)

	skips := map[string]string{"plausibility.failing": "quantity"}
	score := scoreDimension(oneColumnDS(t), models.DimensionPlausibility, registry.DefaultConfigs(), registry, 1.0, skips)

	// The skipped rule never runs: full credit plus an advisory finding.
	assert.InDelta(t, models.MaxDimensionScore, score.Score, 1e-9)
	require.Len(t, score.Findings, 2)

	var advisory *models.Finding
	for i := range score.Findings {
		if score.Findings[i].RuleID == "plausibility.failing" {
			advisory = &score.Findings[i]
		}
	}
	require.NotNil(t, advisory)
	assert.Equal(t, models.SeverityInfo, advisory.Severity)
	assert.True(t, advisory.Passed)
	assert.Equal(t, "quantity", advisory.Details["role"])
}

func TestScoreDimensionAllRulesDisabled(t *testing.T) {
	registry := registryWith(t,
		&fixedRule{id: "validity.a", dimension: models.DimensionValidity, weight: 10, score: 0},
	)

	disabled := false
	configs := rules.ApplyOverrides(registry.DefaultConfigs(), map[string]rules.Override{
		"validity.a": {Enabled: &disabled},
	})

	score := scoreDimension(oneColumnDS(t), models.DimensionValidity, configs, registry, 1.0, nil)
	assert.Equal(t, models.MaxDimensionScore, score.Score, "absence of checks is not penalized")
	assert.Empty(t, score.Findings)
}

func TestScoreDimensionNoRulesAtAll(t *testing.T) {
	registry := rules.NewRegistry()
	score := scoreDimension(oneColumnDS(t), models.DimensionFreshness, registry.DefaultConfigs(), registry, 1.0, nil)
	assert.Equal(t, models.MaxDimensionScore, score.Score)
}

func TestScoreDimensionBounds(t *testing.T) {
	for _, dimension := range models.Dimensions() {
		score := scoreDimension(oneColumnDS(t), dimension, rules.DefaultRegistry.DefaultConfigs(), rules.DefaultRegistry, 1.0, nil)
		assert.GreaterOrEqual(t, score.Score, 0.0, dimension)
		assert.LessOrEqual(t, score.Score, models.MaxDimensionScore, dimension)
	}
}
