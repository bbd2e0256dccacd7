package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

// makeDS builds a snapshot for rule tests.
func makeDS(t *testing.T, columns []datasource.Column, rows [][]any) *datasource.DataSource {
	t.Helper()
	ds, err := datasource.New("test.csv", columns, rows)
	require.NoError(t, err)
	return ds
}

// stubRule is a minimal rule for registry tests.
type stubRule struct {
	id        string
	dimension string
}

func (s *stubRule) ID() string            { return s.id }
func (s *stubRule) Dimension() string     { return s.dimension }
func (s *stubRule) Description() string   { return "stub" }
func (s *stubRule) DefaultConfig() Config { return Config{Enabled: true, Weight: 5} }
func (s *stubRule) Evaluate(_ *datasource.DataSource, cfg Config) Result {
	return Result{Score: cfg.Weight}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	rule := &stubRule{id: "validity.stub", dimension: models.DimensionValidity}
	require.NoError(t, reg.Register(rule))

	err := reg.Register(rule)
	assert.ErrorIs(t, err, ErrRuleExists)

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(&stubRule{id: "accuracy.stub", dimension: "accuracy"}))
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&stubRule{id: "validity.stub", dimension: models.DimensionValidity})

	rule, err := reg.Get("validity.stub")
	require.NoError(t, err)
	assert.Equal(t, "validity.stub", rule.ID())

	_, err = reg.Get("validity.missing")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestRegistryForDimensionSorted(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(&stubRule{id: "validity.zeta", dimension: models.DimensionValidity})
	reg.MustRegister(&stubRule{id: "validity.alpha", dimension: models.DimensionValidity})
	reg.MustRegister(&stubRule{id: "freshness.other", dimension: models.DimensionFreshness})

	validity := reg.ForDimension(models.DimensionValidity)
	require.Len(t, validity, 2)
	assert.Equal(t, "validity.alpha", validity[0].ID())
	assert.Equal(t, "validity.zeta", validity[1].ID())

	assert.Empty(t, reg.ForDimension(models.DimensionPlausibility))
}

func TestDefaultRegistryCoversAllDimensions(t *testing.T) {
	for _, dimension := range models.Dimensions() {
		assert.NotEmpty(t, DefaultRegistry.ForDimension(dimension), dimension)
	}
	// Every registered rule's ID is prefixed with its dimension.
	for _, id := range DefaultRegistry.List() {
		rule, err := DefaultRegistry.Get(id)
		require.NoError(t, err)
		assert.Equal(t, rule.Dimension()+"."+idSuffix(id), id)
	}
}

func idSuffix(id string) string {
	for i := range id {
		if id[i] == '.' {
			return id[i+1:]
		}
	}
	return id
}

func TestDefaultWeightsSumToDimensionBudget(t *testing.T) {
	// Built-in rules are authored so each dimension's defaults sum to the
	// 20-point budget; aggregation normalizes either way.
	for _, dimension := range models.Dimensions() {
		var sum float64
		for _, rule := range DefaultRegistry.ForDimension(dimension) {
			sum += rule.DefaultConfig().Weight
		}
		assert.InDelta(t, models.MaxDimensionScore, sum, 1e-9, dimension)
	}
}

func TestConfigApplyPrecedence(t *testing.T) {
	base := Config{Enabled: true, Weight: 8, Params: Params{"threshold": 0.95, "column": "amount"}}

	enabled := false
	weight := 4.0
	merged := base.Apply(Override{
		Enabled: &enabled,
		Weight:  &weight,
		Params:  Params{"threshold": 0.8},
	})

	assert.False(t, merged.Enabled)
	assert.InDelta(t, 4.0, merged.Weight, 1e-9)
	assert.InDelta(t, 0.8, merged.Params.Float("threshold", 0), 1e-9)
	assert.Equal(t, "amount", merged.Params.String("column", ""), "untouched params survive")

	// The base layer is immutable.
	assert.True(t, base.Enabled)
	assert.InDelta(t, 0.95, base.Params.Float("threshold", 0), 1e-9)
}

func TestApplyOverridesLayering(t *testing.T) {
	defaults := map[string]Config{
		"validity.range_validation": {Enabled: true, Weight: 6, Params: Params{}},
	}

	templateWeight := 10.0
	userWeight := 2.0
	merged := ApplyOverrides(defaults,
		map[string]Override{
			"validity.range_validation": {Weight: &templateWeight, Params: Params{"min": 0}},
			"validity.unknown_rule":     {Weight: &templateWeight},
		},
		map[string]Override{
			"validity.range_validation": {Weight: &userWeight},
		},
	)

	cfg := merged["validity.range_validation"]
	assert.InDelta(t, 2.0, cfg.Weight, 1e-9, "user layer wins over template")
	assert.InDelta(t, 0.0, cfg.Params.Float("min", -1), 1e-9, "template params survive user layer")
	_, exists := merged["validity.unknown_rule"]
	assert.False(t, exists, "overrides for unregistered rules are dropped")
}

func TestParamsAccessors(t *testing.T) {
	p := Params{
		"f":    "2.5",
		"i":    "7",
		"s":    42,
		"b":    "true",
		"list": []any{"a", "b"},
		"when": "2026-03-01",
	}

	assert.InDelta(t, 2.5, p.Float("f", 0), 1e-9)
	assert.Equal(t, 7, p.Int("i", 0))
	assert.Equal(t, "42", p.String("s", ""))
	assert.True(t, p.Bool("b", false))
	assert.Equal(t, []string{"a", "b"}, p.Strings("list"))

	when, ok := p.Time("when")
	require.True(t, ok)
	assert.Equal(t, 2026, when.Year())

	assert.InDelta(t, 1.5, p.Float("missing", 1.5), 1e-9)
	assert.False(t, p.Has("missing"))
	assert.Nil(t, p.Strings("missing"))
}
