package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() *Template {
	return &Template{
		ID:              "financial/invoice-processing-v1.0.0",
		RequiredColumns: []string{"invoice_number"},
		OptionalColumns: []string{"amount"},
		ColumnPatterns: map[string][]string{
			"invoice_number": {"invoice.*num"},
			"amount":         {"amount"},
		},
	}
}

func TestValidateAcceptsMinimalTemplate(t *testing.T) {
	assert.NoError(t, validTemplate().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"missing id", func(tpl *Template) { tpl.ID = "" }},
		{"bad id shape", func(tpl *Template) { tpl.ID = "invoice-processing-1.0" }},
		{"no required columns", func(tpl *Template) { tpl.RequiredColumns = nil }},
		{"role without patterns", func(tpl *Template) { delete(tpl.ColumnPatterns, "invoice_number") }},
		{"duplicate role pattern", func(tpl *Template) {
			tpl.ColumnPatterns["invoice_number"] = []string{"invoice.*num", "invoice.*num"}
		}},
		{"unparseable pattern", func(tpl *Template) {
			tpl.ColumnPatterns["invoice_number"] = []string{"invoice.*num("}
		}},
		{"unknown dimension", func(tpl *Template) {
			tpl.Dimensions = map[string]DimensionConfig{"accuracy": {}}
		}},
		{"negative dimension weight", func(tpl *Template) {
			w := -1.0
			tpl.Dimensions = map[string]DimensionConfig{"validity": {Weight: &w}}
		}},
		{"unknown rule type", func(tpl *Template) {
			tpl.Dimensions = map[string]DimensionConfig{
				"consistency": {Rules: map[string]RuleOverride{"uniquness": {}}},
			}
		}},
		{"rule type from another dimension", func(tpl *Template) {
			tpl.Dimensions = map[string]DimensionConfig{
				"validity": {Rules: map[string]RuleOverride{"uniqueness": {}}},
			}
		}},
		{"negative rule weight", func(tpl *Template) {
			w := -2.0
			tpl.Dimensions = map[string]DimensionConfig{
				"validity": {Rules: map[string]RuleOverride{"range_validation": {Weight: &w}}},
			}
		}},
		{"overall minimum above scale", func(tpl *Template) {
			tpl.Requirements.OverallMinimum = 120
		}},
		{"dimension minimum above scale", func(tpl *Template) {
			tpl.Requirements.DimensionMinimums = map[string]float64{"validity": 25}
		}},
		{"minimum for unknown dimension", func(tpl *Template) {
			tpl.Requirements.DimensionMinimums = map[string]float64{"accuracy": 10}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(tpl)
			err := tpl.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTemplate)
		})
	}
}

func TestIDComponents(t *testing.T) {
	tpl := validTemplate()
	assert.Equal(t, "financial", tpl.Industry())
	assert.Equal(t, "invoice-processing", tpl.UseCase())
	assert.Equal(t, "1.0.0", tpl.Version())
}

func TestDimensionMinimumsMerge(t *testing.T) {
	tpl := validTemplate()
	tpl.Dimensions = map[string]DimensionConfig{
		"validity":     {Minimum: 10},
		"completeness": {Minimum: 12},
	}
	tpl.Requirements.DimensionMinimums = map[string]float64{"validity": 14}

	minimums := tpl.DimensionMinimums()
	assert.Equal(t, 14.0, minimums["validity"], "requirements block wins")
	assert.Equal(t, 12.0, minimums["completeness"])
}

func TestBuiltinCatalog(t *testing.T) {
	catalog := Builtins()
	require.Len(t, catalog, 2)
	assert.Equal(t, "financial/invoice-processing-v1.0.0", catalog[0].ID)
	assert.Equal(t, "logistics/shipment-tracking-v1.0.0", catalog[1].ID)

	for _, tpl := range catalog {
		assert.NoError(t, tpl.Validate(), tpl.ID)
	}
}

func TestFind(t *testing.T) {
	tpl, err := Find("financial/invoice-processing-v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, 85.0, tpl.Requirements.OverallMinimum)

	_, err = Find("financial/no-such-thing-v1.0.0")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("id: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
