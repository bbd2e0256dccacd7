package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

func numericDS(t *testing.T, values ...any) *datasource.DataSource {
	t.Helper()
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	return makeDS(t, []datasource.Column{
		{Name: "amount", Type: datasource.TypeFloat},
	}, rows)
}

func TestOutliersIQR(t *testing.T) {
	ds := numericDS(t, "10", "11", "12", "10", "11", "12", "10", "500")

	rule := &outliersRule{}
	result := rule.Evaluate(ds, rule.DefaultConfig())

	// 500 is far outside the IQR fences; 7 of 8 values are clean.
	assert.InDelta(t, 8.0*(7.0/8.0), result.Score, 1e-9)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, 1, result.Findings[0].Details["outliers"])
}

func TestOutliersZScore(t *testing.T) {
	values := make([]any, 0, 21)
	for i := 0; i < 20; i++ {
		values = append(values, "100")
	}
	values = append(values, "1000")

	ds := numericDS(t, values...)

	rule := &outliersRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["method"] = "zscore"

	result := rule.Evaluate(ds, cfg)
	assert.Less(t, result.Score, 8.0)
}

func TestOutliersAllNullColumn(t *testing.T) {
	ds := numericDS(t, "", nil, "NA", "")

	rule := &outliersRule{}
	result := rule.Evaluate(ds, rule.DefaultConfig())

	// Benefit of the doubt: no numeric data earns full credit.
	assert.InDelta(t, 8.0, result.Score, 1e-9)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, models.SeverityInfo, result.Findings[0].Severity)
}

func TestOutliersUnknownMethod(t *testing.T) {
	ds := numericDS(t, "1", "2", "3", "4")

	rule := &outliersRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["method"] = "mad"

	result := rule.Evaluate(ds, cfg)
	assert.Zero(t, result.Score)
	assert.Equal(t, models.SeverityHigh, result.Findings[0].Severity)
}

func TestDomainMembership(t *testing.T) {
	ds := makeDS(t, []datasource.Column{
		{Name: "status", Type: datasource.TypeString},
	}, [][]any{
		{"paid"}, {"PENDING"}, {"void"}, {"shipped"},
	})

	rule := &domainMembershipRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["column"] = "status"
	cfg.Params["allowed"] = []string{"paid", "pending", "void"}

	result := rule.Evaluate(ds, cfg)

	// Case-insensitive by default, so PENDING counts; shipped does not.
	assert.InDelta(t, 6.0*0.75, result.Score, 1e-9)
}

func TestDomainMembershipCaseSensitive(t *testing.T) {
	ds := makeDS(t, []datasource.Column{
		{Name: "status", Type: datasource.TypeString},
	}, [][]any{{"paid"}, {"PAID"}})

	rule := &domainMembershipRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["column"] = "status"
	cfg.Params["allowed"] = []string{"paid"}
	cfg.Params["case_sensitive"] = true

	result := rule.Evaluate(ds, cfg)
	assert.InDelta(t, 6.0*0.5, result.Score, 1e-9)
}

func TestBusinessLogicProductCheck(t *testing.T) {
	ds := makeDS(t, []datasource.Column{
		{Name: "quantity", Type: datasource.TypeInteger},
		{Name: "unit_price", Type: datasource.TypeFloat},
		{Name: "total", Type: datasource.TypeFloat},
	}, [][]any{
		{"2", "10.0", "20.0"},
		{"3", "5.0", "15.0"},
		{"4", "2.5", "99.0"}, // arithmetic violation
	})

	rule := &businessLogicRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["checks"] = []any{
		map[string]any{
			"name":   "line_total",
			"kind":   "product",
			"inputs": []any{"quantity", "unit_price"},
			"result": "total",
		},
	}

	result := rule.Evaluate(ds, cfg)
	assert.InDelta(t, 6.0*(2.0/3.0), result.Score, 1e-9)
}

func TestBusinessLogicDisabledByMode(t *testing.T) {
	ds := numericDS(t, "1")

	rule := &businessLogicRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["checks"] = []any{
		map[string]any{"kind": "product", "inputs": []any{"a", "b"}, "result": "amount"},
	}
	cfg.Params["business_checks_enabled"] = false

	result := rule.Evaluate(ds, cfg)
	assert.InDelta(t, 6.0, result.Score, 1e-9)
	assert.True(t, result.Findings[0].Passed)
}

func TestBusinessLogicInvalidConfig(t *testing.T) {
	ds := numericDS(t, "1")

	rule := &businessLogicRule{}
	cfg := rule.DefaultConfig()
	cfg.Params["checks"] = []any{
		map[string]any{"kind": "quotient", "inputs": []any{"a", "b"}, "result": "amount"},
	}

	result := rule.Evaluate(ds, cfg)
	assert.Zero(t, result.Score)
	assert.Equal(t, models.SeverityHigh, result.Findings[0].Severity)
}

func TestBusinessLogicUnconfigured(t *testing.T) {
	ds := numericDS(t, "1")

	rule := &businessLogicRule{}
	result := rule.Evaluate(ds, rule.DefaultConfig())
	assert.InDelta(t, 6.0, result.Score, 1e-9)
}

func TestStatsHelpers(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	q1, q3 := quartiles(values)
	assert.InDelta(t, 3.25, q1, 1e-9)
	assert.InDelta(t, 7.75, q3, 1e-9)

	assert.InDelta(t, 5.5, mean(values), 1e-9)
	assert.InDelta(t, 3.0276503540974917, stddev(values), 1e-9)

	assert.Zero(t, iqrOutliers(values, 1.5))
	assert.Equal(t, 1, iqrOutliers(append(values, 100), 1.5))

	uniform := []float64{5, 5, 5, 5}
	assert.Zero(t, zscoreOutliers(uniform, 3), "zero variance never flags outliers")
}
