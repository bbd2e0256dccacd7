package rules

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

func init() {
	DefaultRegistry.MustRegister(&outliersRule{})
	DefaultRegistry.MustRegister(&domainMembershipRule{})
	DefaultRegistry.MustRegister(&businessLogicRule{})
}

// outliersRule flags statistically implausible numeric values using a
// fixed closed-form test: IQR fences or z-scores.
type outliersRule struct{}

func (r *outliersRule) ID() string        { return "plausibility.outliers" }
func (r *outliersRule) Dimension() string { return models.DimensionPlausibility }
func (r *outliersRule) Description() string {
	return "Numeric values are free of statistical outliers"
}

func (r *outliersRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  8,
		Params: Params{
			"method":     "iqr",
			"multiplier": 1.5,
			"threshold":  3.0,
		},
	}
}

func (r *outliersRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	method := cfg.Params.String("method", "iqr")
	if method != "iqr" && method != "zscore" {
		return Result{
			Score: 0,
			Findings: []models.Finding{
				models.NewFinding(r.ID(), models.SeverityHigh,
					fmt.Sprintf("unknown outlier method %q (want iqr or zscore)", method), false).
					WithDetail("method", method),
			},
		}
	}

	targets := cfg.Params.Strings("columns")
	if len(targets) == 0 {
		for _, col := range ds.Columns() {
			if col.Type == datasource.TypeInteger || col.Type == datasource.TypeFloat {
				targets = append(targets, col.Name)
			}
		}
	}
	if len(targets) == 0 {
		return insufficientDataResult(r.ID(), "numeric columns", cfg.Weight)
	}

	var (
		findings []models.Finding
		earned   float64
	)
	share := cfg.Weight / float64(len(targets))

	for _, name := range targets {
		if !ds.HasColumn(name) {
			findings = append(findings, missingColumnResult(r.ID(), name).Findings...)
			continue
		}

		values, _ := ds.Values(name)
		var numbers []float64
		for _, v := range values {
			if f, ok := datasource.ToFloat(v); ok {
				numbers = append(numbers, f)
			}
		}

		if len(numbers) < minStatSample {
			// Benefit of the doubt: absence of testable data is not penalized.
			earned += share
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("column %q has insufficient numeric data for outlier detection", name), true).
				WithDetail("column", name).
				WithDetail("insufficient_data", true))
			continue
		}

		var outliers int
		if method == "iqr" {
			outliers = iqrOutliers(numbers, cfg.Params.Float("multiplier", 1.5))
		} else {
			outliers = zscoreOutliers(numbers, cfg.Params.Float("threshold", 3.0))
		}

		fraction := float64(len(numbers)-outliers) / float64(len(numbers))
		earned += share * fraction

		if outliers == 0 {
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("column %q has no %s outliers", name, method), true).
				WithDetail("column", name).
				WithDetail("method", method))
		} else {
			findings = append(findings, models.NewFinding(r.ID(), violationSeverity(fraction),
				fmt.Sprintf("column %q has %d %s outliers across %d values", name, outliers, method, len(numbers)), false).
				WithDetail("column", name).
				WithDetail("method", method).
				WithDetail("outliers", outliers))
		}
	}

	return Result{Score: earned, Findings: findings}
}

// domainMembershipRule checks that values belong to a declared enum.
type domainMembershipRule struct{}

func (r *domainMembershipRule) ID() string        { return "plausibility.domain_membership" }
func (r *domainMembershipRule) Dimension() string { return models.DimensionPlausibility }
func (r *domainMembershipRule) Description() string {
	return "Values belong to a declared set"
}

func (r *domainMembershipRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 6, Params: Params{}}
}

func (r *domainMembershipRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	column := cfg.Params.String("column", "")
	allowed := cfg.Params.Strings("allowed")
	if column == "" || len(allowed) == 0 {
		return notConfiguredResult(r.ID(), "no value domain declared", cfg.Weight)
	}
	if !ds.HasColumn(column) {
		return missingColumnResult(r.ID(), column)
	}

	caseSensitive := cfg.Params.Bool("case_sensitive", false)
	domain := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		if !caseSensitive {
			v = strings.ToLower(v)
		}
		domain[v] = true
	}

	values, _ := ds.Values(column)
	var total, member int
	for _, v := range values {
		if datasource.IsNull(v) {
			continue
		}
		total++
		s := datasource.ToString(v)
		if !caseSensitive {
			s = strings.ToLower(s)
		}
		if domain[s] {
			member++
		}
	}

	if total == 0 {
		return insufficientDataResult(r.ID(), fmt.Sprintf("values in column %q", column), cfg.Weight)
	}

	return ratioResult(r.ID(), cfg, member, total,
		fmt.Sprintf("values in column %q belong to the declared domain", column),
		map[string]any{"column": column, "domain_size": len(allowed)})
}

// businessLogicRule verifies cross-field arithmetic declared by a template,
// e.g. quantity * unit_price matching total within a tolerance.
type businessLogicRule struct{}

func (r *businessLogicRule) ID() string        { return "plausibility.business_logic" }
func (r *businessLogicRule) Dimension() string { return models.DimensionPlausibility }
func (r *businessLogicRule) Description() string {
	return "Declared cross-field arithmetic holds within tolerance"
}

func (r *businessLogicRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 6, Params: Params{}}
}

// businessCheck is one declared arithmetic predicate.
type businessCheck struct {
	Name      string
	Kind      string // product, sum, difference
	Inputs    []string
	Result    string
	Tolerance float64
}

func parseBusinessChecks(raw any) ([]businessCheck, error) {
	entries, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("checks must be a list: %w", err)
	}

	checks := make([]businessCheck, 0, len(entries))
	for i, entry := range entries {
		m, err := cast.ToStringMapE(entry)
		if err != nil {
			return nil, fmt.Errorf("check %d is not a map: %w", i, err)
		}
		p := Params(m)
		check := businessCheck{
			Name:      p.String("name", fmt.Sprintf("check_%d", i)),
			Kind:      p.String("kind", "product"),
			Inputs:    p.Strings("inputs"),
			Result:    p.String("result", ""),
			Tolerance: p.Float("tolerance", 0.01),
		}
		if len(check.Inputs) != 2 || check.Result == "" {
			return nil, fmt.Errorf("check %q needs two inputs and a result column", check.Name)
		}
		switch check.Kind {
		case "product", "sum", "difference":
		default:
			return nil, fmt.Errorf("check %q has unknown kind %q", check.Name, check.Kind)
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func (r *businessLogicRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	if !cfg.Params.Bool("business_checks_enabled", true) {
		return notConfiguredResult(r.ID(), "business-logic checks disabled for this run", cfg.Weight)
	}
	if !cfg.Params.Has("checks") {
		return notConfiguredResult(r.ID(), "no business-logic checks declared", cfg.Weight)
	}

	checks, err := parseBusinessChecks(cfg.Params["checks"])
	if err != nil {
		return Result{
			Score: 0,
			Findings: []models.Finding{
				models.NewFinding(r.ID(), models.SeverityHigh,
					fmt.Sprintf("invalid business-logic configuration: %v", err), false),
			},
		}
	}
	if len(checks) == 0 {
		return notConfiguredResult(r.ID(), "no business-logic checks declared", cfg.Weight)
	}

	var (
		findings []models.Finding
		earned   float64
	)
	share := cfg.Weight / float64(len(checks))

	for _, check := range checks {
		missing := ""
		for _, col := range append(append([]string{}, check.Inputs...), check.Result) {
			if !ds.HasColumn(col) {
				missing = col
				break
			}
		}
		if missing != "" {
			findings = append(findings, missingColumnResult(r.ID(), missing).Findings...)
			continue
		}

		left, _ := ds.Values(check.Inputs[0])
		right, _ := ds.Values(check.Inputs[1])
		result, _ := ds.Values(check.Result)

		var comparable, holding int
		for i := range left {
			a, okA := datasource.ToFloat(left[i])
			b, okB := datasource.ToFloat(right[i])
			c, okC := datasource.ToFloat(result[i])
			if !okA || !okB || !okC {
				continue
			}
			comparable++

			var computed float64
			switch check.Kind {
			case "product":
				computed = a * b
			case "sum":
				computed = a + b
			case "difference":
				computed = a - b
			}

			if math.Abs(computed-c) <= check.Tolerance*math.Max(1, math.Abs(c)) {
				holding++
			}
		}

		if comparable == 0 {
			earned += share
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("check %q has insufficient numeric data", check.Name), true).
				WithDetail("check", check.Name).
				WithDetail("insufficient_data", true))
			continue
		}

		fraction := float64(holding) / float64(comparable)
		earned += share * fraction

		if holding == comparable {
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("check %q holds for all %d rows", check.Name, comparable), true).
				WithDetail("check", check.Name))
		} else {
			findings = append(findings, models.NewFinding(r.ID(), violationSeverity(fraction),
				fmt.Sprintf("check %q fails for %d of %d rows", check.Name, comparable-holding, comparable), false).
				WithDetail("check", check.Name).
				WithDetail("violations", comparable-holding))
		}
	}

	return Result{Score: earned, Findings: findings}
}
