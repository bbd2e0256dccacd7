package rules

import (
	"fmt"
	"regexp"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

func init() {
	DefaultRegistry.MustRegister(&typeConsistencyRule{})
	DefaultRegistry.MustRegister(&rangeValidationRule{})
	DefaultRegistry.MustRegister(&formatConsistencyRule{})
}

// typeConsistencyRule checks that cell values conform to their column's
// inferred or declared logical type.
type typeConsistencyRule struct{}

func (r *typeConsistencyRule) ID() string        { return "validity.type_consistency" }
func (r *typeConsistencyRule) Dimension() string { return models.DimensionValidity }
func (r *typeConsistencyRule) Description() string {
	return "Values conform to their column's logical type"
}

func (r *typeConsistencyRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  8,
		Params: Params{
			"threshold": 0.95,
		},
	}
}

func (r *typeConsistencyRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	threshold := cfg.Params.Float("threshold", 0.95)

	targets := cfg.Params.Strings("columns")
	configured := len(targets) > 0
	if !configured {
		for _, col := range ds.Columns() {
			if col.Type != datasource.TypeString && col.Type != datasource.TypeUnknown {
				targets = append(targets, col.Name)
			}
		}
	}
	if len(targets) == 0 {
		return insufficientDataResult(r.ID(), "typed columns", cfg.Weight)
	}

	var (
		findings []models.Finding
		earned   float64
	)
	share := cfg.Weight / float64(len(targets))

	for _, name := range targets {
		col, ok := ds.Column(name)
		if !ok {
			findings = append(findings, missingColumnResult(r.ID(), name).Findings...)
			continue
		}

		colType := col.Type
		if colType == datasource.TypeString || colType == datasource.TypeUnknown {
			// Explicitly configured untyped column: nothing to check against.
			earned += share
			continue
		}

		values, err := ds.Values(name)
		if err != nil {
			findings = append(findings, missingColumnResult(r.ID(), name).Findings...)
			continue
		}

		var nonNull, matching int
		for _, v := range values {
			if datasource.IsNull(v) {
				continue
			}
			nonNull++
			if datasource.Matches(v, colType) {
				matching++
			}
		}

		if nonNull == 0 {
			earned += share
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("column %q has no non-null values to type-check", name), true).
				WithDetail("column", name).
				WithDetail("insufficient_data", true))
			continue
		}

		fraction := float64(matching) / float64(nonNull)
		earned += share * fraction

		if fraction >= threshold {
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("column %q is type-consistent (%s)", name, colType), true).
				WithDetail("column", name).
				WithDetail("type", string(colType)))
		} else {
			findings = append(findings, models.NewFinding(r.ID(), violationSeverity(fraction),
				fmt.Sprintf("column %q: %d of %d values do not parse as %s", name, nonNull-matching, nonNull, colType), false).
				WithDetail("column", name).
				WithDetail("type", string(colType)).
				WithDetail("inconsistent", nonNull-matching))
		}
	}

	return Result{Score: earned, Findings: findings}
}

// rangeValidationRule checks that numeric values in a column fall inside a
// configured [min, max] window.
type rangeValidationRule struct{}

func (r *rangeValidationRule) ID() string        { return "validity.range_validation" }
func (r *rangeValidationRule) Dimension() string { return models.DimensionValidity }
func (r *rangeValidationRule) Description() string {
	return "Numeric values fall inside a declared range"
}

func (r *rangeValidationRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 6, Params: Params{}}
}

func (r *rangeValidationRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	column := cfg.Params.String("column", "")
	if column == "" {
		return notConfiguredResult(r.ID(), "no range declared; skipping range validation", cfg.Weight)
	}
	if !ds.HasColumn(column) {
		return missingColumnResult(r.ID(), column)
	}

	hasMin := cfg.Params.Has("min")
	hasMax := cfg.Params.Has("max")
	if !hasMin && !hasMax {
		return notConfiguredResult(r.ID(), fmt.Sprintf("no bounds declared for column %q", column), cfg.Weight)
	}
	minVal := cfg.Params.Float("min", 0)
	maxVal := cfg.Params.Float("max", 0)

	values, _ := ds.Values(column)
	var total, inRange int
	for _, v := range values {
		f, ok := datasource.ToFloat(v)
		if !ok {
			continue
		}
		total++
		if (!hasMin || f >= minVal) && (!hasMax || f <= maxVal) {
			inRange++
		}
	}

	if total == 0 {
		return insufficientDataResult(r.ID(), fmt.Sprintf("numeric values in column %q", column), cfg.Weight)
	}

	return ratioResult(r.ID(), cfg, inRange, total,
		fmt.Sprintf("values in column %q are within the declared range", column),
		map[string]any{"column": column})
}

// Named formats usable by format_consistency without a custom pattern.
var namedFormats = map[string]*regexp.Regexp{
	"currency_code": regexp.MustCompile(`^[A-Z]{3}$`),
	"date":          regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2})?(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`),
	"email":         regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),
	"url":           regexp.MustCompile(`^https?://\S+$`),
	"uuid":          regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
}

// formatConsistencyRule checks string values against a named format or a
// custom regular expression.
type formatConsistencyRule struct{}

func (r *formatConsistencyRule) ID() string        { return "validity.format_consistency" }
func (r *formatConsistencyRule) Dimension() string { return models.DimensionValidity }
func (r *formatConsistencyRule) Description() string {
	return "String values match a declared format"
}

func (r *formatConsistencyRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 6, Params: Params{}}
}

func (r *formatConsistencyRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	column := cfg.Params.String("column", "")
	if column == "" {
		return notConfiguredResult(r.ID(), "no format declared; skipping format check", cfg.Weight)
	}
	if !ds.HasColumn(column) {
		return missingColumnResult(r.ID(), column)
	}

	var pattern *regexp.Regexp
	if name := cfg.Params.String("format", ""); name != "" {
		known, ok := namedFormats[name]
		if !ok {
			return Result{
				Score: 0,
				Findings: []models.Finding{
					models.NewFinding(r.ID(), models.SeverityHigh,
						fmt.Sprintf("unknown named format %q", name), false).
						WithDetail("format", name),
				},
			}
		}
		pattern = known
	} else if raw := cfg.Params.String("pattern", ""); raw != "" {
		compiled, err := regexp.Compile(raw)
		if err != nil {
			return Result{
				Score: 0,
				Findings: []models.Finding{
					models.NewFinding(r.ID(), models.SeverityHigh,
						fmt.Sprintf("invalid format pattern: %v", err), false).
						WithDetail("pattern", raw),
				},
			}
		}
		pattern = compiled
	} else {
		return notConfiguredResult(r.ID(), fmt.Sprintf("no format declared for column %q", column), cfg.Weight)
	}

	values, _ := ds.Values(column)
	var total, matching int
	for _, v := range values {
		if datasource.IsNull(v) {
			continue
		}
		total++
		if pattern.MatchString(datasource.ToString(v)) {
			matching++
		}
	}

	if total == 0 {
		return insufficientDataResult(r.ID(), fmt.Sprintf("values in column %q", column), cfg.Weight)
	}

	return ratioResult(r.ID(), cfg, matching, total,
		fmt.Sprintf("values in column %q match the declared format", column),
		map[string]any{"column": column})
}
