package rules

import (
	"fmt"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

func init() {
	DefaultRegistry.MustRegister(&requiredFieldsRule{})
	DefaultRegistry.MustRegister(&populationDensityRule{})
}

// requiredFieldsRule checks that required columns exist and are populated.
// An empty column counts as 0% populated, not as an error.
type requiredFieldsRule struct{}

func (r *requiredFieldsRule) ID() string        { return "completeness.required_fields" }
func (r *requiredFieldsRule) Dimension() string { return models.DimensionCompleteness }
func (r *requiredFieldsRule) Description() string {
	return "Required columns are present and populated"
}

func (r *requiredFieldsRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 12, Params: Params{}}
}

func (r *requiredFieldsRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	required := cfg.Params.Strings("columns")
	if len(required) == 0 {
		// Without declared requirements every column is treated as required.
		required = ds.ColumnNames()
	}
	if len(required) == 0 || ds.RowCount() == 0 {
		return insufficientDataResult(r.ID(), "required fields", cfg.Weight)
	}

	var (
		findings []models.Finding
		earned   float64
	)
	share := cfg.Weight / float64(len(required))

	for _, name := range required {
		values, err := ds.Values(name)
		if err != nil {
			findings = append(findings, missingColumnResult(r.ID(), name).Findings...)
			continue
		}

		var populated int
		for _, v := range values {
			if !datasource.IsNull(v) {
				populated++
			}
		}

		fraction := float64(populated) / float64(len(values))
		earned += share * fraction

		if populated == len(values) {
			continue // fully populated columns do not need a finding each
		}

		severity := violationSeverity(fraction)
		findings = append(findings, models.NewFinding(r.ID(), severity,
			fmt.Sprintf("column %q is %.1f%% populated (%d of %d rows)", name, fraction*100, populated, len(values)), false).
			WithDetail("column", name).
			WithDetail("populated", populated).
			WithDetail("rows", len(values)))
	}

	if len(findings) == 0 {
		findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
			fmt.Sprintf("all %d required columns are fully populated", len(required)), true).
			WithDetail("columns", len(required)))
	}

	return Result{Score: earned, Findings: findings}
}

// populationDensityRule scores the overall fraction of non-null cells.
type populationDensityRule struct{}

func (r *populationDensityRule) ID() string        { return "completeness.population_density" }
func (r *populationDensityRule) Dimension() string { return models.DimensionCompleteness }
func (r *populationDensityRule) Description() string {
	return "Overall non-null cell density"
}

func (r *populationDensityRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  8,
		Params: Params{
			"threshold": 0.95,
		},
	}
}

func (r *populationDensityRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	threshold := cfg.Params.Float("threshold", 0.95)

	var total, populated int
	for _, name := range ds.ColumnNames() {
		values, err := ds.Values(name)
		if err != nil {
			continue
		}
		for _, v := range values {
			total++
			if !datasource.IsNull(v) {
				populated++
			}
		}
	}

	if total == 0 {
		return insufficientDataResult(r.ID(), "cells", cfg.Weight)
	}

	density := float64(populated) / float64(total)
	passed := density >= threshold

	severity := models.SeverityInfo
	if !passed {
		severity = violationSeverity(density)
	}

	return Result{
		Score: cfg.Weight * density,
		Findings: []models.Finding{
			models.NewFinding(r.ID(), severity,
				fmt.Sprintf("%.1f%% of cells are populated (threshold %.0f%%)", density*100, threshold*100), passed).
				WithDetail("density", density).
				WithDetail("threshold", threshold),
		},
	}
}
