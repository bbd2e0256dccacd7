package rules

import (
	"fmt"
	"time"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

func init() {
	DefaultRegistry.MustRegister(&dateRecencyRule{})
	DefaultRegistry.MustRegister(&dateRangeRule{})
	DefaultRegistry.MustRegister(&dateDifferenceRule{})
}

// firstDateColumn picks the default target for freshness checks.
func firstDateColumn(ds *datasource.DataSource) (string, bool) {
	for _, col := range ds.Columns() {
		if col.Type == datasource.TypeDate || col.Type == datasource.TypeTimestamp {
			return col.Name, true
		}
	}
	return "", false
}

// referenceInstant resolves the instant freshness is measured against. The
// orchestrator injects as_of so rule evaluation stays a pure function of
// (data, config); without it the newest value in the column serves as the
// intrinsic reference.
func referenceInstant(cfg Config, dates []time.Time) time.Time {
	if asOf, ok := cfg.Params.Time("as_of"); ok {
		return asOf
	}
	var newest time.Time
	for _, d := range dates {
		if d.After(newest) {
			newest = d
		}
	}
	return newest
}

// columnDates extracts the parseable date values from a column.
func columnDates(ds *datasource.DataSource, column string) []time.Time {
	values, err := ds.Values(column)
	if err != nil {
		return nil
	}
	var dates []time.Time
	for _, v := range values {
		if t, ok := datasource.ToTime(v); ok {
			dates = append(dates, t)
		}
	}
	return dates
}

// dateRecencyRule checks that date values are no older than a maximum age.
type dateRecencyRule struct{}

func (r *dateRecencyRule) ID() string        { return "freshness.date_recency" }
func (r *dateRecencyRule) Dimension() string { return models.DimensionFreshness }
func (r *dateRecencyRule) Description() string {
	return "Date values are within the maximum allowed age"
}

func (r *dateRecencyRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  8,
		Params: Params{
			"max_age_days": 365,
		},
	}
}

func (r *dateRecencyRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	column := cfg.Params.String("column", "")
	if column == "" {
		auto, ok := firstDateColumn(ds)
		if !ok {
			return insufficientDataResult(r.ID(), "date columns", cfg.Weight)
		}
		column = auto
	} else if !ds.HasColumn(column) {
		return missingColumnResult(r.ID(), column)
	}

	dates := columnDates(ds, column)
	if len(dates) == 0 {
		return insufficientDataResult(r.ID(), fmt.Sprintf("date values in column %q", column), cfg.Weight)
	}

	maxAge := time.Duration(cfg.Params.Float("max_age_days", 365)*24) * time.Hour
	asOf := referenceInstant(cfg, dates)

	var recent int
	for _, d := range dates {
		if asOf.Sub(d) <= maxAge {
			recent++
		}
	}

	return ratioResult(r.ID(), cfg, recent, len(dates),
		fmt.Sprintf("dates in column %q are within %s", column, maxAge),
		map[string]any{"column": column, "max_age_days": cfg.Params.Float("max_age_days", 365)})
}

// dateRangeRule checks that date values fall inside an offset window around
// the reference instant.
type dateRangeRule struct{}

func (r *dateRangeRule) ID() string        { return "freshness.date_range" }
func (r *dateRangeRule) Dimension() string { return models.DimensionFreshness }
func (r *dateRangeRule) Description() string {
	return "Date values fall inside an offset window"
}

func (r *dateRangeRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  6,
		Params: Params{
			"min_offset_days": -365,
			"max_offset_days": 0,
		},
	}
}

func (r *dateRangeRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	column := cfg.Params.String("column", "")
	if column == "" {
		auto, ok := firstDateColumn(ds)
		if !ok {
			return insufficientDataResult(r.ID(), "date columns", cfg.Weight)
		}
		column = auto
	} else if !ds.HasColumn(column) {
		return missingColumnResult(r.ID(), column)
	}

	dates := columnDates(ds, column)
	if len(dates) == 0 {
		return insufficientDataResult(r.ID(), fmt.Sprintf("date values in column %q", column), cfg.Weight)
	}

	asOf := referenceInstant(cfg, dates)
	lower := asOf.Add(time.Duration(cfg.Params.Float("min_offset_days", -365)*24) * time.Hour)
	upper := asOf.Add(time.Duration(cfg.Params.Float("max_offset_days", 0)*24) * time.Hour)

	var inWindow int
	for _, d := range dates {
		if !d.Before(lower) && !d.After(upper) {
			inWindow++
		}
	}

	return ratioResult(r.ID(), cfg, inWindow, len(dates),
		fmt.Sprintf("dates in column %q are inside the expected window", column),
		map[string]any{"column": column})
}

// dateDifferenceRule checks the gap between two date columns, e.g. that a
// due date follows an issue date by no more than 90 days.
type dateDifferenceRule struct{}

func (r *dateDifferenceRule) ID() string        { return "freshness.date_difference" }
func (r *dateDifferenceRule) Dimension() string { return models.DimensionFreshness }
func (r *dateDifferenceRule) Description() string {
	return "Gap between two date columns stays within bounds"
}

func (r *dateDifferenceRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  6,
		Params: Params{
			"min_days": 0,
			"max_days": 90,
		},
	}
}

func (r *dateDifferenceRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	colA := cfg.Params.String("column_a", "")
	colB := cfg.Params.String("column_b", "")
	if colA == "" || colB == "" {
		return notConfiguredResult(r.ID(), "no date column pair declared; skipping date difference check", cfg.Weight)
	}
	if !ds.HasColumn(colA) {
		return missingColumnResult(r.ID(), colA)
	}
	if !ds.HasColumn(colB) {
		return missingColumnResult(r.ID(), colB)
	}

	minGap := time.Duration(cfg.Params.Float("min_days", 0)*24) * time.Hour
	maxGap := time.Duration(cfg.Params.Float("max_days", 90)*24) * time.Hour

	valuesA, _ := ds.Values(colA)
	valuesB, _ := ds.Values(colB)

	var comparable, within int
	for i := range valuesA {
		a, okA := datasource.ToTime(valuesA[i])
		b, okB := datasource.ToTime(valuesB[i])
		if !okA || !okB {
			continue
		}
		comparable++
		gap := b.Sub(a)
		if gap >= minGap && gap <= maxGap {
			within++
		}
	}

	if comparable == 0 {
		return insufficientDataResult(r.ID(),
			fmt.Sprintf("comparable dates in columns %q and %q", colA, colB), cfg.Weight)
	}

	return ratioResult(r.ID(), cfg, within, comparable,
		fmt.Sprintf("rows keep %q within [%s, %s] of %q", colB, minGap, maxGap, colA),
		map[string]any{"column_a": colA, "column_b": colB})
}
