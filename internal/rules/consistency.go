package rules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

func init() {
	DefaultRegistry.MustRegister(&uniquenessRule{})
	DefaultRegistry.MustRegister(&crossFieldRule{})
	DefaultRegistry.MustRegister(&groupConsistencyRule{})
	DefaultRegistry.MustRegister(&dateComparisonRule{})
}

// keyNameSeparators maps the separator spellings column names use in the
// wild onto underscores before the key heuristic runs.
var keyNameSeparators = strings.NewReplacer("-", "_", " ", "_", ".", "_")

// normalizeKeyName lowercases a column name with camel-case boundaries and
// separators rewritten as underscores, so InvoiceNumber, Invoice-Number
// and invoice_number all normalize the same way.
func normalizeKeyName(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return keyNameSeparators.Replace(b.String())
}

// defaultKeyColumns guesses identifier-like columns for intrinsic
// uniqueness checks when none are configured.
func defaultKeyColumns(ds *datasource.DataSource) []string {
	var keys []string
	for _, name := range ds.ColumnNames() {
		normalized := normalizeKeyName(name)
		if normalized == "id" || strings.HasSuffix(normalized, "_id") ||
			strings.HasSuffix(normalized, "_number") || strings.HasSuffix(normalized, "_key") {
			keys = append(keys, name)
		}
	}
	return keys
}

// uniquenessRule checks that key columns contain no duplicate values.
type uniquenessRule struct{}

func (r *uniquenessRule) ID() string        { return "consistency.uniqueness" }
func (r *uniquenessRule) Dimension() string { return models.DimensionConsistency }
func (r *uniquenessRule) Description() string {
	return "Key columns contain no duplicate values"
}

func (r *uniquenessRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 8, Params: Params{}}
}

func (r *uniquenessRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	columns := cfg.Params.Strings("columns")
	if len(columns) == 0 {
		columns = defaultKeyColumns(ds)
	}
	if len(columns) == 0 {
		return insufficientDataResult(r.ID(), "key columns", cfg.Weight)
	}

	var (
		findings []models.Finding
		earned   float64
	)
	share := cfg.Weight / float64(len(columns))

	for _, name := range columns {
		values, err := ds.Values(name)
		if err != nil {
			findings = append(findings, missingColumnResult(r.ID(), name).Findings...)
			continue
		}

		seen := make(map[string]int)
		var nonNull int
		for _, v := range values {
			if datasource.IsNull(v) {
				continue
			}
			nonNull++
			seen[datasource.ToString(v)]++
		}

		if nonNull == 0 {
			earned += share
			continue
		}

		duplicates := nonNull - len(seen)
		fraction := float64(len(seen)) / float64(nonNull)
		earned += share * fraction

		if duplicates == 0 {
			findings = append(findings, models.NewFinding(r.ID(), models.SeverityInfo,
				fmt.Sprintf("column %q values are unique", name), true).
				WithDetail("column", name))
		} else {
			findings = append(findings, models.NewFinding(r.ID(), violationSeverity(fraction),
				fmt.Sprintf("column %q has %d duplicate values across %d rows", name, duplicates, nonNull), false).
				WithDetail("column", name).
				WithDetail("duplicates", duplicates).
				WithDetail("rows", nonNull))
		}
	}

	return Result{Score: earned, Findings: findings}
}

// Comparison operators accepted by cross_field.
var crossFieldOps = map[string]func(a, b float64) bool{
	"lt": func(a, b float64) bool { return a < b },
	"le": func(a, b float64) bool { return a <= b },
	"eq": func(a, b float64) bool { return a == b },
	"ge": func(a, b float64) bool { return a >= b },
	"gt": func(a, b float64) bool { return a > b },
	"ne": func(a, b float64) bool { return a != b },
}

// crossFieldRule compares two numeric columns row by row.
type crossFieldRule struct{}

func (r *crossFieldRule) ID() string        { return "consistency.cross_field" }
func (r *crossFieldRule) Dimension() string { return models.DimensionConsistency }
func (r *crossFieldRule) Description() string {
	return "A declared comparison holds between two columns"
}

func (r *crossFieldRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 4, Params: Params{}}
}

func (r *crossFieldRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	left := cfg.Params.String("left", "")
	right := cfg.Params.String("right", "")
	op := cfg.Params.String("op", "le")

	if left == "" || right == "" {
		return notConfiguredResult(r.ID(), "no cross-field comparison declared", cfg.Weight)
	}
	compare, ok := crossFieldOps[op]
	if !ok {
		return Result{
			Score: 0,
			Findings: []models.Finding{
				models.NewFinding(r.ID(), models.SeverityHigh,
					fmt.Sprintf("unknown comparison operator %q", op), false).
					WithDetail("op", op),
			},
		}
	}
	if !ds.HasColumn(left) {
		return missingColumnResult(r.ID(), left)
	}
	if !ds.HasColumn(right) {
		return missingColumnResult(r.ID(), right)
	}

	leftValues, _ := ds.Values(left)
	rightValues, _ := ds.Values(right)

	var comparable, holding int
	for i := range leftValues {
		a, okA := datasource.ToFloat(leftValues[i])
		b, okB := datasource.ToFloat(rightValues[i])
		if !okA || !okB {
			continue
		}
		comparable++
		if compare(a, b) {
			holding++
		}
	}

	if comparable == 0 {
		return insufficientDataResult(r.ID(),
			fmt.Sprintf("comparable values in columns %q and %q", left, right), cfg.Weight)
	}

	return ratioResult(r.ID(), cfg, holding, comparable,
		fmt.Sprintf("rows satisfy %s %s %s", left, op, right),
		map[string]any{"left": left, "op": op, "right": right})
}

// groupConsistencyRule checks that rows sharing a group-by key agree on a
// categorical value: within each group the dominant value must cover at
// least the threshold fraction of rows.
type groupConsistencyRule struct{}

func (r *groupConsistencyRule) ID() string        { return "consistency.group_consistency" }
func (r *groupConsistencyRule) Dimension() string { return models.DimensionConsistency }
func (r *groupConsistencyRule) Description() string {
	return "Rows sharing a key agree on a categorical value"
}

func (r *groupConsistencyRule) DefaultConfig() Config {
	return Config{
		Enabled: true,
		Weight:  4,
		Params: Params{
			"threshold": 0.9,
		},
	}
}

func (r *groupConsistencyRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	groupBy := cfg.Params.String("group_by", "")
	column := cfg.Params.String("column", "")
	if groupBy == "" || column == "" {
		return notConfiguredResult(r.ID(), "no group consistency check declared", cfg.Weight)
	}
	if !ds.HasColumn(groupBy) {
		return missingColumnResult(r.ID(), groupBy)
	}
	if !ds.HasColumn(column) {
		return missingColumnResult(r.ID(), column)
	}

	threshold := cfg.Params.Float("threshold", 0.9)

	keys, _ := ds.Values(groupBy)
	values, _ := ds.Values(column)

	groups := make(map[string]map[string]int)
	for i := range keys {
		if datasource.IsNull(keys[i]) || datasource.IsNull(values[i]) {
			continue
		}
		key := datasource.ToString(keys[i])
		if groups[key] == nil {
			groups[key] = make(map[string]int)
		}
		groups[key][datasource.ToString(values[i])]++
	}

	if len(groups) == 0 {
		return insufficientDataResult(r.ID(),
			fmt.Sprintf("groups keyed by column %q", groupBy), cfg.Weight)
	}

	var consistent int
	for _, counts := range groups {
		var total, dominant int
		for _, n := range counts {
			total += n
			if n > dominant {
				dominant = n
			}
		}
		if float64(dominant)/float64(total) >= threshold {
			consistent++
		}
	}

	return ratioResult(r.ID(), cfg, consistent, len(groups),
		fmt.Sprintf("groups keyed by %q agree on %q", groupBy, column),
		map[string]any{"group_by": groupBy, "column": column, "threshold": threshold})
}

// dateComparisonRule checks a declared ordering between two date columns.
type dateComparisonRule struct{}

func (r *dateComparisonRule) ID() string        { return "consistency.date_comparison" }
func (r *dateComparisonRule) Dimension() string { return models.DimensionConsistency }
func (r *dateComparisonRule) Description() string {
	return "An earlier date column never exceeds a later one"
}

func (r *dateComparisonRule) DefaultConfig() Config {
	return Config{Enabled: true, Weight: 4, Params: Params{}}
}

func (r *dateComparisonRule) Evaluate(ds *datasource.DataSource, cfg Config) Result {
	earlier := cfg.Params.String("earlier", "")
	later := cfg.Params.String("later", "")
	if earlier == "" || later == "" {
		return notConfiguredResult(r.ID(), "no date ordering declared", cfg.Weight)
	}
	if !ds.HasColumn(earlier) {
		return missingColumnResult(r.ID(), earlier)
	}
	if !ds.HasColumn(later) {
		return missingColumnResult(r.ID(), later)
	}

	earlierValues, _ := ds.Values(earlier)
	laterValues, _ := ds.Values(later)

	var comparable, ordered int
	for i := range earlierValues {
		a, okA := datasource.ToTime(earlierValues[i])
		b, okB := datasource.ToTime(laterValues[i])
		if !okA || !okB {
			continue
		}
		comparable++
		if !a.After(b) {
			ordered++
		}
	}

	if comparable == 0 {
		return insufficientDataResult(r.ID(),
			fmt.Sprintf("comparable dates in columns %q and %q", earlier, later), cfg.Weight)
	}

	return ratioResult(r.ID(), cfg, ordered, comparable,
		fmt.Sprintf("rows keep %q on or before %q", earlier, later),
		map[string]any{"earlier": earlier, "later": later})
}
