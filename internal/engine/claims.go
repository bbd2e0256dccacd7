package engine

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/adri-engine/adri/internal/metadata"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/rules"
)

// claimConfidenceFloor filters out detected facts too uncertain to hold a
// data source against.
const claimConfidenceFloor = 0.7

// claimOverrides translates sidecar facts into a rule override layer, so a
// metadata-present run verifies the declared claims instead of re-deriving
// intrinsic defaults. The layer sits between rule defaults and template
// configuration; templates and user overrides still win. Date-span facts
// stay descriptive: without a declared reference instant there is no age
// claim to verify.
func claimOverrides(artifacts map[string]*metadata.Artifact) map[string]rules.Override {
	overrides := make(map[string]rules.Override)

	if art := artifacts[models.DimensionValidity]; art != nil {
		typed := claimColumns(art, "type.", func(metadata.Fact) bool { return true })
		if len(typed) > 0 {
			overrides["validity.type_consistency"] = rules.Override{
				Params: rules.Params{"columns": typed},
			}
		}
	}

	if art := artifacts[models.DimensionCompleteness]; art != nil {
		full := claimColumns(art, "populated.", func(f metadata.Fact) bool {
			return cast.ToFloat64(f.Value) >= 1.0
		})
		if len(full) > 0 {
			overrides["completeness.required_fields"] = rules.Override{
				Params: rules.Params{"columns": full},
			}
		}
		if floor, ok := populatedFloor(art); ok && floor > 0 {
			overrides["completeness.population_density"] = rules.Override{
				Params: rules.Params{"threshold": floor},
			}
		}
	}

	if art := artifacts[models.DimensionConsistency]; art != nil {
		unique := claimColumns(art, "distinct_ratio.", func(f metadata.Fact) bool {
			return cast.ToFloat64(f.Value) >= 1.0
		})
		if len(unique) > 0 {
			overrides["consistency.uniqueness"] = rules.Override{
				Params: rules.Params{"columns": unique},
			}
		}
	}

	if art := artifacts[models.DimensionPlausibility]; art != nil {
		if column, minVal, maxVal, ok := declaredRange(art); ok {
			overrides["validity.range_validation"] = rules.Override{
				Params: rules.Params{"column": column, "min": minVal, "max": maxVal},
			}
		}
	}

	return overrides
}

// claimColumns returns the column names behind prefixed facts that clear
// the confidence floor and satisfy keep, sorted.
func claimColumns(art *metadata.Artifact, prefix string, keep func(metadata.Fact) bool) []string {
	var columns []string
	for _, fact := range art.Facts {
		if !strings.HasPrefix(fact.Name, prefix) || fact.Confidence < claimConfidenceFloor {
			continue
		}
		if keep(fact) {
			columns = append(columns, strings.TrimPrefix(fact.Name, prefix))
		}
	}
	sort.Strings(columns)
	return columns
}

// populatedFloor returns the lowest declared populated fraction.
func populatedFloor(art *metadata.Artifact) (float64, bool) {
	floor, found := 1.0, false
	for _, fact := range art.Facts {
		if !strings.HasPrefix(fact.Name, "populated.") || fact.Confidence < claimConfidenceFloor {
			continue
		}
		found = true
		if fraction := cast.ToFloat64(fact.Value); fraction < floor {
			floor = fraction
		}
	}
	return floor, found
}

// declaredRange returns the first declared numeric range, by column name.
func declaredRange(art *metadata.Artifact) (column string, minVal, maxVal float64, ok bool) {
	for _, fact := range art.Facts {
		if !strings.HasPrefix(fact.Name, "numeric_range.") || fact.Confidence < claimConfidenceFloor {
			continue
		}
		bounds, isMap := fact.Value.(map[string]any)
		if !isMap {
			continue
		}
		return strings.TrimPrefix(fact.Name, "numeric_range."), cast.ToFloat64(bounds["min"]), cast.ToFloat64(bounds["max"]), true
	}
	return "", 0, 0, false
}
