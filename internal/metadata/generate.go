package metadata

import (
	"fmt"
	"sort"
	"time"

	"github.com/adri-engine/adri/internal/datasource"
	"github.com/adri-engine/adri/internal/models"
)

// Generate builds the advisory artifact for one dimension from a data
// source sample. Facts are sorted by name so repeated runs over the same
// snapshot produce identical artifacts.
func Generate(ds *datasource.DataSource, dimension string) *Artifact {
	artifact := &Artifact{
		Dimension: dimension,
		Comment:   advisoryComment,
		Explicit:  false,
	}

	switch dimension {
	case models.DimensionValidity:
		artifact.Facts = validityFacts(ds)
	case models.DimensionCompleteness:
		artifact.Facts = completenessFacts(ds)
	case models.DimensionFreshness:
		artifact.Facts = freshnessFacts(ds)
	case models.DimensionConsistency:
		artifact.Facts = consistencyFacts(ds)
	case models.DimensionPlausibility:
		artifact.Facts = plausibilityFacts(ds)
	}

	sort.Slice(artifact.Facts, func(i, j int) bool {
		return artifact.Facts[i].Name < artifact.Facts[j].Name
	})
	return artifact
}

// GenerateAll builds one artifact per dimension in canonical order.
func GenerateAll(ds *datasource.DataSource) []*Artifact {
	artifacts := make([]*Artifact, 0, len(models.Dimensions()))
	for _, dimension := range models.Dimensions() {
		artifacts = append(artifacts, Generate(ds, dimension))
	}
	return artifacts
}

// validityFacts records the inferred logical type per column. Confidence
// reflects how much the inference had to work with.
func validityFacts(ds *datasource.DataSource) []Fact {
	facts := make([]Fact, 0, len(ds.Columns()))
	for _, col := range ds.Columns() {
		confidence := 0.9
		if col.Type == datasource.TypeUnknown {
			confidence = 0.3
		}
		facts = append(facts, Fact{
			Name:       "type." + col.Name,
			Value:      string(col.Type),
			Confidence: confidence,
		})
	}
	return facts
}

// completenessFacts records the populated fraction per column, measured
// directly over the sample.
func completenessFacts(ds *datasource.DataSource) []Fact {
	var facts []Fact
	for _, name := range ds.ColumnNames() {
		values, _ := ds.Values(name)
		populated := 0
		for _, v := range values {
			if !datasource.IsNull(v) {
				populated++
			}
		}
		fraction := 0.0
		if len(values) > 0 {
			fraction = float64(populated) / float64(len(values))
		}
		facts = append(facts, Fact{
			Name:       "populated." + name,
			Value:      fraction,
			Confidence: 1.0,
		})
	}
	return facts
}

// freshnessFacts records the observed date span per date-typed column.
func freshnessFacts(ds *datasource.DataSource) []Fact {
	var facts []Fact
	for _, col := range ds.Columns() {
		if col.Type != datasource.TypeDate && col.Type != datasource.TypeTimestamp {
			continue
		}
		values, _ := ds.Values(col.Name)
		var oldest, newest time.Time
		for _, v := range values {
			t, ok := datasource.ToTime(v)
			if !ok {
				continue
			}
			if oldest.IsZero() || t.Before(oldest) {
				oldest = t
			}
			if newest.IsZero() || t.After(newest) {
				newest = t
			}
		}
		if newest.IsZero() {
			continue
		}
		facts = append(facts, Fact{
			Name: "date_span." + col.Name,
			Value: map[string]any{
				"oldest": oldest.UTC().Format(time.RFC3339),
				"newest": newest.UTC().Format(time.RFC3339),
			},
			Confidence: 0.8,
		})
	}
	return facts
}

// consistencyFacts records candidate key columns by distinct-value ratio.
// A ratio of 1.0 over the sample is a strong uniqueness signal; anything
// lower is reported with proportionally lower confidence.
func consistencyFacts(ds *datasource.DataSource) []Fact {
	var facts []Fact
	for _, name := range ds.ColumnNames() {
		values, _ := ds.Values(name)
		seen := make(map[string]bool)
		nonNull := 0
		for _, v := range values {
			if datasource.IsNull(v) {
				continue
			}
			nonNull++
			seen[datasource.ToString(v)] = true
		}
		if nonNull == 0 {
			continue
		}
		ratio := float64(len(seen)) / float64(nonNull)
		if ratio < 0.5 {
			continue
		}
		facts = append(facts, Fact{
			Name:       "distinct_ratio." + name,
			Value:      ratio,
			Confidence: ratio * 0.9,
		})
	}
	return facts
}

// plausibilityFacts records the observed numeric range per numeric column.
func plausibilityFacts(ds *datasource.DataSource) []Fact {
	var facts []Fact
	for _, col := range ds.Columns() {
		if col.Type != datasource.TypeInteger && col.Type != datasource.TypeFloat {
			continue
		}
		values, _ := ds.Values(col.Name)
		var numbers []float64
		for _, v := range values {
			if f, ok := datasource.ToFloat(v); ok {
				numbers = append(numbers, f)
			}
		}
		if len(numbers) == 0 {
			continue
		}

		minVal, maxVal, sum := numbers[0], numbers[0], 0.0
		for _, n := range numbers {
			if n < minVal {
				minVal = n
			}
			if n > maxVal {
				maxVal = n
			}
			sum += n
		}

		confidence := 0.8
		if len(numbers) < 4 {
			confidence = 0.4
		}
		facts = append(facts, Fact{
			Name: "numeric_range." + col.Name,
			Value: map[string]any{
				"min":  minVal,
				"max":  maxVal,
				"mean": sum / float64(len(numbers)),
			},
			Confidence: confidence,
		})
	}
	return facts
}

// Save writes the artifact sidecar under dir, creating it if needed, and
// returns the path written.
func Save(dir, source string, artifact *Artifact) (string, error) {
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	path := SidecarPath(dir, source, artifact.Dimension)
	data, err := marshalSidecar(artifact)
	if err != nil {
		return "", fmt.Errorf("encoding sidecar for %s: %w", artifact.Dimension, err)
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
