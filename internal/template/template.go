// Package template implements versioned assessment contracts: declared
// column roles with pattern-based matching against physical columns, plus
// per-dimension rule configuration and score minimums.
package template

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/internal/rules"
)

// Common errors returned by template loading and validation.
var (
	ErrInvalidTemplate = errors.New("invalid template")
	ErrUnknownTemplate = errors.New("unknown template")
)

// idPattern enforces the {industry}/{usecase}-v{semver} identifier shape.
var idPattern = regexp.MustCompile(`^([a-z0-9-]+)/([a-z0-9-]+)-v(\d+\.\d+\.\d+)$`)

// Template is a declarative, immutable contract a data source is validated
// against. Templates are identified by {industry}/{usecase}-v{semver} and
// never change once published; a revision is a new version.
type Template struct {
	ID              string                     `yaml:"id" validate:"required"`
	Name            string                     `yaml:"name"`
	Description     string                     `yaml:"description"`
	RequiredColumns []string                   `yaml:"required_columns" validate:"required,min=1"`
	OptionalColumns []string                   `yaml:"optional_columns"`
	ColumnPatterns  map[string][]string        `yaml:"column_patterns" validate:"required"`
	Dimensions      map[string]DimensionConfig `yaml:"dimensions"`
	Requirements    Requirements               `yaml:"requirements"`
}

// DimensionConfig carries a template's configuration for one dimension.
// Rule entries are keyed by rule type (the part after the dimension in the
// rule ID).
type DimensionConfig struct {
	Weight  *float64                `yaml:"weight"`
	Minimum float64                 `yaml:"minimum"`
	Rules   map[string]RuleOverride `yaml:"rules"`
}

// RuleOverride is a partial rule configuration; nil fields keep defaults.
type RuleOverride struct {
	Enabled *bool          `yaml:"enabled"`
	Weight  *float64       `yaml:"weight"`
	Params  map[string]any `yaml:"params"`
}

// Requirements declares the score minimums a compliant source must reach.
// Verdicts against them are advisory; they never alter computed scores.
type Requirements struct {
	OverallMinimum    float64            `yaml:"overall_minimum"`
	DimensionMinimums map[string]float64 `yaml:"dimension_minimums"`
}

var templateValidate = validator.New()

// Validate checks structural and semantic integrity. Malformed templates
// are rejected here, at load time, before any assessment touches them.
func (t *Template) Validate() error {
	if err := templateValidate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if !idPattern.MatchString(t.ID) {
		return fmt.Errorf("%w: id %q does not match {industry}/{usecase}-v{semver}", ErrInvalidTemplate, t.ID)
	}

	for _, role := range append(append([]string{}, t.RequiredColumns...), t.OptionalColumns...) {
		patterns, ok := t.ColumnPatterns[role]
		if !ok || len(patterns) == 0 {
			return fmt.Errorf("%w: role %q has no column patterns", ErrInvalidTemplate, role)
		}
	}

	for role, patterns := range t.ColumnPatterns {
		seen := make(map[string]bool, len(patterns))
		for _, pattern := range patterns {
			if seen[pattern] {
				return fmt.Errorf("%w: role %q declares pattern %q twice", ErrInvalidTemplate, role, pattern)
			}
			seen[pattern] = true
			if _, err := compilePattern(pattern); err != nil {
				return fmt.Errorf("%w: role %q pattern %q: %v", ErrInvalidTemplate, role, pattern, err)
			}
		}
	}

	for name, dim := range t.Dimensions {
		if !models.IsValidDimension(name) {
			return fmt.Errorf("%w: unknown dimension %q", ErrInvalidTemplate, name)
		}
		if dim.Weight != nil && !validWeight(*dim.Weight) {
			return fmt.Errorf("%w: dimension %q weight %v must be finite and non-negative", ErrInvalidTemplate, name, *dim.Weight)
		}
		if dim.Minimum < 0 || dim.Minimum > models.MaxDimensionScore {
			return fmt.Errorf("%w: dimension %q minimum %v outside [0,%v]", ErrInvalidTemplate, name, dim.Minimum, models.MaxDimensionScore)
		}
		for ruleType, rule := range dim.Rules {
			if _, err := rules.DefaultRegistry.Get(name + "." + ruleType); err != nil {
				return fmt.Errorf("%w: dimension %q configures unknown rule type %q", ErrInvalidTemplate, name, ruleType)
			}
			if rule.Weight != nil && !validWeight(*rule.Weight) {
				return fmt.Errorf("%w: rule %s.%s weight %v must be finite and non-negative", ErrInvalidTemplate, name, ruleType, *rule.Weight)
			}
		}
	}

	if t.Requirements.OverallMinimum < 0 || t.Requirements.OverallMinimum > models.MaxOverallScore {
		return fmt.Errorf("%w: overall_minimum %v outside [0,%v]", ErrInvalidTemplate, t.Requirements.OverallMinimum, models.MaxOverallScore)
	}
	for name, minimum := range t.Requirements.DimensionMinimums {
		if !models.IsValidDimension(name) {
			return fmt.Errorf("%w: dimension_minimums names unknown dimension %q", ErrInvalidTemplate, name)
		}
		if minimum < 0 || minimum > models.MaxDimensionScore {
			return fmt.Errorf("%w: minimum for %q outside [0,%v]", ErrInvalidTemplate, name, models.MaxDimensionScore)
		}
	}

	return nil
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

// Industry returns the {industry} component of the template ID.
func (t *Template) Industry() string { return t.idPart(1) }

// UseCase returns the {usecase} component of the template ID.
func (t *Template) UseCase() string { return t.idPart(2) }

// Version returns the {semver} component of the template ID.
func (t *Template) Version() string { return t.idPart(3) }

func (t *Template) idPart(i int) string {
	m := idPattern.FindStringSubmatch(t.ID)
	if m == nil {
		return ""
	}
	return m[i]
}

// DimensionWeights returns the aggregation weights the template declares,
// keyed by dimension. Dimensions without an explicit weight are absent and
// fall back to the engine default.
func (t *Template) DimensionWeights() map[string]float64 {
	weights := make(map[string]float64)
	for name, dim := range t.Dimensions {
		if dim.Weight != nil {
			weights[name] = *dim.Weight
		}
	}
	return weights
}

// DimensionMinimums merges per-dimension minimums declared inline with the
// requirements block; the requirements block wins on conflict.
func (t *Template) DimensionMinimums() map[string]float64 {
	minimums := make(map[string]float64)
	for name, dim := range t.Dimensions {
		if dim.Minimum > 0 {
			minimums[name] = dim.Minimum
		}
	}
	for name, minimum := range t.Requirements.DimensionMinimums {
		minimums[name] = minimum
	}
	return minimums
}
