package models

// The five fixed quality dimensions. Each is scored on a 0-20 point scale.
const (
	DimensionValidity     = "validity"
	DimensionCompleteness = "completeness"
	DimensionFreshness    = "freshness"
	DimensionConsistency  = "consistency"
	DimensionPlausibility = "plausibility"
)

// Score bounds for a single dimension and for the overall assessment.
const (
	MaxDimensionScore = 20.0
	MaxOverallScore   = 100.0
)

// Dimensions returns the five dimensions in canonical report order.
func Dimensions() []string {
	return []string{
		DimensionValidity,
		DimensionCompleteness,
		DimensionFreshness,
		DimensionConsistency,
		DimensionPlausibility,
	}
}

// IsValidDimension checks if a dimension name is one of the five axes.
func IsValidDimension(dimension string) bool {
	switch dimension {
	case DimensionValidity, DimensionCompleteness, DimensionFreshness,
		DimensionConsistency, DimensionPlausibility:
		return true
	default:
		return false
	}
}
