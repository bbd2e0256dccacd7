package rules

import (
	"math"
	"sort"
)

// minStatSample is the smallest sample the outlier tests operate on;
// smaller columns report insufficient data instead.
const minStatSample = 4

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// quartiles returns Q1 and Q3 using linear interpolation between ranks.
func quartiles(values []float64) (q1, q3 float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

// percentile expects a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// iqrOutliers counts values outside [Q1 - k*IQR, Q3 + k*IQR].
func iqrOutliers(values []float64, multiplier float64) int {
	q1, q3 := quartiles(values)
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	var outliers int
	for _, v := range values {
		if v < lower || v > upper {
			outliers++
		}
	}
	return outliers
}

// zscoreOutliers counts values whose absolute z-score exceeds the threshold.
func zscoreOutliers(values []float64, threshold float64) int {
	sd := stddev(values)
	if sd == 0 {
		return 0
	}
	m := mean(values)

	var outliers int
	for _, v := range values {
		if math.Abs((v-m)/sd) > threshold {
			outliers++
		}
	}
	return outliers
}
