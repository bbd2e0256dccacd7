package datasource

import (
	"strings"
	"time"
)

// inferThreshold is the fraction of non-null values that must parse as a
// candidate type for the column to adopt it.
const inferThreshold = 0.9

// Matches reports whether a single cell value conforms to the given logical
// type. Null values never count against a type.
func Matches(v any, t Type) bool {
	if IsNull(v) {
		return false
	}
	switch t {
	case TypeInteger:
		_, ok := ToInt(v)
		return ok
	case TypeFloat:
		_, ok := ToFloat(v)
		return ok
	case TypeBoolean:
		if s, ok := v.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "false", "yes", "no", "0", "1":
				return true
			default:
				return false
			}
		}
		_, ok := ToBool(v)
		return ok
	case TypeDate, TypeTimestamp:
		_, ok := ToTime(v)
		return ok
	case TypeString, TypeUnknown:
		return true
	default:
		return false
	}
}

// InferType picks the most specific logical type that at least 90% of the
// non-null values conform to. Columns with no non-null values are unknown.
func InferType(values []any) Type {
	var nonNull, ints, floats, bools, dates, timestamps int

	for _, v := range values {
		if IsNull(v) {
			continue
		}
		nonNull++
		if Matches(v, TypeInteger) {
			ints++
		}
		if Matches(v, TypeFloat) {
			floats++
		}
		if Matches(v, TypeBoolean) {
			bools++
		}
		if t, ok := ToTime(v); ok {
			dates++
			if !zeroClock(t) {
				timestamps++
			}
		}
	}

	if nonNull == 0 {
		return TypeUnknown
	}

	qualifies := func(count int) bool {
		return float64(count)/float64(nonNull) >= inferThreshold
	}

	// Most specific first. Booleans before integers so 0/1 columns do not
	// collapse into integers only when the column also holds true/false.
	switch {
	case qualifies(bools) && !qualifies(ints):
		return TypeBoolean
	case qualifies(dates) && !qualifies(ints) && !qualifies(floats):
		if timestamps > 0 {
			return TypeTimestamp
		}
		return TypeDate
	case qualifies(ints):
		return TypeInteger
	case qualifies(floats):
		return TypeFloat
	default:
		return TypeString
	}
}

// inferColumns assigns a type to every column from its sampled values.
func inferColumns(names []string, rows [][]any) []Column {
	columns := make([]Column, len(names))
	for i, name := range names {
		values := make([]any, len(rows))
		for r, row := range rows {
			values[r] = row[i]
		}
		columns[i] = Column{Name: name, Type: InferType(values)}
	}
	return columns
}

// zeroClock reports whether a time value carries no time-of-day component.
func zeroClock(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
