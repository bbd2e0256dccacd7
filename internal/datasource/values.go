package datasource

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Date layouts accepted when coercing cell values, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// IsNull reports whether a cell value represents a missing entry. Empty
// strings and common null markers count as missing.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "na", "n/a", "nan":
		return true
	default:
		return false
	}
}

// ToFloat coerces a cell value to a float64. Null markers and
// unparseable values report false.
func ToFloat(v any) (float64, bool) {
	if IsNull(v) {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToInt coerces a cell value to an int64 without truncating fractions.
func ToInt(v any) (int64, bool) {
	if IsNull(v) {
		return 0, false
	}
	switch v.(type) {
	case float32, float64:
		f, _ := ToFloat(v)
		n := int64(f)
		if float64(n) != f {
			return 0, false
		}
		return n, true
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ToBool coerces a cell value to a bool.
func ToBool(v any) (bool, bool) {
	if IsNull(v) {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// ToTime coerces a cell value to a time.Time, trying the known layouts for
// strings and falling back to cast for native time values.
func ToTime(v any) (time.Time, bool) {
	if IsNull(v) {
		return time.Time{}, false
	}
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ToString renders a cell value for comparison and display.
func ToString(v any) string {
	return cast.ToString(v)
}
