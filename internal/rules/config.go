package rules

import (
	"time"

	"github.com/spf13/cast"
)

// Params holds rule-specific parameters. Values arrive from yaml or Go
// literals, so accessors coerce loosely and fall back to defaults.
type Params map[string]any

// Config is one rule's merged configuration. Weight is the number of
// points the rule contributes toward its dimension's 20-point budget;
// weights across a dimension need not sum to 20 (aggregation normalizes).
type Config struct {
	Params  Params
	Weight  float64
	Enabled bool
}

// Override is a partial configuration layer. Nil fields leave the lower
// layer untouched; params merge key-wise.
type Override struct {
	Enabled *bool
	Weight  *float64
	Params  Params
}

// Float returns a float param or the default.
func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok && v != nil {
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	}
	return def
}

// Int returns an int param or the default.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok && v != nil {
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	}
	return def
}

// String returns a string param or the default.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok && v != nil {
		if s, err := cast.ToStringE(v); err == nil && s != "" {
			return s
		}
	}
	return def
}

// Bool returns a bool param or the default.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key]; ok && v != nil {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return def
}

// Strings returns a string-slice param, or nil when absent.
func (p Params) Strings(key string) []string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return s
}

// Time returns a time param parsed from RFC3339 or a native time value.
func (p Params) Time(key string) (time.Time, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return time.Time{}, false
	}
	if t, isTime := v.(time.Time); isTime {
		return t, true
	}
	if s, err := cast.ToStringE(v); err == nil {
		if t, perr := time.Parse(time.RFC3339, s); perr == nil {
			return t, true
		}
		if t, perr := time.Parse("2006-01-02", s); perr == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Has reports whether a param is set.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Clone returns a shallow copy so layers stay immutable.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Apply layers an override on top of a config, returning a new value.
func (c Config) Apply(o Override) Config {
	merged := c
	merged.Params = c.Params.Clone()
	if o.Enabled != nil {
		merged.Enabled = *o.Enabled
	}
	if o.Weight != nil {
		merged.Weight = *o.Weight
	}
	if len(o.Params) > 0 {
		if merged.Params == nil {
			merged.Params = make(Params, len(o.Params))
		}
		for k, v := range o.Params {
			merged.Params[k] = v
		}
	}
	return merged
}

// ApplyOverrides merges override layers onto default configs with explicit
// precedence: earlier layers lose to later ones (defaults < metadata
// claims < template < user). Overrides for unregistered rule IDs are
// ignored.
func ApplyOverrides(defaults map[string]Config, layers ...map[string]Override) map[string]Config {
	merged := make(map[string]Config, len(defaults))
	for id, cfg := range defaults {
		cfg.Params = cfg.Params.Clone()
		merged[id] = cfg
	}
	for _, layer := range layers {
		for id, override := range layer {
			cfg, ok := merged[id]
			if !ok {
				continue
			}
			merged[id] = cfg.Apply(override)
		}
	}
	return merged
}
