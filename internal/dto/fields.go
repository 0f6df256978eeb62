package dto

import "time"

// Field accessors tolerate the value shapes the document store hands back:
// JSON-decoded maps ([]any, float64) as well as native Go values written by
// our own codec.

// Has reports whether the key is present at all, regardless of value.
func (d DTO) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Str returns the string under key. ok is false when the key is absent or the
// value is not a string.
func (d DTO) Str(key string) (string, bool) {
	v, ok := d[key].(string)
	return v, ok
}

// Bool returns the bool under key.
func (d DTO) Bool(key string) (bool, bool) {
	v, ok := d[key].(bool)
	return v, ok
}

// Float returns the number under key, accepting float64 and the integer
// widths the store's decoder may produce.
func (d DTO) Float(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Time returns the timestamp under key. Document-store timestamps arrive as
// time.Time; sub-second precision is preserved.
func (d DTO) Time(key string) (time.Time, bool) {
	v, ok := d[key].(time.Time)
	return v, ok
}

// StrSlice returns the string array under key, accepting both []string and
// the []any a generic decoder produces. Non-string elements are dropped.
func (d DTO) StrSlice(key string) ([]string, bool) {
	switch v := d[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// MapSlice returns the array of nested maps under key (ingredient and step
// lists), accepting []map[string]any and []any element shapes.
func (d DTO) MapSlice(key string) ([]map[string]any, bool) {
	switch v := d[key].(type) {
	case []map[string]any:
		return v, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Int mirrors Float for integral fields like positions.
func (d DTO) Int(key string) (int, bool) {
	f, ok := d.Float(key)
	return int(f), ok
}
