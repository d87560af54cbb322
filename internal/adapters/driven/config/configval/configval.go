// Package configval converts the loosely typed values held by config stores.
// TOML decodes integers as int64 and in-memory stores hold whatever callers
// set, so every typed getter goes through the same rules.
package configval

// Lookup fetches a raw value. Embedding a Lookup gives a store the typed
// getters of driven.ConfigReader on top of its own Get.
type Lookup func(key string) (any, bool)

func (l Lookup) GetString(key string) string {
	v, _ := l(key)
	s, _ := v.(string)
	return s
}

// GetInt accepts any integer type and floats with no fractional part, since
// hand-edited files often contain "5.0".
func (l Lookup) GetInt(key string) int {
	v, _ := l(key)
	n, _ := Int(v)
	return n
}

func (l Lookup) GetFloat(key string) float64 {
	v, _ := l(key)
	f, _ := Float(v)
	return f
}

func (l Lookup) GetBool(key string) bool {
	v, _ := l(key)
	b, _ := v.(bool)
	return b
}

// GetStringSlice keeps the string elements of a []any and drops the rest.
func (l Lookup) GetStringSlice(key string) []string {
	v, ok := l(key)
	if !ok {
		return nil
	}
	return Strings(v)
}

// Int converts v to an int.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int64(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// Float converts v to a float64. Integers are widened.
func Float(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	}
	return 0, false
}

// Strings converts a []string or []any to []string.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
