package mapper

import (
	"encoding/json"
	"strings"
)

// ParseValue converts a raw wire value to its physical value.
// Strings are trimmed. Codes with a known integer encoding are scaled and
// returned as float64; any other value is returned unchanged.
func ParseValue(raw any, code string) any {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}

	f, ok := toFloat(raw)
	if !ok {
		return raw
	}

	if _, ok := sixtyfoldCodes[code]; ok {
		return f * 60
	}
	if _, ok := tenthsCodes[code]; ok {
		return f / 10
	}
	if _, ok := hundredthsCodes[code]; ok {
		return f / 100
	}
	if _, ok := thousandthsCodes[code]; ok {
		return f / 1000
	}
	return raw
}

// BinaryValue returns the on/off state for a binary sensor value.
// Cold and presence classes report the inverse of the vendor flag.
func BinaryValue(class BinarySensorClass, value any) *bool {
	if value == nil {
		return nil
	}
	on := Truthy(value)
	if class == BinaryClassCold || class == BinaryClassPresence {
		on = !on
	}
	return &on
}

// Truthy reports whether a raw wire value counts as set.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}
	if f, ok := toFloat(value); ok {
		return f != 0
	}
	return true
}

// Float returns the numeric form of a parsed value, if it has one.
func Float(value any) (float64, bool) {
	return toFloat(value)
}

// Safe returns the value if non-empty after trimming, otherwise returns the fallback.
func Safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
