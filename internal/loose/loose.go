// Package loose reads persisted JSON whose shape cannot be trusted. Every
// accessor is total and reports unusable values instead of failing.
package loose

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Object decodes raw as a JSON object. It reports false for anything else.
func Object(raw []byte) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// Number converts a decoded JSON value to a float: numbers pass through,
// numeric strings are parsed, booleans become 0 or 1. Anything else is NaN.
func Number(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// Truthy reports whether v would count as true in a lenient reader.
func Truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	case nil:
		return false
	default:
		return true
	}
}

// Time parses an RFC 3339 timestamp string. It returns nil otherwise.
func Time(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// Objects returns the object elements of a JSON array, skipping the rest.
func Objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
