// Package util holds small shared helpers: loose parameter extraction for
// map-shaped tool arguments and whitespace token estimation for context
// budgeting.
package util

import "strings"

// StringParam returns params[key] as a string, or def when absent or not a string.
func StringParam(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// IntParam returns params[key] as an int, tolerating the float64 shape JSON
// decoding produces. Returns def when absent or not numeric.
func IntParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// MapParam returns params[key] as a map, or nil when absent or mistyped.
func MapParam(params map[string]any, key string) map[string]any {
	if v, ok := params[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// SliceParam returns params[key] as a []any, or nil when absent or mistyped.
func SliceParam(params map[string]any, key string) []any {
	if v, ok := params[key]; ok {
		if s, ok := v.([]any); ok {
			return s
		}
	}
	return nil
}

// WordCount returns the number of whitespace separated fields in s.
// Used as a cheap token estimate for context budgeting.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Truncate returns at most n runes of s. Rune based so Arabic text is never
// split mid character.
func Truncate(s string, n int) string {
	if n < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FirstField returns the first whitespace separated field of s, or "" when
// s is blank.
func FirstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
