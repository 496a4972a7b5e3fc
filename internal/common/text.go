package common

import "strings"

// ExtractJSONObject returns the outermost {...} substring of raw, tolerating
// surrounding prose and markdown fences the model may emit. Returns the empty
// string when no brace-delimited object is present.
func ExtractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return ""
	}
	return raw[start : end+1]
}

// Truncate caps s at maxChars, appending a marker when content was dropped.
// Used to bound externally-sourced text before it is injected into prompts.
func Truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	return s[:maxChars] + "... (truncated)"
}
