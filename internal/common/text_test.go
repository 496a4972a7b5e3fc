package common

import (
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"surrounded by prose", "Here you go:\n{\"a\": 1}\nHope that helps.", `{"a": 1}`},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"nested braces", `prefix {"a": {"b": 2}} suffix`, `{"a": {"b": 2}}`},
		{"no object", "just text", ""},
		{"empty", "", ""},
		{"close before open", "} {", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSONObject(tc.raw); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("short input changed: %q", got)
	}
	if got := Truncate("exact", 5); got != "exact" {
		t.Errorf("exact-length input changed: %q", got)
	}

	long := strings.Repeat("a", 50)
	got := Truncate(long, 10)
	if !strings.HasSuffix(got, "... (truncated)") {
		t.Errorf("missing truncation marker: %q", got)
	}
	if !strings.HasPrefix(got, strings.Repeat("a", 10)) {
		t.Errorf("truncated prefix wrong: %q", got)
	}
}
