package util //nolint:revive // package name util hosts shared formatting helpers used by CLI output

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Placeholder is shown for values that are absent.
const Placeholder = "—"

// DisplayTimeLayout renders timestamps in tables.
const DisplayTimeLayout = "2006-01-02 15:04"

// FormatDuration formats a time.Duration for display, handling edge cases.
// Returns Placeholder for zero or negative durations, truncates to seconds for readability.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return Placeholder
	case d < time.Second:
		return d.Truncate(time.Millisecond).String()
	default:
		return d.Truncate(time.Second).String()
	}
}

// FormatTimestamp renders an API timestamp in loc. Empty values render as Placeholder;
// values that are not RFC 3339 are shown unchanged.
func FormatTimestamp(s string, loc *time.Location) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DisplayTimeLayout)
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// OrPlaceholder returns s, or Placeholder when s is blank.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
