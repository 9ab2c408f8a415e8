package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, date-only, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseSpan parses a time span. It accepts Go duration syntax ("720h", "90m")
// plus day and week suffixes ("30d", "2w") and the spelled-out form "30 days".
func ParseSpan(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty span")
	}

	// "30 days", "7 day", "1 week"
	if fields := strings.Fields(s); len(fields) == 2 {
		n, err := strconv.Atoi(fields[0])
		if err == nil {
			switch strings.TrimSuffix(fields[1], "s") {
			case "day":
				return time.Duration(n) * 24 * time.Hour, nil
			case "week":
				return time.Duration(n) * 7 * 24 * time.Hour, nil
			case "hour":
				return time.Duration(n) * time.Hour, nil
			case "minute", "min":
				return time.Duration(n) * time.Minute, nil
			}
		}
		return 0, fmt.Errorf("invalid span %q", s)
	}

	// "30d", "2w"
	if len(s) > 1 {
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil {
			switch s[len(s)-1] {
			case 'd':
				return time.Duration(n) * 24 * time.Hour, nil
			case 'w':
				return time.Duration(n) * 7 * 24 * time.Hour, nil
			}
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid span %q: %w", s, err)
	}
	return d, nil
}

// ParseSpanDefault parses a span or returns default if empty/invalid.
func ParseSpanDefault(s string, def time.Duration) time.Duration {
	if d, err := ParseSpan(s); err == nil {
		return d
	}
	return def
}
