package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDateOnly(t *testing.T) {
	got, ok := ParseTime("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseSpan(t *testing.T) {
	cases := map[string]time.Duration{
		"30d":     30 * 24 * time.Hour,
		"2w":      14 * 24 * time.Hour,
		"720h":    720 * time.Hour,
		"30 days": 30 * 24 * time.Hour,
		"1 week":  7 * 24 * time.Hour,
		"90m":     90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseSpan(in)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: got %v want %v", in, got, want)
		}
	}
}

func TestParseSpanInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "30x"} {
		if _, err := ParseSpan(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestParseSpanDefault(t *testing.T) {
	def := 7 * 24 * time.Hour
	if got := ParseSpanDefault("", def); got != def {
		t.Fatalf("expected default")
	}
}
