package schedule

import (
	"testing"
	"time"
)

func TestParseInterval(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Duration{
		"@hourly":        time.Hour,
		"@daily":         24 * time.Hour,
		"@WEEKLY":        7 * 24 * time.Hour,
		"*/15 * * * *":   15 * time.Minute,
		"*/5 * * * *":    5 * time.Minute,
		"30":             30 * time.Minute,
		"  */10 * * * *": 10 * time.Minute,
	}
	for expr, want := range cases {
		got, err := ParseInterval(expr)
		if err != nil {
			t.Fatalf("ParseInterval(%q): %v", expr, err)
		}
		if got != want {
			t.Fatalf("ParseInterval(%q) = %v, want %v", expr, got, want)
		}
	}
}

func TestParseInterval_Invalid(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "abc", "*/0 * * * *", "5 4 * * *", "*/x * * * *", "-3"} {
		if _, err := ParseInterval(expr); err == nil {
			t.Fatalf("expected error for %q", expr)
		}
	}
}

func TestIntervalOrDefault(t *testing.T) {
	t.Parallel()

	if got := IntervalOrDefault("bogus"); got != DefaultInterval {
		t.Fatalf("expected default interval, got %v", got)
	}
	if got := IntervalOrDefault("*/20 * * * *"); got != 20*time.Minute {
		t.Fatalf("expected 20m, got %v", got)
	}
}
