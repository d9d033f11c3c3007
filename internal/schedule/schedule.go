package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultInterval applies when a schedule expression cannot be parsed.
const DefaultInterval = time.Hour

// ParseInterval converts a monitoring schedule expression into a scan
// interval. Accepted forms: "@hourly", "@daily", "@weekly", a minute-step
// cron line ("*/15 * * * *"), or a plain number of minutes ("15").
func ParseInterval(expr string) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(expr))
	if trimmed == "" {
		return 0, fmt.Errorf("schedule expression is empty")
	}

	switch trimmed {
	case "@hourly":
		return time.Hour, nil
	case "@daily":
		return 24 * time.Hour, nil
	case "@weekly":
		return 7 * 24 * time.Hour, nil
	}

	if fields := strings.Fields(trimmed); len(fields) == 5 {
		if !strings.HasPrefix(fields[0], "*/") {
			return 0, fmt.Errorf("unsupported cron expression %q: only minute steps are accepted", expr)
		}
		for _, field := range fields[1:] {
			if field != "*" {
				return 0, fmt.Errorf("unsupported cron expression %q: only minute steps are accepted", expr)
			}
		}
		return minutesInterval(strings.TrimPrefix(fields[0], "*/"), expr)
	}

	return minutesInterval(trimmed, expr)
}

// IntervalOrDefault parses expr, falling back to DefaultInterval on error.
func IntervalOrDefault(expr string) time.Duration {
	interval, err := ParseInterval(expr)
	if err != nil {
		return DefaultInterval
	}
	return interval
}

func minutesInterval(raw, expr string) (time.Duration, error) {
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 1 {
		return 0, fmt.Errorf("invalid schedule expression %q", expr)
	}
	return time.Duration(minutes) * time.Minute, nil
}
