package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. Numeric-only forms like 01/02/2024 are
// deliberately absent: they parse differently by locale and would silently
// misdate items.
var dateLayouts = []string{
	time.RFC3339Nano, // covers 2024-01-02T03:04:05Z and fractional-second variants
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var relativeDateRe = regexp.MustCompile(`^(\d+)\s*(minute|hour|day|week)s?\s*ago`)

// ParseDate parses heterogeneous publish-date strings into a UTC timestamp.
// It tries absolute layouts first, then relative "<N> <unit> ago" phrases.
// A string matching no known format returns ok=false; undated is an expected
// outcome, not an error.
func ParseDate(s string) (time.Time, bool) {
	return parseDateAt(s, time.Now().UTC())
}

func parseDateAt(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	m := relativeDateRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	var unit time.Duration
	switch m[2] {
	case "minute":
		unit = time.Minute
	case "hour":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	}
	return now.Add(-time.Duration(n) * unit), true
}
