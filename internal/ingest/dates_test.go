package ingest

import (
	"testing"
	"time"
)

func TestParseDateAbsolute(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"rfc3339", "2024-01-02T03:04:05Z", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), true},
		{"rfc3339 fractional", "2024-01-02T03:04:05.123Z", time.Date(2024, 1, 2, 3, 4, 5, 123000000, time.UTC), true},
		{"rfc3339 offset", "2024-01-02T03:04:05+02:00", time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC), true},
		{"date only", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"long month", "January 2, 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"short month", "Jan 2, 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"day first long", "2 January 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"day first short", "2 Jan 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"leading whitespace", "  2024-01-02  ", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"numeric slashes rejected", "01/02/2024", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateRelative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"minutes", "45 minutes ago", now.Add(-45 * time.Minute), true},
		{"singular minute", "1 minute ago", now.Add(-time.Minute), true},
		{"hours", "10 hours ago", now.Add(-10 * time.Hour), true},
		{"days", "3 days ago", now.Add(-3 * 24 * time.Hour), true},
		{"weeks", "2 weeks ago", now.Add(-2 * 7 * 24 * time.Hour), true},
		{"mixed case", "3 Days Ago", now.Add(-3 * 24 * time.Hour), true},
		{"no space before unit", "3days ago", now.Add(-3 * 24 * time.Hour), true},
		{"unknown unit", "3 months ago", time.Time{}, false},
		{"missing ago", "3 days", time.Time{}, false},
		{"not leading", "posted 3 days ago", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDateAt(tt.input, now)
			if ok != tt.ok {
				t.Fatalf("parseDateAt(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("parseDateAt(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateUTC(t *testing.T) {
	got, ok := ParseDate("2024-01-02T10:00:00-05:00")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if got.Location() != time.UTC {
		t.Errorf("result location = %v, want UTC", got.Location())
	}
}
