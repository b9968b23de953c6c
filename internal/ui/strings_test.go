package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  padel  ", 10, "padel"},
		{"Sunday padel", 8, "Sunda..."},
		{"Sunday", 3, "Sun"},
		{"ñandú", 4, "ñ..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	got := truncateMiddle("/home/ana/.local/share/rally/rally.log", 20)
	if len([]rune(got)) != 20 {
		t.Fatalf("truncateMiddle length = %d, want 20 (%q)", len([]rune(got)), got)
	}
	if got[:6] != "/home/" || got[len(got)-9:] != "rally.log" {
		t.Fatalf("truncateMiddle = %q, want both ends kept", got)
	}
	if got := truncateMiddle("short", 20); got != "short" {
		t.Fatalf("truncateMiddle(short) = %q", got)
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{0, "-"},
		{350, "350m"},
		{2400, "2.4km"},
	}
	for _, tt := range tests {
		if got := formatDistance(tt.meters); got != tt.want {
			t.Fatalf("formatDistance(%v) = %q, want %q", tt.meters, got, tt.want)
		}
	}
}

func TestFormatSlot(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"empty", "", "", "unscheduled"},
		{"same day", "2026-10-18T18:00:00Z", "2026-10-18T19:30:00Z", "Sun 18 Oct 18:00-19:30"},
		{"across days", "2026-10-18T23:00:00Z", "2026-10-19T01:00:00Z", "Sun 18 Oct 23:00 - Mon 19 Oct 01:00"},
		{"unparseable", "tomorrow", "", "tomorrow -"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSlot(tt.start, tt.end); got != tt.want {
				t.Fatalf("formatSlot = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAgeLabel(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now, "just now"},
		{now.Add(-5 * time.Second), "5s ago"},
		{now.Add(-3 * time.Minute), "3m ago"},
		{now.Add(-2 * time.Hour), "10:00:00"},
	}
	for _, tt := range tests {
		if got := ageLabel(now, tt.at); got != tt.want {
			t.Fatalf("ageLabel(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}
