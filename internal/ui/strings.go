package ui

import (
	"fmt"
	"strings"
	"time"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle keeps both ends of a string, which suits file paths.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1 // room for the ellipsis rune
	prefix := keep / 3
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// formatDistance renders a distance in meters as m or km.
func formatDistance(meters float64) string {
	switch {
	case meters <= 0:
		return "-"
	case meters < 1000:
		return fmt.Sprintf("%.0fm", meters)
	default:
		return fmt.Sprintf("%.1fkm", meters/1000)
	}
}

// formatSlot renders a start/end pair. Unparseable values are shown as-is.
func formatSlot(start, end string) string {
	s, errS := time.Parse(time.RFC3339, start)
	e, errE := time.Parse(time.RFC3339, end)
	switch {
	case start == "" && end == "":
		return "unscheduled"
	case errS != nil || errE != nil:
		return strings.TrimSpace(start + " - " + end)
	case s.YearDay() == e.YearDay() && s.Year() == e.Year():
		return s.Format("Mon 02 Jan 15:04") + "-" + e.Format("15:04")
	default:
		return s.Format("Mon 02 Jan 15:04") + " - " + e.Format("Mon 02 Jan 15:04")
	}
}

// ageLabel renders how long ago t was, for the header.
func ageLabel(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return t.Format("15:04:05")
	}
}
