package ui

import (
	"testing"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Fatalf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
	if got := GetTheme("").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(\"\").Name = %q, want Nightfox (fallback)", got)
	}
}

func TestThemesCoverEveryStatus(t *testing.T) {
	statuses := []string{
		"online", "offline", "signed-out", "current", "owner", "full",
		"friend", "waiting-req", "waiting-res", "announcement",
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			if th.StatusColors[s] == "" {
				t.Fatalf("theme %s has no color for status %q", name, s)
			}
		}
	}
}

func TestStatusStyle_FallsBackToMuted(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	got := styles.StatusStyle("no-such-status").GetBackground()
	want := styles.MutedText.GetForeground()
	if got != want {
		t.Fatalf("StatusStyle fallback background = %v, want muted %v", got, want)
	}

	// WithBackground must keep the fallback color.
	bgStyles := styles.WithBackground(th.Surface)
	if got := bgStyles.StatusStyle("no-such-status").GetBackground(); got != want {
		t.Fatalf("StatusStyle fallback after WithBackground = %v, want %v", got, want)
	}
}
