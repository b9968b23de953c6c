package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/rally/internal/state"
)

// renderHeader renders the status bar: connection, user, unread counters.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	snap := m.snapshot

	parts := []string{bg.Render("rally", styles.Logo)}

	switch {
	case !snap.Ready:
		parts = append(parts, bg.Render("Starting...", styles.WarningText.Bold(true)))
	case snap.Online:
		parts = append(parts, styles.StatusStyle("online").Render("ONLINE"))
	default:
		parts = append(parts, styles.StatusStyle("offline").Render("OFFLINE"))
	}

	if snap.User == nil {
		parts = append(parts, styles.StatusStyle("signed-out").Render("SIGNED OUT"))
	} else {
		name := snap.User.Name
		if name == "" {
			name = snap.User.Email
		}
		parts = append(parts, bg.Render(truncate(name, 24), styles.Text.Bold(true)))
		if match, ok := state.CurrentMatch(snap); ok {
			parts = append(parts,
				bg.Render("in", styles.FaintText)+bg.Space()+
					bg.Render(truncate(match.Name, 24), styles.AccentText))
		}
	}

	parts = append(parts,
		m.counter(styles, bg, "chat", state.MatchUnread(snap)),
		m.counter(styles, bg, "inbox", state.PrivateUnreadTotal(snap)),
	)

	if n := len(state.PendingRequests(snap)); n > 0 {
		parts = append(parts, styles.StatusStyle("waiting-req").Render(fmt.Sprintf("%d REQ", n)))
	}

	parts = append(parts, bg.Render(ageLabel(time.Now(), m.lastUpdated), styles.MutedText))

	if snap.LastError != nil {
		parts = append(parts, bg.Render(truncate(snap.LastError.Error(), 40), styles.DangerText))
	} else if m.notice != "" {
		parts = append(parts, bg.Render(truncate(m.notice, 40), styles.InfoText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) counter(styles Styles, bg BgStyle, label string, n int) string {
	value := styles.FaintText
	if n > 0 {
		value = styles.WarningText.Bold(true)
	}
	return bg.Render(label, styles.MutedText) + bg.Space() + bg.Render(fmt.Sprint(n), value)
}

// renderCommandBar renders the pane tabs and the short key help.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	tabs := make([]string, 0, len(viewOrder))
	for _, v := range viewOrder {
		label := v.String()
		if v == m.currentView {
			tabs = append(tabs, bg.Render("["+label+"]", styles.AccentText.Bold(true)))
			continue
		}
		tabs = append(tabs, bg.Render(label, styles.MutedText))
	}

	keys := m.help.ShortHelpView(m.keys.ShortHelp())
	line := bg.Join(tabs, " ") + bg.Spaces(3) + keys
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(strings.TrimRight(line, " "))
}

// renderHelp renders the full key help as a centred modal.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
