package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
)

// contentHeight is the room left under the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// renderPane draws a bordered box of the given outer size.
func (m Model) renderPane(title, body string, width, height int, focused bool) string {
	styles := m.theme.Styles()
	box := styles.Pane
	titleStyle := styles.MutedText
	if focused {
		box = styles.PaneFocus
		titleStyle = styles.AccentText.Bold(true)
	}
	innerW := max(width-4, 1)  // border + padding
	innerH := max(height-2, 1) // border

	lines := strings.Split(body, "\n")
	head := titleStyle.Render(truncate(title, innerW))
	lines = append([]string{head}, lines...)
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	return box.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))
}

// renderMatches shows the nearby list beside the match under the cursor.
func (m Model) renderMatches() string {
	height := m.contentHeight()
	listW := m.width * 55 / 100
	detailW := m.width - listW

	list := m.renderPane(
		fmt.Sprintf("Nearby matches (%d)", len(m.snapshot.Matches)),
		m.matchRows(listW-4),
		listW, height, true)

	var detail string
	if len(m.snapshot.Matches) == 0 {
		detail = m.renderPane("Match", m.theme.Styles().FaintText.Render("Nothing nearby yet"), detailW, height, false)
	} else {
		match := m.snapshot.Matches[m.cursor]
		detail = m.renderPane(truncate(match.Name, detailW-6), m.matchDetail(match), detailW, height, false)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) matchRows(width int) string {
	styles := m.theme.Styles()
	snap := m.snapshot
	if len(snap.Matches) == 0 {
		if !snap.Coordinates.Set {
			return styles.FaintText.Render("No location: set latitude and longitude in the config")
		}
		return styles.FaintText.Render("No matches nearby")
	}

	currentID := snap.CurrentMatchID()
	nameW := max(width-22, 8)
	rows := make([]string, 0, len(snap.Matches))
	for i, match := range snap.Matches {
		marker := "  "
		switch {
		case match.ID == currentID:
			marker = "● "
		case match.ID == snap.SelectedMatchID:
			marker = "› "
		}
		seats := fmt.Sprintf("%d/%d", match.Seats(), match.Count)
		row := marker + padRight(truncate(match.Name, nameW), nameW) + " " +
			padRight(seats, 7) + " " + formatDistance(match.Distance)

		switch {
		case i == m.cursor:
			row = styles.Selected.Width(width).Render(row)
		case match.ID == currentID:
			row = styles.AccentText.Render(row)
		case match.Count > 0 && match.Seats() >= match.Count:
			row = styles.FaintText.Render(row)
		default:
			row = styles.Text.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m Model) matchDetail(match remote.Match) string {
	styles := m.theme.Styles()
	snap := m.snapshot
	var b strings.Builder

	line := func(label, value string) {
		b.WriteString(styles.MutedText.Render(padRight(label, 10)))
		b.WriteString(styles.Text.Render(value))
		b.WriteString("\n")
	}

	var badges []string
	if match.ID == snap.CurrentMatchID() {
		badges = append(badges, styles.StatusStyle("current").Render("JOINED"))
	}
	if match.Owner.ID != "" && match.Owner.ID == snap.UserID() {
		badges = append(badges, styles.StatusStyle("owner").Render("OWNER"))
	}
	if match.Count > 0 && match.Seats() >= match.Count {
		badges = append(badges, styles.StatusStyle("full").Render("FULL"))
	}
	if len(badges) > 0 {
		b.WriteString(strings.Join(badges, " "))
		b.WriteString("\n\n")
	}

	line("Owner", match.Owner.Name)
	line("Where", match.Provider.Name)
	if match.Provider.Address != "" {
		line("", match.Provider.Address)
	}
	line("When", formatSlot(match.Start, match.End))
	line("Seats", fmt.Sprintf("%d of %d taken", match.Seats(), match.Count))
	if seats := state.JoinedCount(snap, match); seats > 0 {
		line("You", fmt.Sprintf("%d seat(s)", seats))
	}
	line("Distance", formatDistance(match.Distance))

	if len(match.Participants) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Participants"))
		b.WriteString("\n")
		for _, p := range match.Participants {
			b.WriteString(styles.Text.Render(fmt.Sprintf("  %s ×%d", p.Participant.Name, p.Count)))
			b.WriteString("\n")
		}
	}

	if len(match.Announcements) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render("Announcements"))
		b.WriteString("\n")
		for _, a := range match.Announcements {
			b.WriteString(styles.InfoText.Render("  " + a.Text))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
