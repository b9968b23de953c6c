package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
)

// renderChat shows the current match chat, newest at the bottom.
func (m Model) renderChat() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	height := m.contentHeight()

	match, ok := state.CurrentMatch(snap)
	if !ok {
		return m.renderPane("Chat", styles.FaintText.Render("Join a match to see its chat"), m.width, height, true)
	}

	title := fmt.Sprintf("%s · %d unread", match.Name, state.MatchUnread(snap))
	rows := m.messageRows(snap.Messages, m.width-6)
	// Keep the tail that fits under the title.
	if room := height - 3; room > 0 && len(rows) > room {
		rows = rows[len(rows)-room:]
	}
	if len(rows) == 0 {
		rows = []string{styles.FaintText.Render("No messages yet")}
	}
	return m.renderPane(title, strings.Join(rows, "\n"), m.width, height, true)
}

func (m Model) messageRows(messages []remote.Message, width int) []string {
	styles := m.theme.Styles()
	me := m.snapshot.UserID()
	rows := make([]string, 0, len(messages))
	for _, msg := range messages {
		who := msg.Owner.Name
		nameStyle := styles.AccentText
		if msg.Owner.ID == me {
			who = "you"
			nameStyle = styles.SuccessText
		}
		prefix := nameStyle.Render(truncate(who, 16)) + styles.FaintText.Render(": ")
		text := truncate(msg.Text, max(width-len([]rune(who))-2, 8))
		if msg.Type == remote.MessageTypeAnnouncement {
			rows = append(rows, prefix+styles.StatusStyle("announcement").Render(text))
			continue
		}
		rows = append(rows, prefix+styles.Text.Render(text))
	}
	return rows
}

// renderInbox shows contacts with their unread counts, pending requests and
// match invitations.
func (m Model) renderInbox() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	height := m.contentHeight()

	if snap.User == nil {
		return m.renderPane("Inbox", styles.FaintText.Render("Sign in to see contacts"), m.width, height, true)
	}

	leftW := m.width / 2
	rightW := m.width - leftW

	var contacts strings.Builder
	friends := state.Friends(snap)
	for _, c := range friends {
		unread := state.InboxUnread(snap, c.Contact.ID)
		marker := "  "
		if c.Contact.ID == snap.SelectedInboxID {
			marker = "› "
		}
		row := marker + padRight(truncate(c.Contact.Name, leftW-16), leftW-14)
		if unread > 0 {
			contacts.WriteString(styles.Text.Bold(true).Render(row))
			contacts.WriteString(styles.WarningText.Bold(true).Render(fmt.Sprintf(" %d", unread)))
		} else {
			contacts.WriteString(styles.Text.Render(row))
		}
		contacts.WriteString("\n")
	}
	for _, c := range snap.User.Contacts {
		if c.Status == remote.ContactFriend {
			continue
		}
		contacts.WriteString("  " + styles.StatusStyle(string(c.Status)).Render(statusLabel(c.Status)) +
			" " + styles.MutedText.Render(truncate(c.Contact.Name, leftW-20)))
		contacts.WriteString("\n")
	}
	if contacts.Len() == 0 {
		contacts.WriteString(styles.FaintText.Render("No contacts"))
	}

	var invites strings.Builder
	for _, inv := range state.Invitations(snap) {
		invites.WriteString(styles.Text.Render(truncate(inv.Name, rightW-8)))
		invites.WriteString("\n")
		invites.WriteString(styles.MutedText.Render("  " + formatSlot(inv.Start, inv.End)))
		invites.WriteString("\n")
	}
	if invites.Len() == 0 {
		invites.WriteString(styles.FaintText.Render("No invitations"))
	}

	title := fmt.Sprintf("Contacts · %d unread", state.PrivateUnreadTotal(snap))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(title, strings.TrimRight(contacts.String(), "\n"), leftW, height, true),
		m.renderPane("Invitations", strings.TrimRight(invites.String(), "\n"), rightW, height, false),
	)
}

func statusLabel(s remote.ContactStatus) string {
	switch s {
	case remote.ContactWaitingRequest:
		return "WANTS TO CONNECT"
	case remote.ContactWaitingResponse:
		return "REQUESTED"
	default:
		return strings.ToUpper(string(s))
	}
}
