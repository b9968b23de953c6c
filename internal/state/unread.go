package state

import (
	"github.com/five82/rally/internal/readmark"
	"github.com/five82/rally/internal/remote"
)

// Unread counts the messages after the marked one. Without a marker, or when
// the marked message is no longer in the list, every message is unread.
func Unread(messages []remote.Message, marker readmark.Marker, ok bool) int {
	if !ok || marker.MessageID == "" {
		return len(messages)
	}
	i := messageIndex(messages, marker.MessageID)
	if i < 0 {
		return len(messages)
	}
	return len(messages) - i - 1
}

// MatchUnread returns the unread count of the user's current match chat.
func MatchUnread(s Snapshot) int {
	topic := s.CurrentMatchID()
	if topic == "" {
		return 0
	}
	m, ok := findMarker(s.MessagesLastRead, topic)
	return Unread(s.Messages, m, ok)
}

// InboxUnread returns the unread count of the private thread with contactID.
func InboxUnread(s Snapshot, contactID string) int {
	if contactID == "" {
		return 0
	}
	m, ok := findMarker(s.PrivateMessagesLastRead, contactID)
	return Unread(InboxMessages(s, contactID), m, ok)
}

// PrivateUnreadTotal sums InboxUnread over confirmed contacts.
func PrivateUnreadTotal(s Snapshot) int {
	total := 0
	for _, c := range Friends(s) {
		total += InboxUnread(s, c.Contact.ID)
	}
	return total
}

func findMarker(markers []readmark.Marker, topic string) (readmark.Marker, bool) {
	for _, m := range markers {
		if m.Topic == topic {
			return m, true
		}
	}
	return readmark.Marker{}, false
}
