package state

import "github.com/five82/rally/internal/remote"

// CurrentMatch re-resolves the user's match in Matches. The copy embedded in
// the user record is never returned.
func CurrentMatch(s Snapshot) (remote.Match, bool) {
	return findMatch(s.Matches, s.CurrentMatchID())
}

// SelectedMatch returns the match under the browsing cursor.
func SelectedMatch(s Snapshot) (remote.Match, bool) {
	return findMatch(s.Matches, s.SelectedMatchID)
}

// Inbox returns the contact under the inbox cursor.
func Inbox(s Snapshot) (remote.Contact, bool) {
	if s.User == nil || s.SelectedInboxID == "" {
		return remote.Contact{}, false
	}
	for _, c := range s.User.Contacts {
		if c.Contact.ID == s.SelectedInboxID {
			return c, true
		}
	}
	return remote.Contact{}, false
}

// IsParticipant reports whether the signed-in user owns or has joined m.
func IsParticipant(s Snapshot, m remote.Match) bool {
	return m.HasMember(s.UserID())
}

// JoinedCount returns the seats the signed-in user holds in m.
func JoinedCount(s Snapshot, m remote.Match) int {
	if i := m.ParticipantIndex(s.UserID()); i >= 0 {
		return m.Participants[i].Count
	}
	return 0
}

// PendingRequests lists contacts waiting for the user's confirmation.
func PendingRequests(s Snapshot) []remote.Contact {
	return contactsWithStatus(s, remote.ContactWaitingRequest)
}

// Friends lists confirmed contacts.
func Friends(s Snapshot) []remote.Contact {
	return contactsWithStatus(s, remote.ContactFriend)
}

// Invitations lists the matches the user has been invited to.
func Invitations(s Snapshot) []remote.Match {
	if s.User == nil {
		return nil
	}
	return cloneSlice(s.User.Invitations)
}

// InboxMessages returns the private messages exchanged with contactID in
// arrival order.
func InboxMessages(s Snapshot, contactID string) []remote.Message {
	if contactID == "" {
		return nil
	}
	var out []remote.Message
	for _, m := range s.PrivateMessages {
		if m.Involves(contactID) {
			out = append(out, m)
		}
	}
	return out
}

func contactsWithStatus(s Snapshot, status remote.ContactStatus) []remote.Contact {
	if s.User == nil {
		return nil
	}
	var out []remote.Contact
	for _, c := range s.User.Contacts {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

func findMatch(matches []remote.Match, id string) (remote.Match, bool) {
	if id == "" {
		return remote.Match{}, false
	}
	if i := matchIndex(matches, id); i >= 0 {
		return matches[i], true
	}
	return remote.Match{}, false
}
