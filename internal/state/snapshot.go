package state

import (
	"time"

	"github.com/five82/rally/internal/readmark"
	"github.com/five82/rally/internal/remote"
)

// Snapshot is the whole client state at an instant. Writers never edit a
// Snapshot in place: they copy any slice they change and hand the result to
// the Store, which bumps Version.
type Snapshot struct {
	Ready       bool
	Online      bool
	Coordinates remote.Coordinates
	User        *remote.User

	Matches         []remote.Match
	Providers       []remote.Provider
	Messages        []remote.Message
	PrivateMessages []remote.Message

	MessagesLastRead        []readmark.Marker
	PrivateMessagesLastRead []readmark.Marker

	SelectedMatchID string
	SelectedInboxID string

	Version   uint64
	UpdatedAt time.Time
	LastError error
}

// UserID returns the signed-in user's id or "".
func (s Snapshot) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// CurrentMatchID returns the id of the user's match or "".
func (s Snapshot) CurrentMatchID() string {
	if s.User == nil || s.User.Match == nil {
		return ""
	}
	return s.User.Match.ID
}

func (s Snapshot) clone() Snapshot {
	dup := s
	dup.User = cloneUser(s.User)
	dup.Matches = cloneMatches(s.Matches)
	dup.Providers = cloneProviders(s.Providers)
	dup.Messages = cloneMessages(s.Messages)
	dup.PrivateMessages = cloneMessages(s.PrivateMessages)
	dup.MessagesLastRead = cloneSlice(s.MessagesLastRead)
	dup.PrivateMessagesLastRead = cloneSlice(s.PrivateMessagesLastRead)
	return dup
}

func cloneUser(u *remote.User) *remote.User {
	if u == nil {
		return nil
	}
	dup := *u
	dup.Contacts = cloneSlice(u.Contacts)
	dup.Invitations = cloneMatches(u.Invitations)
	if u.Match != nil {
		m := cloneMatch(*u.Match)
		dup.Match = &m
	}
	return &dup
}

func cloneMatches(matches []remote.Match) []remote.Match {
	if len(matches) == 0 {
		return nil
	}
	dup := make([]remote.Match, len(matches))
	for i, m := range matches {
		dup[i] = cloneMatch(m)
	}
	return dup
}

func cloneMatch(m remote.Match) remote.Match {
	m.Location.Coordinates = cloneSlice(m.Location.Coordinates)
	m.Provider = cloneProvider(m.Provider)
	m.Participants = cloneSlice(m.Participants)
	m.Announcements = cloneMessages(m.Announcements)
	return m
}

func cloneProviders(providers []remote.Provider) []remote.Provider {
	dup := cloneSlice(providers)
	for i := range dup {
		dup[i] = cloneProvider(dup[i])
	}
	return dup
}

func cloneProvider(p remote.Provider) remote.Provider {
	p.Location.Coordinates = cloneSlice(p.Location.Coordinates)
	p.Availabilities = cloneSlice(p.Availabilities)
	return p
}

func cloneMessages(messages []remote.Message) []remote.Message {
	dup := cloneSlice(messages)
	for i, m := range dup {
		if m.Recipient != nil {
			r := *m.Recipient
			dup[i].Recipient = &r
		}
	}
	return dup
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
