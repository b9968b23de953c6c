package state

import (
	"testing"

	"github.com/five82/rally/internal/readmark"
	"github.com/five82/rally/internal/remote"
)

func TestCurrentMatch_ReResolvesFromMatches(t *testing.T) {
	stale := remote.Match{ID: "m1", Name: "old"}
	snap := signedIn("a")
	snap.User.Match = &stale
	snap.Matches = []remote.Match{{ID: "m1", Name: "fresh"}}

	m, ok := CurrentMatch(snap)
	if !ok || m.Name != "fresh" {
		t.Fatalf("CurrentMatch = %#v %v, want fresh record", m, ok)
	}

	snap.Matches = nil
	if _, ok := CurrentMatch(snap); ok {
		t.Fatalf("CurrentMatch found a match absent from Matches")
	}
	if _, ok := CurrentMatch(Snapshot{}); ok {
		t.Fatalf("CurrentMatch ok for signed-out snapshot")
	}
}

func TestCursorsAndMembership(t *testing.T) {
	snap := signedIn("a")
	snap.Matches = []remote.Match{
		{ID: "m1", Owner: user("a")},
		{ID: "m2", Owner: user("o"), Participants: []remote.Participant{{Participant: user("a"), Count: 3}}},
		{ID: "m3", Owner: user("o")},
	}
	snap.User.Contacts = []remote.Contact{
		{Contact: user("b"), Status: remote.ContactFriend},
		{Contact: user("c"), Status: remote.ContactWaitingRequest},
		{Contact: user("d"), Status: remote.ContactWaitingResponse},
	}
	snap.User.Invitations = []remote.Match{{ID: "m3"}}
	snap.SelectedMatchID = "m2"
	snap.SelectedInboxID = "b"

	if m, ok := SelectedMatch(snap); !ok || m.ID != "m2" {
		t.Fatalf("SelectedMatch = %#v %v", m, ok)
	}
	if c, ok := Inbox(snap); !ok || c.Contact.ID != "b" {
		t.Fatalf("Inbox = %#v %v", c, ok)
	}

	tests := []struct {
		match       int
		participant bool
		joined      int
	}{
		{0, true, 0},
		{1, true, 3},
		{2, false, 0},
	}
	for _, tt := range tests {
		m := snap.Matches[tt.match]
		if got := IsParticipant(snap, m); got != tt.participant {
			t.Errorf("IsParticipant(%s) = %v, want %v", m.ID, got, tt.participant)
		}
		if got := JoinedCount(snap, m); got != tt.joined {
			t.Errorf("JoinedCount(%s) = %d, want %d", m.ID, got, tt.joined)
		}
	}

	if got := PendingRequests(snap); len(got) != 1 || got[0].Contact.ID != "c" {
		t.Fatalf("PendingRequests = %#v, want c", got)
	}
	if got := Friends(snap); len(got) != 1 || got[0].Contact.ID != "b" {
		t.Fatalf("Friends = %#v, want b", got)
	}
	invites := Invitations(snap)
	if len(invites) != 1 {
		t.Fatalf("Invitations = %#v", invites)
	}
	invites[0].ID = "mutated"
	if snap.User.Invitations[0].ID != "m3" {
		t.Fatalf("Invitations returned shared slice")
	}

	snap.SelectedInboxID = "zz"
	if _, ok := Inbox(snap); ok {
		t.Fatalf("Inbox found unknown contact")
	}
}

func TestInboxMessages_FiltersByContact(t *testing.T) {
	snap := signedIn("a")
	snap.PrivateMessages = []remote.Message{
		{ID: "p1", Owner: user("a"), Recipient: &remote.UserRef{ID: "b"}},
		{ID: "p2", Owner: user("c"), Recipient: &remote.UserRef{ID: "a"}},
		{ID: "p3", Owner: user("b"), Recipient: &remote.UserRef{ID: "a"}},
	}
	got := InboxMessages(snap, "b")
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p3" {
		t.Fatalf("InboxMessages(b) = %#v, want p1 p3", got)
	}
	if got := InboxMessages(snap, ""); got != nil {
		t.Fatalf("InboxMessages(\"\") = %#v, want nil", got)
	}
}

func messages(ids ...string) []remote.Message {
	out := make([]remote.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, remote.Message{ID: id})
	}
	return out
}

func TestUnread(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		marker readmark.Marker
		ok     bool
		want   int
	}{
		{"no marker", []string{"x1", "x2", "x3"}, readmark.Marker{}, false, 3},
		{"marker at end", []string{"x1", "x2", "x3"}, readmark.Marker{Topic: "m1", MessageID: "x3"}, true, 0},
		{"marker in middle", []string{"x1", "x2", "x3", "x4"}, readmark.Marker{Topic: "m1", MessageID: "x2"}, true, 2},
		{"evicted marker", []string{"x5", "x6"}, readmark.Marker{Topic: "m1", MessageID: "x1"}, true, 2},
		{"empty marker id", []string{"x1"}, readmark.Marker{Topic: "m1"}, true, 1},
		{"no messages", nil, readmark.Marker{}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unread(messages(tt.ids...), tt.marker, tt.ok); got != tt.want {
				t.Fatalf("Unread = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchUnread_Scenario(t *testing.T) {
	current := remote.Match{ID: "m1"}
	snap := signedIn("a")
	snap.User.Match = &current
	snap.Messages = messages("x1", "x2", "x3")

	if got := MatchUnread(snap); got != 3 {
		t.Fatalf("unread before marker = %d, want 3", got)
	}
	snap.MessagesLastRead = []readmark.Marker{{Topic: "other", MessageID: "x3"}, {Topic: "m1", MessageID: "x3"}}
	if got := MatchUnread(snap); got != 0 {
		t.Fatalf("unread after marker = %d, want 0", got)
	}
	snap.Messages = append(snap.Messages, remote.Message{ID: "x4"})
	if got := MatchUnread(snap); got != 1 {
		t.Fatalf("unread after x4 = %d, want 1", got)
	}
	if got := MatchUnread(signedIn("a")); got != 0 {
		t.Fatalf("unread without match = %d, want 0", got)
	}
}

func TestPrivateUnreadTotal_FriendsOnly(t *testing.T) {
	snap := signedIn("a")
	snap.User.Contacts = []remote.Contact{
		{Contact: user("b"), Status: remote.ContactFriend},
		{Contact: user("c"), Status: remote.ContactFriend},
		{Contact: user("d"), Status: remote.ContactWaitingRequest},
	}
	snap.PrivateMessages = []remote.Message{
		{ID: "p1", Owner: user("b"), Recipient: &remote.UserRef{ID: "a"}},
		{ID: "p2", Owner: user("b"), Recipient: &remote.UserRef{ID: "a"}},
		{ID: "p3", Owner: user("c"), Recipient: &remote.UserRef{ID: "a"}},
		{ID: "p4", Owner: user("d"), Recipient: &remote.UserRef{ID: "a"}},
	}
	snap.PrivateMessagesLastRead = []readmark.Marker{{Topic: "b", MessageID: "p1"}}

	if got := InboxUnread(snap, "b"); got != 1 {
		t.Fatalf("InboxUnread(b) = %d, want 1", got)
	}
	if got := InboxUnread(snap, "d"); got != 1 {
		t.Fatalf("InboxUnread(d) = %d, want 1", got)
	}
	if got := PrivateUnreadTotal(snap); got != 2 {
		t.Fatalf("PrivateUnreadTotal = %d, want 2", got)
	}
}
