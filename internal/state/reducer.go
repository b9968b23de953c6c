package state

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/five82/rally/internal/events"
	"github.com/five82/rally/internal/remote"
)

// Effects are the channel commands a reduction asks the caller to perform.
type Effects struct {
	LeaveTopics []string
}

// Reduce applies one inbound event to snap and returns the next snapshot.
// It never modifies snap. Membership and ownership are checked against snap
// at apply time, so a stale event for a match the user already left is a
// no-op for the user. A payload that cannot be applied returns an error and
// snap unchanged.
func Reduce(snap Snapshot, ev events.Event) (next Snapshot, fx Effects, err error) {
	if ev == nil {
		return snap, Effects{}, fmt.Errorf("reduce: nil event")
	}
	defer func() {
		if r := recover(); r != nil {
			next, fx, err = snap, Effects{}, fmt.Errorf("reduce %s: %v", ev.Kind(), r)
		}
	}()

	r := &reducer{snap: snap}
	ev.Accept(r)
	if r.err != nil {
		return snap, Effects{}, fmt.Errorf("reduce %s: %w", ev.Kind(), r.err)
	}
	return r.snap, r.fx, nil
}

type reducer struct {
	snap Snapshot
	fx   Effects
	err  error
}

var _ events.Visitor = (*reducer)(nil)

func (r *reducer) MatchCreated(e events.MatchCreated) {
	matches := upsertMatch(r.snap.Matches, e.Match)
	slices.SortStableFunc(matches, func(a, b remote.Match) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	r.snap.Matches = matches

	if u := r.snap.User; u != nil && e.Match.Owner.ID == u.ID {
		user := cloneUser(u)
		m := e.Match
		user.Match = &m
		user.Invitations = nil
		r.snap.User = user
	}
}

func (r *reducer) MatchDeleted(e events.MatchDeleted) {
	r.snap.Matches = removeMatch(r.snap.Matches, e.Match.ID)
	r.dropCurrentMatch(e.Match.ID)
}

func (r *reducer) MatchJoined(e events.MatchJoined) {
	joined := e.Match
	r.snap.Matches = mapMatch(r.snap.Matches, e.Match.ID, func(m remote.Match) remote.Match {
		m.Participants = upsertParticipant(m.Participants, remote.Participant{
			Participant: e.Participant,
			Count:       e.Count,
		})
		joined = m
		return m
	})

	if u := r.snap.User; u != nil && e.Participant.ID == u.ID {
		user := cloneUser(u)
		user.Match = &joined
		user.Invitations = nil
		r.snap.User = user
	}
}

func (r *reducer) MatchLeft(e events.MatchLeft) {
	r.snap.Matches = mapMatch(r.snap.Matches, e.MatchID, func(m remote.Match) remote.Match {
		m.Participants = removeParticipant(m.Participants, e.Participant.ID)
		return m
	})
	if e.Participant.ID == r.snap.UserID() {
		r.dropCurrentMatch(e.MatchID)
	}
}

func (r *reducer) MatchUpdated(e events.MatchUpdated) {
	var mergeErr error
	r.snap.Matches = mapMatch(r.snap.Matches, e.MatchID, func(m remote.Match) remote.Match {
		merged, err := mergeMatch(m, e.Fields)
		if err != nil {
			mergeErr = err
			return m
		}
		return merged
	})
	if mergeErr != nil {
		r.err = mergeErr
		return
	}

	if r.snap.CurrentMatchID() == e.MatchID {
		merged, err := mergeMatch(*r.snap.User.Match, e.Fields)
		if err != nil {
			r.err = err
			return
		}
		user := cloneUser(r.snap.User)
		user.Match = &merged
		r.snap.User = user
	}
}

func (r *reducer) AnnouncementToggled(e events.AnnouncementToggled) {
	r.snap.Matches = mapMatch(r.snap.Matches, e.MatchID, func(m remote.Match) remote.Match {
		if e.Announced {
			m.Announcements = upsertMessage(m.Announcements, e.Announcement)
		} else {
			m.Announcements = removeMessage(m.Announcements, e.Announcement.ID)
		}
		return m
	})

	kind := e.Announcement.Type
	if kind == "" {
		kind = remote.MessageTypeMessage
		if e.Announced {
			kind = remote.MessageTypeAnnouncement
		}
	}
	if i := messageIndex(r.snap.Messages, e.Announcement.ID); i >= 0 {
		messages := cloneSlice(r.snap.Messages)
		messages[i].Type = kind
		r.snap.Messages = messages
	}
}

func (r *reducer) AnnouncementPosted(e events.AnnouncementPosted) {
	r.snap.Matches = mapMatch(r.snap.Matches, e.MatchID, func(m remote.Match) remote.Match {
		m.Announcements = upsertMessage(m.Announcements, e.Announcement)
		return m
	})
	if id := r.snap.CurrentMatchID(); id != "" && id == e.MatchID {
		r.snap.Messages = upsertMessage(r.snap.Messages, e.Announcement)
	}
}

func (r *reducer) MessagePosted(e events.MessagePosted) {
	r.snap.Messages = upsertMessage(r.snap.Messages, e.Message)
}

func (r *reducer) PrivateMessagePosted(e events.PrivateMessagePosted) {
	r.snap.PrivateMessages = upsertMessage(r.snap.PrivateMessages, e.Message)
}

func (r *reducer) ContactRequested(e events.ContactRequested) {
	u := r.snap.User
	if u == nil {
		return
	}
	var entry remote.Contact
	switch u.ID {
	case e.Pair.Requester.ID:
		entry = remote.Contact{Contact: e.Pair.Responser, Status: remote.ContactWaitingResponse}
	case e.Pair.Responser.ID:
		entry = remote.Contact{Contact: e.Pair.Requester, Status: remote.ContactWaitingRequest}
	default:
		return
	}
	user := cloneUser(u)
	user.Contacts = upsertContact(user.Contacts, entry)
	r.snap.User = user
}

func (r *reducer) ContactConfirmed(e events.ContactConfirmed) {
	u := r.snap.User
	if u == nil {
		return
	}
	user := cloneUser(u)
	for i, c := range user.Contacts {
		if c.Contact.ID == e.Pair.Requester.ID || c.Contact.ID == e.Pair.Responser.ID {
			user.Contacts[i].Status = remote.ContactFriend
		}
	}
	r.snap.User = user
}

func (r *reducer) MatchInvited(e events.MatchInvited) {
	if r.snap.User == nil {
		return
	}
	user := cloneUser(r.snap.User)
	user.Invitations = upsertMatch(user.Invitations, e.Match)
	r.snap.User = user
}

func (r *reducer) InviteRejected(e events.InviteRejected) {
	if r.snap.User == nil {
		return
	}
	user := cloneUser(r.snap.User)
	user.Invitations = removeMatch(user.Invitations, e.MatchID)
	r.snap.User = user
}

// dropCurrentMatch clears the user's match, the match chat and the topic
// subscription when matchID is the user's current match.
func (r *reducer) dropCurrentMatch(matchID string) {
	if matchID == "" || r.snap.CurrentMatchID() != matchID {
		return
	}
	user := cloneUser(r.snap.User)
	user.Match = nil
	r.snap.User = user
	r.snap.Messages = nil
	r.fx.LeaveTopics = append(r.fx.LeaveTopics, matchID)
}

// mergeMatch overlays the keys present in fields onto m. Keys absent from
// fields keep their current value.
func mergeMatch(m remote.Match, fields map[string]json.RawMessage) (remote.Match, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return m, fmt.Errorf("encode match: %w", err)
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(raw, &base); err != nil {
		return m, fmt.Errorf("decode match: %w", err)
	}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		base[k] = v
	}
	raw, err = json.Marshal(base)
	if err != nil {
		return m, fmt.Errorf("encode merged match: %w", err)
	}
	var merged remote.Match
	if err := json.Unmarshal(raw, &merged); err != nil {
		return m, fmt.Errorf("decode merged match: %w", err)
	}
	merged.ID = m.ID
	return merged, nil
}

func matchIndex(matches []remote.Match, id string) int {
	return slices.IndexFunc(matches, func(m remote.Match) bool { return m.ID == id })
}

func messageIndex(messages []remote.Message, id string) int {
	return slices.IndexFunc(messages, func(m remote.Message) bool { return m.ID == id })
}

// upsertMatch returns a copy of matches with m appended, dropping any prior
// entry with the same id.
func upsertMatch(matches []remote.Match, m remote.Match) []remote.Match {
	out := removeMatch(matches, m.ID)
	return append(out, m)
}

func removeMatch(matches []remote.Match, id string) []remote.Match {
	out := make([]remote.Match, 0, len(matches)+1)
	for _, m := range matches {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// mapMatch returns a copy of matches with fn applied to the entry whose id
// is id. The original slice is returned when no entry matches.
func mapMatch(matches []remote.Match, id string, fn func(remote.Match) remote.Match) []remote.Match {
	i := matchIndex(matches, id)
	if i < 0 {
		return matches
	}
	out := cloneSlice(matches)
	out[i] = fn(out[i])
	return out
}

func upsertParticipant(participants []remote.Participant, p remote.Participant) []remote.Participant {
	out := removeParticipant(participants, p.Participant.ID)
	return append(out, p)
}

func removeParticipant(participants []remote.Participant, userID string) []remote.Participant {
	out := make([]remote.Participant, 0, len(participants)+1)
	for _, p := range participants {
		if p.Participant.ID != userID {
			out = append(out, p)
		}
	}
	return out
}

// MergeHistory folds a fetched history into the messages already held. The
// fetched list keeps server order; messages delivered by events that the
// fetch did not include follow it.
func MergeHistory(fetched, held []remote.Message) []remote.Message {
	out := cloneSlice(fetched)
	for _, m := range held {
		if messageIndex(out, m.ID) < 0 {
			out = upsertMessage(out, m)
		}
	}
	return out
}

func upsertMessage(messages []remote.Message, m remote.Message) []remote.Message {
	if i := messageIndex(messages, m.ID); i >= 0 {
		out := cloneSlice(messages)
		out[i] = m
		return out
	}
	out := make([]remote.Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, m)
}

func removeMessage(messages []remote.Message, id string) []remote.Message {
	out := make([]remote.Message, 0, len(messages))
	for _, m := range messages {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

func upsertContact(contacts []remote.Contact, c remote.Contact) []remote.Contact {
	out := make([]remote.Contact, 0, len(contacts)+1)
	for _, existing := range contacts {
		if existing.Contact.ID != c.Contact.ID {
			out = append(out, existing)
		}
	}
	return append(out, c)
}
