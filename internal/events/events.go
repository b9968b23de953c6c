package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/five82/rally/internal/remote"
)

// ChannelName names one of the two inbound event streams.
type ChannelName string

const (
	// Broadcast carries events for every client joined to a shared topic.
	Broadcast ChannelName = "broadcast"
	// Private carries events targeted at one user's personal topic.
	Private ChannelName = "private"
)

// Envelope is the inbound wire frame.
type Envelope struct {
	Channel ChannelName     `json:"channel"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
}

// Event type tags.
const (
	KindMatchCreate        = "match-create"
	KindMatchDelete        = "match-delete"
	KindMatchJoin          = "match-join"
	KindMatchLeave         = "match-leave"
	KindMatchRemove        = "match-remove"
	KindMatchUpdate        = "match-update"
	KindMessageAnnounce    = "message-announce"
	KindMessageUnannounce  = "message-unannounce"
	KindAnnouncement       = "announcement"
	KindMessagePost        = "message-post"
	KindPrivateMessagePost = "private-message-post"
	KindContactRequest     = "contact-request"
	KindContactConfirm     = "contact-confirm"
	KindMatchInvite        = "match-invite"
	KindMatchRejectInvite  = "match-reject-invite"
)

// ErrUnknownEvent is returned by Decode for tags it does not recognise.
var ErrUnknownEvent = errors.New("unknown event type")

// Visitor receives one call per decoded event. Adding an event kind adds a
// method here, so every Visitor stops compiling until it handles the kind.
type Visitor interface {
	MatchCreated(MatchCreated)
	MatchDeleted(MatchDeleted)
	MatchJoined(MatchJoined)
	MatchLeft(MatchLeft)
	MatchUpdated(MatchUpdated)
	AnnouncementToggled(AnnouncementToggled)
	AnnouncementPosted(AnnouncementPosted)
	MessagePosted(MessagePosted)
	PrivateMessagePosted(PrivateMessagePosted)
	ContactRequested(ContactRequested)
	ContactConfirmed(ContactConfirmed)
	MatchInvited(MatchInvited)
	InviteRejected(InviteRejected)
}

// Event is the closed set of inbound events.
type Event interface {
	Kind() string
	Accept(Visitor)
}

// MatchCreated carries a newly created match.
type MatchCreated struct {
	Match remote.Match
}

// MatchDeleted carries the match as it was when deleted.
type MatchDeleted struct {
	Match remote.Match
}

// MatchJoined reports a participant taking Count seats.
type MatchJoined struct {
	Match       remote.Match   `json:"match"`
	Participant remote.UserRef `json:"participant"`
	Count       int            `json:"count"`
}

// MatchLeft reports a participant leaving or being removed.
type MatchLeft struct {
	MatchID     string
	Participant remote.UserRef
	Removed     bool
}

// MatchUpdated carries a partial match record. Fields holds only the keys
// the server sent.
type MatchUpdated struct {
	MatchID string
	Fields  map[string]json.RawMessage
}

// AnnouncementToggled reports a message being promoted to or demoted from
// the match's announcements.
type AnnouncementToggled struct {
	MatchID      string
	Announcement remote.Message
	Announced    bool
}

// AnnouncementPosted carries a new announcement message.
type AnnouncementPosted struct {
	MatchID      string
	Announcement remote.Message
}

// MessagePosted carries a new match chat message.
type MessagePosted struct {
	Message remote.Message
}

// PrivateMessagePosted carries a new contact-scoped message.
type PrivateMessagePosted struct {
	Message remote.Message
}

// ContactRequested reports a new contact request between two users.
type ContactRequested struct {
	Pair remote.ContactPair
}

// ContactConfirmed reports an accepted contact request.
type ContactConfirmed struct {
	Pair remote.ContactPair
}

// MatchInvited carries a match the user has been invited to.
type MatchInvited struct {
	Match remote.Match
}

// InviteRejected names the match whose invitation was rejected.
type InviteRejected struct {
	MatchID string
}

func (MatchCreated) Kind() string { return KindMatchCreate }
func (MatchDeleted) Kind() string { return KindMatchDelete }
func (MatchJoined) Kind() string  { return KindMatchJoin }
func (e MatchLeft) Kind() string {
	if e.Removed {
		return KindMatchRemove
	}
	return KindMatchLeave
}
func (MatchUpdated) Kind() string { return KindMatchUpdate }
func (e AnnouncementToggled) Kind() string {
	if e.Announced {
		return KindMessageAnnounce
	}
	return KindMessageUnannounce
}
func (AnnouncementPosted) Kind() string   { return KindAnnouncement }
func (MessagePosted) Kind() string        { return KindMessagePost }
func (PrivateMessagePosted) Kind() string { return KindPrivateMessagePost }
func (ContactRequested) Kind() string     { return KindContactRequest }
func (ContactConfirmed) Kind() string     { return KindContactConfirm }
func (MatchInvited) Kind() string         { return KindMatchInvite }
func (InviteRejected) Kind() string       { return KindMatchRejectInvite }

func (e MatchCreated) Accept(v Visitor)         { v.MatchCreated(e) }
func (e MatchDeleted) Accept(v Visitor)         { v.MatchDeleted(e) }
func (e MatchJoined) Accept(v Visitor)          { v.MatchJoined(e) }
func (e MatchLeft) Accept(v Visitor)            { v.MatchLeft(e) }
func (e MatchUpdated) Accept(v Visitor)         { v.MatchUpdated(e) }
func (e AnnouncementToggled) Accept(v Visitor)  { v.AnnouncementToggled(e) }
func (e AnnouncementPosted) Accept(v Visitor)   { v.AnnouncementPosted(e) }
func (e MessagePosted) Accept(v Visitor)        { v.MessagePosted(e) }
func (e PrivateMessagePosted) Accept(v Visitor) { v.PrivateMessagePosted(e) }
func (e ContactRequested) Accept(v Visitor)     { v.ContactRequested(e) }
func (e ContactConfirmed) Accept(v Visitor)     { v.ContactConfirmed(e) }
func (e MatchInvited) Accept(v Visitor)         { v.MatchInvited(e) }
func (e InviteRejected) Accept(v Visitor)       { v.InviteRejected(e) }

var (
	broadcastKinds = map[string]bool{
		KindMatchCreate:       true,
		KindMatchDelete:       true,
		KindMatchJoin:         true,
		KindMatchLeave:        true,
		KindMatchRemove:       true,
		KindMatchUpdate:       true,
		KindMessageAnnounce:   true,
		KindMessageUnannounce: true,
		KindAnnouncement:      true,
	}
	privateKinds = map[string]bool{
		KindMessagePost:        true,
		KindPrivateMessagePost: true,
		KindContactRequest:     true,
		KindContactConfirm:     true,
		KindMatchInvite:        true,
		KindMatchRejectInvite:  true,
		KindAnnouncement:       true,
	}
)

// Decode turns an envelope into a typed Event. Unknown tags yield
// ErrUnknownEvent; payloads missing the ids a handler needs yield a decode
// error. Decode never panics on malformed input.
func Decode(env Envelope) (Event, error) {
	var known map[string]bool
	switch env.Channel {
	case Broadcast:
		known = broadcastKinds
	case Private:
		known = privateKinds
	default:
		return nil, fmt.Errorf("%w: channel %q", ErrUnknownEvent, env.Channel)
	}
	if !known[env.Type] {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownEvent, env.Channel, env.Type)
	}

	switch env.Type {
	case KindMatchCreate, KindMatchDelete, KindMatchInvite:
		var m remote.Match
		if err := decodeData(env, &m); err != nil {
			return nil, err
		}
		if m.ID == "" {
			return nil, missing(env, "_id")
		}
		switch env.Type {
		case KindMatchCreate:
			return MatchCreated{Match: m}, nil
		case KindMatchDelete:
			return MatchDeleted{Match: m}, nil
		default:
			return MatchInvited{Match: m}, nil
		}

	case KindMatchJoin:
		var e MatchJoined
		if err := decodeData(env, &e); err != nil {
			return nil, err
		}
		if e.Match.ID == "" || e.Participant.ID == "" {
			return nil, missing(env, "match._id/participant._id")
		}
		return e, nil

	case KindMatchLeave, KindMatchRemove:
		var payload struct {
			Match       remote.Ref     `json:"match"`
			Participant remote.UserRef `json:"participant"`
		}
		if err := decodeData(env, &payload); err != nil {
			return nil, err
		}
		if payload.Match == "" || payload.Participant.ID == "" {
			return nil, missing(env, "match._id/participant._id")
		}
		return MatchLeft{
			MatchID:     string(payload.Match),
			Participant: payload.Participant,
			Removed:     env.Type == KindMatchRemove,
		}, nil

	case KindMatchUpdate:
		var fields map[string]json.RawMessage
		if err := decodeData(env, &fields); err != nil {
			return nil, err
		}
		var id remote.Ref
		if raw, ok := fields["_id"]; ok {
			if err := json.Unmarshal(raw, &id); err != nil {
				return nil, fmt.Errorf("decode %s: %w", env.Type, err)
			}
		}
		if id == "" {
			return nil, missing(env, "_id")
		}
		return MatchUpdated{MatchID: string(id), Fields: fields}, nil

	case KindMessageAnnounce, KindMessageUnannounce, KindAnnouncement:
		var payload struct {
			Match        remote.Ref     `json:"match"`
			Announcement remote.Message `json:"announcement"`
		}
		if err := decodeData(env, &payload); err != nil {
			return nil, err
		}
		if payload.Match == "" || payload.Announcement.ID == "" {
			return nil, missing(env, "match._id/announcement._id")
		}
		if env.Type == KindAnnouncement {
			return AnnouncementPosted{MatchID: string(payload.Match), Announcement: payload.Announcement}, nil
		}
		return AnnouncementToggled{
			MatchID:      string(payload.Match),
			Announcement: payload.Announcement,
			Announced:    env.Type == KindMessageAnnounce,
		}, nil

	case KindMessagePost, KindPrivateMessagePost:
		var m remote.Message
		if err := decodeData(env, &m); err != nil {
			return nil, err
		}
		if m.ID == "" {
			return nil, missing(env, "_id")
		}
		if env.Type == KindMessagePost {
			return MessagePosted{Message: m}, nil
		}
		return PrivateMessagePosted{Message: m}, nil

	case KindContactRequest, KindContactConfirm:
		var pair remote.ContactPair
		if err := decodeData(env, &pair); err != nil {
			return nil, err
		}
		if pair.Requester.ID == "" || pair.Responser.ID == "" {
			return nil, missing(env, "requester._id/responser._id")
		}
		if env.Type == KindContactRequest {
			return ContactRequested{Pair: pair}, nil
		}
		return ContactConfirmed{Pair: pair}, nil

	case KindMatchRejectInvite:
		var id remote.Ref
		if err := decodeData(env, &id); err != nil {
			return nil, err
		}
		if id == "" {
			return nil, missing(env, "match id")
		}
		return InviteRejected{MatchID: string(id)}, nil
	}

	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownEvent, env.Channel, env.Type)
}

func decodeData(env Envelope, dest any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("decode %s: empty payload", env.Type)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return nil
}

func missing(env Envelope, field string) error {
	return fmt.Errorf("decode %s: missing %s", env.Type, field)
}
