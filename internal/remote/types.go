package remote

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Ref is a record id that the backend sends either as a bare string or as a
// populated object carrying an _id field.
type Ref string

// UnmarshalJSON accepts "id", {"_id": "id"} and null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ""
		return nil
	}
	if trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*r = Ref(id)
		return nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	*r = Ref(obj.ID)
	return nil
}

// UserRef is the summary of a user embedded in other records.
type UserRef struct {
	ID       string `json:"_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	IDString string `json:"idString,omitempty"`
}

// ContactStatus is the state of a contact relationship.
type ContactStatus string

const (
	// ContactWaitingRequest means the other user asked and we have not confirmed.
	ContactWaitingRequest ContactStatus = "waiting-req"
	// ContactWaitingResponse means we asked and the other user has not confirmed.
	ContactWaitingResponse ContactStatus = "waiting-res"
	ContactFriend          ContactStatus = "friend"
)

// Contact is one entry of a user's social graph.
type Contact struct {
	Contact UserRef       `json:"contact"`
	Status  ContactStatus `json:"status"`
}

// User mirrors the payload returned by /api/v1/session.
type User struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IDString    string    `json:"idString"`
	Contacts    []Contact `json:"contacts"`
	Invitations []Match   `json:"invitations"`
	Match       *Match    `json:"match"`
}

// Ref returns the user's summary form.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, IDString: u.IDString}
}

// Participant is a user holding count seats in a match.
type Participant struct {
	Participant UserRef `json:"participant"`
	Count       int     `json:"count"`
}

// Location is a GeoJSON point; Coordinates are [lng, lat].
type Location struct {
	Type        string    `json:"type,omitempty"`
	Coordinates []float64 `json:"coordinates"`
}

// Availability is an open window of a provider on one weekday.
type Availability struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Provider is a venue that hosts matches.
type Provider struct {
	ID             string         `json:"_id"`
	Name           string         `json:"name"`
	Address        string         `json:"address"`
	Location       Location       `json:"location"`
	Availabilities []Availability `json:"availabilities"`
}

// Match mirrors a match record as returned by /api/v1/match/list and echoed
// in match events.
type Match struct {
	ID            string        `json:"_id"`
	Name          string        `json:"name"`
	Owner         UserRef       `json:"owner"`
	Provider      Provider      `json:"provider"`
	Location      Location      `json:"location"`
	Participants  []Participant `json:"participants"`
	Count         int           `json:"count"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	Announcements []Message     `json:"announcements"`
	Distance      float64       `json:"distance"`
}

// HasMember reports whether userID owns or participates in the match.
func (m Match) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	if m.Owner.ID == userID {
		return true
	}
	return m.ParticipantIndex(userID) >= 0
}

// ParticipantIndex returns the index of userID in Participants or -1.
func (m Match) ParticipantIndex(userID string) int {
	for i, p := range m.Participants {
		if p.Participant.ID == userID {
			return i
		}
	}
	return -1
}

// Seats returns the number of seats taken by participants.
func (m Match) Seats() int {
	total := 0
	for _, p := range m.Participants {
		total += p.Count
	}
	return total
}

// ParsedStart returns the parsed Start timestamp.
func (m Match) ParsedStart() time.Time {
	return parseTime(m.Start)
}

// ParsedEnd returns the parsed End timestamp.
func (m Match) ParsedEnd() time.Time {
	return parseTime(m.End)
}

// MessageType distinguishes plain chat messages from announcements.
type MessageType string

const (
	MessageTypeMessage      MessageType = "message"
	MessageTypeAnnouncement MessageType = "announcement"
)

// Message is a match-scoped or contact-scoped chat message. Match is set for
// match chat, Recipient for private messages.
type Message struct {
	ID        string      `json:"_id"`
	Owner     UserRef     `json:"owner"`
	Recipient *UserRef    `json:"recipient,omitempty"`
	Match     Ref         `json:"match,omitempty"`
	Text      string      `json:"text"`
	Type      MessageType `json:"type"`
	CreatedAt string      `json:"createdAt"`
}

// Involves reports whether userID sent or received the message.
func (m Message) Involves(userID string) bool {
	if m.Owner.ID == userID {
		return true
	}
	return m.Recipient != nil && m.Recipient.ID == userID
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (m Message) ParsedCreatedAt() time.Time {
	return parseTime(m.CreatedAt)
}

// Coordinates is a lat/lng pair. The zero value means no fix.
type Coordinates struct {
	Lat float64
	Lng float64
	Set bool
}

// NewCoordinates returns a valid lat/lng pair.
func NewCoordinates(lat, lng float64) Coordinates {
	return Coordinates{Lat: lat, Lng: lng, Set: true}
}

// LngLat returns the pair in the order the backend expects.
func (c Coordinates) LngLat() []float64 {
	if !c.Set {
		return nil
	}
	return []float64{c.Lng, c.Lat}
}

// Query formats the pair for the coords query parameter.
func (c Coordinates) Query() string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// Credentials are sent to sign-in and sign-up.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// Auth is the sign-in/sign-up response.
type Auth struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MatchDraft describes a match to create.
type MatchDraft struct {
	Name        string `json:"name"`
	ProviderRef string `json:"providerRef"`
	Count       int    `json:"count"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Self        int    `json:"self"`
}

// JoinRequest asks for count seats in a match.
type JoinRequest struct {
	MatchRef string `json:"matchRef"`
	Count    int    `json:"count"`
}

// Slot is a start/end schedule window.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ProviderChange moves a match to another provider and schedule.
type ProviderChange struct {
	ProviderRef string `json:"providerRef"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// ParticipantChange updates the seat count of a participant.
type ParticipantChange struct {
	ParticipantRef string `json:"participantRef"`
	Count          int    `json:"count"`
}

// MessageDraft is a message to post. RecipientRef is used for private messages.
type MessageDraft struct {
	Text         string `json:"text"`
	RecipientRef string `json:"recipientRef,omitempty"`
}

// ContactPair identifies both sides of a contact request.
type ContactPair struct {
	Requester UserRef `json:"requester"`
	Responser UserRef `json:"responser"`
}

// Other returns the side of the pair that is not userID.
func (p ContactPair) Other(userID string) (UserRef, bool) {
	switch userID {
	case p.Requester.ID:
		return p.Responser, true
	case p.Responser.ID:
		return p.Requester, true
	}
	return UserRef{}, false
}

// Announcement pairs a match with one of its announcement messages.
type Announcement struct {
	Match        Match   `json:"match"`
	Announcement Message `json:"announcement"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
