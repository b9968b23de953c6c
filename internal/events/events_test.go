package events

import (
	"encoding/json"
	"errors"
	"testing"
)

func envelope(channel ChannelName, kind, data string) Envelope {
	return Envelope{Channel: channel, Type: kind, Data: json.RawMessage(data)}
}

func TestDecode_KnownEvents(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		kind string
	}{
		{"match create", envelope(Broadcast, KindMatchCreate, `{"_id":"m1","owner":{"_id":"u1"}}`), KindMatchCreate},
		{"match delete", envelope(Broadcast, KindMatchDelete, `{"_id":"m1"}`), KindMatchDelete},
		{"match join", envelope(Broadcast, KindMatchJoin, `{"match":{"_id":"m1"},"participant":{"_id":"u2"},"count":2}`), KindMatchJoin},
		{"match leave", envelope(Broadcast, KindMatchLeave, `{"match":"m1","participant":{"_id":"u2"}}`), KindMatchLeave},
		{"match remove", envelope(Broadcast, KindMatchRemove, `{"match":{"_id":"m1"},"participant":{"_id":"u2"}}`), KindMatchRemove},
		{"match update", envelope(Broadcast, KindMatchUpdate, `{"_id":"m1","name":"Friday"}`), KindMatchUpdate},
		{"announce", envelope(Broadcast, KindMessageAnnounce, `{"match":{"_id":"m1"},"announcement":{"_id":"x1"}}`), KindMessageAnnounce},
		{"unannounce", envelope(Broadcast, KindMessageUnannounce, `{"match":"m1","announcement":{"_id":"x1"}}`), KindMessageUnannounce},
		{"announcement broadcast", envelope(Broadcast, KindAnnouncement, `{"match":"m1","announcement":{"_id":"x2"}}`), KindAnnouncement},
		{"announcement private", envelope(Private, KindAnnouncement, `{"match":"m1","announcement":{"_id":"x2"}}`), KindAnnouncement},
		{"message post", envelope(Private, KindMessagePost, `{"_id":"x3","match":"m1","text":"hi"}`), KindMessagePost},
		{"private message", envelope(Private, KindPrivateMessagePost, `{"_id":"p1","owner":{"_id":"u2"},"recipient":{"_id":"u1"}}`), KindPrivateMessagePost},
		{"contact request", envelope(Private, KindContactRequest, `{"requester":{"_id":"u1"},"responser":{"_id":"u2"}}`), KindContactRequest},
		{"contact confirm", envelope(Private, KindContactConfirm, `{"requester":{"_id":"u1"},"responser":{"_id":"u2"}}`), KindContactConfirm},
		{"match invite", envelope(Private, KindMatchInvite, `{"_id":"m2"}`), KindMatchInvite},
		{"reject invite string", envelope(Private, KindMatchRejectInvite, `"m2"`), KindMatchRejectInvite},
		{"reject invite object", envelope(Private, KindMatchRejectInvite, `{"_id":"m2"}`), KindMatchRejectInvite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.env)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if ev.Kind() != tt.kind {
				t.Fatalf("Kind = %q, want %q", ev.Kind(), tt.kind)
			}
		})
	}
}

func TestDecode_Payloads(t *testing.T) {
	ev, err := Decode(envelope(Broadcast, KindMatchJoin, `{"match":{"_id":"m1"},"participant":{"_id":"u2","name":"Bo"},"count":3}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	join, ok := ev.(MatchJoined)
	if !ok || join.Match.ID != "m1" || join.Participant.Name != "Bo" || join.Count != 3 {
		t.Fatalf("MatchJoined = %#v", ev)
	}

	ev, err = Decode(envelope(Broadcast, KindMatchUpdate, `{"_id":{"_id":"m1"},"count":12}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	update := ev.(MatchUpdated)
	if update.MatchID != "m1" || string(update.Fields["count"]) != "12" {
		t.Fatalf("MatchUpdated = %#v", update)
	}
	if _, ok := update.Fields["name"]; ok {
		t.Fatalf("MatchUpdated invented absent field name")
	}

	ev, err = Decode(envelope(Private, KindMatchRejectInvite, `"m9"`))
	if err != nil || ev.(InviteRejected).MatchID != "m9" {
		t.Fatalf("InviteRejected = %#v %v", ev, err)
	}
}

func TestDecode_UnknownEvents(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{"unknown type", envelope(Broadcast, "match-explode", `{}`)},
		{"private event on broadcast", envelope(Broadcast, KindContactRequest, `{}`)},
		{"broadcast event on private", envelope(Private, KindMatchCreate, `{"_id":"m1"}`)},
		{"unknown channel", envelope("system", KindMatchCreate, `{"_id":"m1"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.env)
			if !errors.Is(err, ErrUnknownEvent) {
				t.Fatalf("Decode error = %v, want ErrUnknownEvent", err)
			}
		})
	}
}

func TestDecode_MalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{"empty data", envelope(Broadcast, KindMatchCreate, ``)},
		{"not json", envelope(Broadcast, KindMatchCreate, `{nope`)},
		{"match without id", envelope(Broadcast, KindMatchCreate, `{"name":"x"}`)},
		{"join without participant", envelope(Broadcast, KindMatchJoin, `{"match":{"_id":"m1"}}`)},
		{"leave without match", envelope(Broadcast, KindMatchLeave, `{"participant":{"_id":"u1"}}`)},
		{"update without id", envelope(Broadcast, KindMatchUpdate, `{"name":"x"}`)},
		{"announce without message", envelope(Broadcast, KindMessageAnnounce, `{"match":"m1"}`)},
		{"message without id", envelope(Private, KindMessagePost, `{"text":"hi"}`)},
		{"contact without responser", envelope(Private, KindContactRequest, `{"requester":{"_id":"u1"}}`)},
		{"reject null", envelope(Private, KindMatchRejectInvite, `null`)},
		{"wrong shape", envelope(Private, KindMessagePost, `[1,2]`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.env)
			if err == nil {
				t.Fatalf("Decode = %#v, want error", ev)
			}
			if errors.Is(err, ErrUnknownEvent) {
				t.Fatalf("Decode error = %v, want decode error", err)
			}
		})
	}
}

type recordingVisitor struct {
	Visitor
	calls []string
}

func (r *recordingVisitor) MatchCreated(MatchCreated)     { r.calls = append(r.calls, "created") }
func (r *recordingVisitor) InviteRejected(InviteRejected) { r.calls = append(r.calls, "rejected") }

func TestAccept_DispatchesByKind(t *testing.T) {
	v := &recordingVisitor{}
	MatchCreated{}.Accept(v)
	InviteRejected{MatchID: "m1"}.Accept(v)
	if len(v.calls) != 2 || v.calls[0] != "created" || v.calls[1] != "rejected" {
		t.Fatalf("calls = %v", v.calls)
	}
}
