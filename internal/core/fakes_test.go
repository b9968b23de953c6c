package core

import (
	"context"
	"sync"

	"github.com/five82/rally/internal/events"
	"github.com/five82/rally/internal/remote"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	user            *remote.User
	userErr         error
	auth            remote.Auth
	authErr         error
	lastCreds       remote.Credentials
	matches         []remote.Match
	matchesErr      error
	providers       []remote.Provider
	messages        []remote.Message
	privateMessages []remote.Message
	found           *remote.UserRef
	commandErr      error

	// run while a history fetch is in flight
	duringMessages        func()
	duringPrivateMessages func()
}

var _ remote.API = (*fakeAPI)(nil)

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) FetchUser(context.Context) (*remote.User, error) {
	f.record("FetchUser")
	return f.user, f.userErr
}

func (f *fakeAPI) SignIn(_ context.Context, creds remote.Credentials) (remote.Auth, error) {
	f.record("SignIn")
	f.mu.Lock()
	f.lastCreds = creds
	f.mu.Unlock()
	return f.auth, f.authErr
}

func (f *fakeAPI) SignUp(_ context.Context, creds remote.Credentials) (remote.Auth, error) {
	f.record("SignUp")
	f.mu.Lock()
	f.lastCreds = creds
	f.mu.Unlock()
	return f.auth, f.authErr
}

func (f *fakeAPI) SetCoordinates(context.Context, remote.Coordinates) error {
	f.record("SetCoordinates")
	return nil
}

func (f *fakeAPI) SetName(context.Context, string) error {
	f.record("SetName")
	return f.commandErr
}

func (f *fakeAPI) FetchMatches(context.Context, remote.Coordinates) ([]remote.Match, error) {
	f.record("FetchMatches")
	return f.matches, f.matchesErr
}

func (f *fakeAPI) FetchProviders(context.Context) ([]remote.Provider, error) {
	f.record("FetchProviders")
	return f.providers, nil
}

func (f *fakeAPI) command(name string) error {
	f.record(name)
	return f.commandErr
}

func (f *fakeAPI) CreateMatch(context.Context, remote.MatchDraft) error { return f.command("CreateMatch") }
func (f *fakeAPI) DeleteMatch(context.Context) error                   { return f.command("DeleteMatch") }
func (f *fakeAPI) JoinMatch(context.Context, remote.JoinRequest) error { return f.command("JoinMatch") }
func (f *fakeAPI) LeaveMatch(context.Context) error                    { return f.command("LeaveMatch") }
func (f *fakeAPI) UpdateMatchName(context.Context, string) error       { return f.command("UpdateMatchName") }
func (f *fakeAPI) UpdateMatchProvider(context.Context, remote.ProviderChange) error {
	return f.command("UpdateMatchProvider")
}
func (f *fakeAPI) UpdateMatchSchedule(context.Context, remote.Slot) error {
	return f.command("UpdateMatchSchedule")
}
func (f *fakeAPI) UpdateMatchParticipant(context.Context, remote.ParticipantChange) error {
	return f.command("UpdateMatchParticipant")
}
func (f *fakeAPI) RemoveParticipant(context.Context, string) error {
	return f.command("RemoveParticipant")
}
func (f *fakeAPI) InviteParticipant(context.Context, string) error {
	return f.command("InviteParticipant")
}
func (f *fakeAPI) RejectInvite(context.Context, string) error { return f.command("RejectInvite") }

func (f *fakeAPI) FetchMessages(context.Context) ([]remote.Message, error) {
	f.record("FetchMessages")
	if f.duringMessages != nil {
		f.duringMessages()
	}
	return f.messages, nil
}

func (f *fakeAPI) PostMessage(context.Context, remote.MessageDraft) error {
	return f.command("PostMessage")
}
func (f *fakeAPI) PostAnnouncement(context.Context, remote.MessageDraft) error {
	return f.command("PostAnnouncement")
}
func (f *fakeAPI) Announce(context.Context, string) error   { return f.command("Announce") }
func (f *fakeAPI) Unannounce(context.Context, string) error { return f.command("Unannounce") }

func (f *fakeAPI) FetchPrivateMessages(context.Context) ([]remote.Message, error) {
	f.record("FetchPrivateMessages")
	if f.duringPrivateMessages != nil {
		f.duringPrivateMessages()
	}
	return f.privateMessages, nil
}

func (f *fakeAPI) PostPrivateMessage(context.Context, remote.MessageDraft) error {
	return f.command("PostPrivateMessage")
}

func (f *fakeAPI) SearchContact(context.Context, string) (*remote.UserRef, error) {
	f.record("SearchContact")
	return f.found, f.commandErr
}

func (f *fakeAPI) RequestContact(context.Context, string) error { return f.command("RequestContact") }
func (f *fakeAPI) ConfirmContact(context.Context, string) error { return f.command("ConfirmContact") }

type fakeChannel struct {
	mu           sync.Mutex
	handler      events.Handler
	connected    bool
	disconnected int
	joins        []string
	leaves       []string

	// run before a join is recorded, outside mu
	beforeJoin func(topic string)
}

var _ events.Channel = (*fakeChannel)(nil)

func (f *fakeChannel) Connect(_ context.Context, h events.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
	f.connected = true
	return nil
}

func (f *fakeChannel) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.disconnected++
	return nil
}

func (f *fakeChannel) Join(topic string) error {
	if f.beforeJoin != nil {
		f.beforeJoin(topic)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, topic)
	return nil
}

func (f *fakeChannel) Leave(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, topic)
	return nil
}

func (f *fakeChannel) history() (joins, leaves []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.joins...), append([]string(nil), f.leaves...)
}

type fakeLocator struct {
	coords remote.Coordinates
	err    error
}

func (f fakeLocator) Locate(context.Context) (remote.Coordinates, error) {
	return f.coords, f.err
}

type fakePush string

func (f fakePush) PushToken(context.Context) (string, error) { return string(f), nil }
