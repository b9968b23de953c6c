package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/rally/internal/config"
	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
)

type fakeControl struct {
	mu       sync.Mutex
	selected []string
	marks    int
	markErr  error
}

func (f *fakeControl) SelectMatch(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, id)
}

func (f *fakeControl) MarkMatchRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks++
	return f.markErr
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func seededStore() *state.Store {
	store := &state.Store{}
	store.Update(func(s state.Snapshot) state.Snapshot {
		s.Ready = true
		s.Online = true
		s.Coordinates = remote.NewCoordinates(40.4, -3.7)
		s.User = &remote.User{
			ID:    "u1",
			Name:  "Ana",
			Match: &remote.Match{ID: "m1"},
			Contacts: []remote.Contact{
				{Contact: remote.UserRef{ID: "u2", Name: "Bea"}, Status: remote.ContactFriend},
				{Contact: remote.UserRef{ID: "u3", Name: "Cai"}, Status: remote.ContactWaitingRequest},
			},
		}
		s.Matches = []remote.Match{
			{ID: "m1", Name: "Sunday padel", Count: 4, Distance: 350,
				Participants: []remote.Participant{{Participant: remote.UserRef{ID: "u1", Name: "Ana"}, Count: 2}}},
			{ID: "m2", Name: "Evening five-a-side", Count: 10, Distance: 2400},
		}
		s.Messages = []remote.Message{
			{ID: "x1", Owner: remote.UserRef{ID: "u2", Name: "Bea"}, Text: "see you there", Type: remote.MessageTypeMessage},
		}
		return s
	})
	return store
}

func newTestModel(t *testing.T, store *state.Store, control Controller, cfg *config.Config) Model {
	t.Helper()
	m := New(Options{Store: store, Control: control, Config: cfg})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(Model)
	if store != nil {
		next, _ = m.Update(snapshotMsg(store.Snapshot()))
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestView_LoadingUntilSized(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() before size = %q, want Loading...", got)
	}
}

func TestView_RendersSnapshot(t *testing.T) {
	m := newTestModel(t, seededStore(), nil, nil)
	out := m.View()
	for _, want := range []string{"rally", "ONLINE", "Ana", "Sunday padel", "Evening five-a-side", "2.4km", "1 REQ"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestView_SignedOutAndOffline(t *testing.T) {
	store := &state.Store{}
	store.Update(func(s state.Snapshot) state.Snapshot {
		s.Ready = true
		s.LastError = errors.New("dial refused")
		return s
	})
	m := newTestModel(t, store, nil, nil)
	out := m.View()
	for _, want := range []string{"OFFLINE", "SIGNED OUT", "dial refused", "No location"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q:\n%s", want, out)
		}
	}
}

func TestTab_CyclesPanes(t *testing.T) {
	m := newTestModel(t, seededStore(), nil, nil)
	want := []View{ViewChat, ViewInbox, ViewLogs, ViewMatches}
	for _, v := range want {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.currentView != v {
			t.Fatalf("after tab view = %v, want %v", m.currentView, v)
		}
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewLogs {
		t.Fatalf("after shift+tab view = %v, want Logs", m.currentView)
	}
}

func TestMatchesKeys_MoveAndSelect(t *testing.T) {
	control := &fakeControl{}
	m := newTestModel(t, seededStore(), control, nil)

	m, _ = press(t, m, keyRunes("k"))
	if m.cursor != 0 {
		t.Fatalf("cursor after k at top = %d, want 0", m.cursor)
	}
	m, _ = press(t, m, keyRunes("j"))
	m, _ = press(t, m, keyRunes("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor after j j = %d, want 1 (clamped)", m.cursor)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(control.selected) != 1 || control.selected[0] != "m2" {
		t.Fatalf("SelectMatch calls = %v, want [m2]", control.selected)
	}
	if cmd == nil {
		t.Fatalf("select returned no snapshot refresh")
	}
	if _, ok := cmd().(snapshotMsg); !ok {
		t.Fatalf("select cmd produced %T, want snapshotMsg", cmd())
	}

	m, _ = press(t, m, keyRunes("g"))
	if m.cursor != 0 {
		t.Fatalf("cursor after g = %d, want 0", m.cursor)
	}
}

func TestSnapshot_ClampsCursor(t *testing.T) {
	store := seededStore()
	m := newTestModel(t, store, nil, nil)
	m, _ = press(t, m, keyRunes("G"))
	if m.cursor != 1 {
		t.Fatalf("cursor after G = %d, want 1", m.cursor)
	}

	store.Update(func(s state.Snapshot) state.Snapshot {
		s.Matches = s.Matches[:1]
		return s
	})
	next, _ := m.Update(snapshotMsg(store.Snapshot()))
	m = next.(Model)
	if m.cursor != 0 {
		t.Fatalf("cursor after shrink = %d, want 0", m.cursor)
	}
}

func TestMarkRead_ReportsOutcome(t *testing.T) {
	control := &fakeControl{}
	m := newTestModel(t, seededStore(), control, nil)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // chat
	m, cmd := press(t, m, keyRunes("r"))
	if cmd == nil {
		t.Fatalf("r returned no command")
	}
	msg := cmd()
	if got, ok := msg.(noticeMsg); !ok || got != "chat marked read" {
		t.Fatalf("mark read msg = %#v, want notice", msg)
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if m.notice != "chat marked read" {
		t.Fatalf("notice = %q", m.notice)
	}

	control.markErr = errors.New("not signed in")
	_, cmd = press(t, m, keyRunes("r"))
	if got := cmd().(noticeMsg); !strings.Contains(string(got), "not signed in") {
		t.Fatalf("mark read failure notice = %q", got)
	}
	if control.marks != 2 {
		t.Fatalf("MarkMatchRead calls = %d, want 2", control.marks)
	}
}

func TestChatAndInboxPanes(t *testing.T) {
	m := newTestModel(t, seededStore(), nil, nil)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	chat := m.View()
	for _, want := range []string{"Sunday padel", "1 unread", "see you there"} {
		if !strings.Contains(chat, want) {
			t.Fatalf("chat view missing %q:\n%s", want, chat)
		}
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	inbox := m.View()
	for _, want := range []string{"Bea", "WANTS TO CONNECT", "No invitations"} {
		if !strings.Contains(inbox, want) {
			t.Fatalf("inbox view missing %q:\n%s", want, inbox)
		}
	}
}

func TestLogsPane_TailsLogFile(t *testing.T) {
	dataDir := t.TempDir()
	cfg := config.Config{DataDir: dataDir}
	if err := os.WriteFile(filepath.Join(dataDir, "rally.log"), []byte("event channel connected\nevent dropped: bad\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := newTestModel(t, seededStore(), nil, &cfg)
	var cmd tea.Cmd
	for m.currentView != ViewLogs {
		m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	if cmd == nil {
		t.Fatalf("entering logs returned no refresh")
	}
	batch, ok := cmd().(logBatchMsg)
	if !ok || len(batch.lines) != 2 {
		t.Fatalf("refresh produced %#v, want two lines", batch)
	}
	next, _ := m.Update(batch)
	m = next.(Model)
	if out := m.View(); !strings.Contains(out, "event dropped: bad") {
		t.Fatalf("logs view missing line:\n%s", out)
	}

	m, _ = press(t, m, keyRunes(" "))
	if m.follow {
		t.Fatalf("space should pause follow")
	}
	if !strings.Contains(m.View(), "(paused)") {
		t.Fatalf("paused log title missing")
	}
}

func TestGlobalKeys(t *testing.T) {
	m := newTestModel(t, seededStore(), nil, nil)

	m, _ = press(t, m, keyRunes("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme after T = %q, want Kanagawa", m.theme.Name)
	}

	m, _ = press(t, m, keyRunes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("? should open help")
	}
	m, _ = press(t, m, keyRunes("x"))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}

	_, cmd := press(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q produced %T, want tea.QuitMsg", cmd())
	}
}
