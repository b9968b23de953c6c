package core

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
)

// Session commands change the snapshot as soon as the remote call succeeds.
// Match and message commands do not: their effect arrives as an event on
// the channel, for the caller and every other participant alike. Do not add
// local writes to them or the change will be applied twice.

// SignIn authenticates, stores the session token and sets the user.
func (c *Core) SignIn(ctx context.Context, creds remote.Credentials) (*remote.User, error) {
	return c.authenticate(ctx, creds, c.api.SignIn, "sign in")
}

// SignUp registers an account, stores the session token and sets the user.
func (c *Core) SignUp(ctx context.Context, creds remote.Credentials) (*remote.User, error) {
	return c.authenticate(ctx, creds, c.api.SignUp, "sign up")
}

func (c *Core) authenticate(
	ctx context.Context,
	creds remote.Credentials,
	call func(context.Context, remote.Credentials) (remote.Auth, error),
	verb string,
) (*remote.User, error) {
	if c.push != nil && creds.FCMToken == "" {
		token, err := c.push.PushToken(ctx)
		if err != nil {
			log.Printf("push token: %v", err)
		} else {
			creds.FCMToken = token
		}
	}

	auth, err := call(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", verb, err)
	}
	if err := c.tokens.SetToken(auth.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	user := auth.User
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.User = &user
		return s
	})
	c.reconcile(ctx)
	return &user, nil
}

// SignOut forgets the session token and clears every user-scoped
// collection. The user and match topics are left.
func (c *Core) SignOut(ctx context.Context) error {
	if err := c.tokens.ClearToken(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.User = nil
		s.Messages = nil
		s.PrivateMessages = nil
		s.SelectedInboxID = ""
		return s
	})
	c.reconcile(ctx)
	return nil
}

// UpdateName renames the signed-in user.
func (c *Core) UpdateName(ctx context.Context, name string) error {
	if err := c.requireUser(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("update name: name is empty")
	}
	if err := c.api.SetName(ctx, name); err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		if s.User != nil {
			s.User.Name = name
		}
		return s
	})
	return nil
}

// SelectMatch moves the browsing cursor. An empty id clears it.
func (c *Core) SelectMatch(matchID string) {
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.SelectedMatchID = matchID
		return s
	})
}

// SelectInbox moves the inbox cursor. An empty id clears it.
func (c *Core) SelectInbox(contactID string) {
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.SelectedInboxID = contactID
		return s
	})
}

// LoadProviders replaces the provider list.
func (c *Core) LoadProviders(ctx context.Context) error {
	providers, err := c.api.FetchProviders(ctx)
	if err != nil {
		return fmt.Errorf("load providers: %w", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Providers = providers
		return s
	})
	return nil
}

// LoadMatches replaces the nearby matches around the last known position.
func (c *Core) LoadMatches(ctx context.Context) error {
	coords := c.store.Snapshot().Coordinates
	matches, err := c.api.FetchMatches(ctx, coords)
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Matches = matches
		return s
	})
	return nil
}

// LoadMessages merges the server history into the match chat.
func (c *Core) LoadMessages(ctx context.Context) error {
	messages, err := c.api.FetchMessages(ctx)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Messages = state.MergeHistory(messages, s.Messages)
		return s
	})
	return nil
}

// LoadPrivateMessages merges the server history into the private messages.
func (c *Core) LoadPrivateMessages(ctx context.Context) error {
	messages, err := c.api.FetchPrivateMessages(ctx)
	if err != nil {
		return fmt.Errorf("load private messages: %w", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.PrivateMessages = state.MergeHistory(messages, s.PrivateMessages)
		return s
	})
	return nil
}

func (c *Core) CreateMatch(ctx context.Context, draft remote.MatchDraft) error {
	return c.call(ctx, "create match", func(ctx context.Context) error {
		return c.api.CreateMatch(ctx, draft)
	})
}

func (c *Core) DeleteMatch(ctx context.Context) error {
	return c.call(ctx, "delete match", c.api.DeleteMatch)
}

func (c *Core) JoinMatch(ctx context.Context, req remote.JoinRequest) error {
	if req.MatchRef == "" || req.Count <= 0 {
		return fmt.Errorf("join match: match and a positive count are required")
	}
	return c.call(ctx, "join match", func(ctx context.Context) error {
		return c.api.JoinMatch(ctx, req)
	})
}

func (c *Core) LeaveMatch(ctx context.Context) error {
	return c.call(ctx, "leave match", c.api.LeaveMatch)
}

func (c *Core) UpdateMatchName(ctx context.Context, name string) error {
	return c.call(ctx, "update match name", func(ctx context.Context) error {
		return c.api.UpdateMatchName(ctx, name)
	})
}

func (c *Core) UpdateMatchProvider(ctx context.Context, change remote.ProviderChange) error {
	return c.call(ctx, "update match provider", func(ctx context.Context) error {
		return c.api.UpdateMatchProvider(ctx, change)
	})
}

func (c *Core) UpdateMatchSchedule(ctx context.Context, slot remote.Slot) error {
	return c.call(ctx, "update match schedule", func(ctx context.Context) error {
		return c.api.UpdateMatchSchedule(ctx, slot)
	})
}

func (c *Core) UpdateMatchParticipant(ctx context.Context, change remote.ParticipantChange) error {
	return c.call(ctx, "update match participant", func(ctx context.Context) error {
		return c.api.UpdateMatchParticipant(ctx, change)
	})
}

func (c *Core) RemoveParticipant(ctx context.Context, participantID string) error {
	return c.call(ctx, "remove participant", func(ctx context.Context) error {
		return c.api.RemoveParticipant(ctx, participantID)
	})
}

func (c *Core) InviteParticipant(ctx context.Context, participantID string) error {
	return c.call(ctx, "invite participant", func(ctx context.Context) error {
		return c.api.InviteParticipant(ctx, participantID)
	})
}

func (c *Core) RejectInvite(ctx context.Context, matchID string) error {
	return c.call(ctx, "reject invite", func(ctx context.Context) error {
		return c.api.RejectInvite(ctx, matchID)
	})
}

func (c *Core) SendMessage(ctx context.Context, text string) error {
	return c.call(ctx, "send message", func(ctx context.Context) error {
		return c.api.PostMessage(ctx, remote.MessageDraft{Text: text})
	})
}

func (c *Core) SendAnnouncement(ctx context.Context, text string) error {
	return c.call(ctx, "send announcement", func(ctx context.Context) error {
		return c.api.PostAnnouncement(ctx, remote.MessageDraft{Text: text})
	})
}

func (c *Core) AnnounceMessage(ctx context.Context, messageID string) error {
	return c.call(ctx, "announce message", func(ctx context.Context) error {
		return c.api.Announce(ctx, messageID)
	})
}

func (c *Core) UnannounceMessage(ctx context.Context, messageID string) error {
	return c.call(ctx, "unannounce message", func(ctx context.Context) error {
		return c.api.Unannounce(ctx, messageID)
	})
}

func (c *Core) SendPrivateMessage(ctx context.Context, recipientID, text string) error {
	return c.call(ctx, "send private message", func(ctx context.Context) error {
		return c.api.PostPrivateMessage(ctx, remote.MessageDraft{Text: text, RecipientRef: recipientID})
	})
}

// SearchContact looks a user up by their public id string. State is not
// touched.
func (c *Core) SearchContact(ctx context.Context, idString string) (*remote.UserRef, error) {
	found, err := c.api.SearchContact(ctx, strings.TrimSpace(idString))
	if err != nil {
		return nil, fmt.Errorf("search contact: %w", err)
	}
	return found, nil
}

func (c *Core) RequestContact(ctx context.Context, contactID string) error {
	return c.call(ctx, "request contact", func(ctx context.Context) error {
		return c.api.RequestContact(ctx, contactID)
	})
}

func (c *Core) ConfirmContact(ctx context.Context, contactID string) error {
	return c.call(ctx, "confirm contact", func(ctx context.Context) error {
		return c.api.ConfirmContact(ctx, contactID)
	})
}

// call issues one remote call on behalf of a signed-in user.
func (c *Core) call(ctx context.Context, verb string, fn func(context.Context) error) error {
	if err := c.requireUser(); err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}
	return nil
}

func (c *Core) requireUser() error {
	if c.store.Snapshot().User == nil {
		return ErrSignedOut
	}
	return nil
}
