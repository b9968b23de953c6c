package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/five82/rally/internal/events"
	"github.com/five82/rally/internal/readmark"
	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
)

// ErrSignedOut is returned by commands that need a signed-in user.
var ErrSignedOut = errors.New("not signed in")

// Locator resolves the device position.
type Locator interface {
	Locate(ctx context.Context) (remote.Coordinates, error)
}

// PushRegistrar supplies the device push token sent with sign-in and
// sign-up.
type PushRegistrar interface {
	PushToken(ctx context.Context) (string, error)
}

// TokenStore keeps the session token between runs.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error
}

// Options are the collaborators of a Core. Store and Marks default to fresh
// in-memory instances; Push is optional.
type Options struct {
	Store   *state.Store
	API     remote.API
	Channel events.Channel
	Marks   *readmark.Store
	Locator Locator
	Tokens  TokenStore
	Push    PushRegistrar
}

// Core owns the client state and is its only writer.
type Core struct {
	store   *state.Store
	api     remote.API
	channel events.Channel
	marks   *readmark.Store
	locator Locator
	tokens  TokenStore
	push    PushRegistrar

	mu     sync.Mutex
	ctx    context.Context
	joined map[string]topicKind

	reconcileMu sync.Mutex
}

var _ events.Handler = (*Core)(nil)

// New validates opts and returns a Core.
func New(opts Options) (*Core, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("core: api is required")
	}
	if opts.Channel == nil {
		return nil, fmt.Errorf("core: event channel is required")
	}
	if opts.Locator == nil {
		return nil, fmt.Errorf("core: locator is required")
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("core: token store is required")
	}
	if opts.Store == nil {
		opts.Store = &state.Store{}
	}
	if opts.Marks == nil {
		opts.Marks = readmark.New(nil)
	}
	return &Core{
		store:   opts.Store,
		api:     opts.API,
		channel: opts.Channel,
		marks:   opts.Marks,
		locator: opts.Locator,
		tokens:  opts.Tokens,
		push:    opts.Push,
		ctx:     context.Background(),
		joined:  map[string]topicKind{},
	}, nil
}

// Store returns the state store the Core writes to.
func (c *Core) Store() *state.Store {
	return c.store
}

// Snapshot is shorthand for Store().Snapshot().
func (c *Core) Snapshot() state.Snapshot {
	return c.store.Snapshot()
}

// Start runs the bootstrap sequence: mark ready, hydrate read markers,
// locate the device, load the user and nearby matches, then open the event
// channel. Missing location, user or matches are logged and tolerated.
func (c *Core) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Ready = true
		return s
	})
	c.hydrateMarkers()

	coords, err := c.locator.Locate(ctx)
	if err != nil {
		log.Printf("locate: %v", err)
	} else {
		c.store.Update(func(s state.Snapshot) state.Snapshot {
			s.Coordinates = coords
			return s
		})
		c.initUser(ctx, coords)
		c.initMatches(ctx, coords)
	}

	if err := c.channel.Connect(ctx, c); err != nil {
		return fmt.Errorf("connect event channel: %w", err)
	}
	return nil
}

// Stop closes the event channel and marks the client offline.
func (c *Core) Stop() error {
	err := c.channel.Disconnect()
	c.forgetTopics()
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Online = false
		return s
	})
	if err != nil {
		return fmt.Errorf("disconnect event channel: %w", err)
	}
	return nil
}

func (c *Core) initUser(ctx context.Context, coords remote.Coordinates) {
	user, err := c.api.FetchUser(ctx)
	if err != nil {
		log.Printf("init-user: %v", err)
		return
	}
	if user == nil {
		log.Printf("init-user: no session")
		return
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.User = user
		return s
	})
	if err := c.api.SetCoordinates(ctx, coords); err != nil {
		log.Printf("init-user coordinates: %v", err)
	}
}

func (c *Core) initMatches(ctx context.Context, coords remote.Coordinates) {
	matches, err := c.api.FetchMatches(ctx, coords)
	if err != nil {
		log.Printf("init-matches: %v", err)
		return
	}
	if len(matches) == 0 {
		log.Printf("init-matches: none nearby")
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Matches = matches
		return s
	})
}

func (c *Core) hydrateMarkers() {
	matchMarks, err := c.marks.All(readmark.Match)
	if err != nil {
		log.Printf("read markers: %v", err)
	}
	privateMarks, err := c.marks.All(readmark.Private)
	if err != nil {
		log.Printf("private read markers: %v", err)
	}
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.MessagesLastRead = matchMarks
		s.PrivateMessagesLastRead = privateMarks
		return s
	})
}

// OnConnect marks the client online and joins the wanted topics.
func (c *Core) OnConnect() {
	log.Printf("event channel connected")
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Online = true
		s.LastError = nil
		return s
	})
	c.reconcile(c.baseContext())
}

// OnConnectError marks the client offline. Joined topics are forgotten so
// the next connect re-joins and reloads them.
func (c *Core) OnConnectError(err error) {
	log.Printf("event channel error: %v", err)
	c.forgetTopics()
	c.store.Update(func(s state.Snapshot) state.Snapshot {
		s.Online = false
		s.LastError = err
		return s
	})
}

// OnEnvelope decodes and applies one inbound frame. Unknown and malformed
// events are logged and dropped.
func (c *Core) OnEnvelope(env events.Envelope) {
	ev, err := events.Decode(env)
	if errors.Is(err, events.ErrUnknownEvent) {
		log.Printf("event ignored: %v", err)
		return
	}
	if err != nil {
		log.Printf("event dropped: %v", err)
		return
	}

	fx, err := c.store.Apply(ev)
	if err != nil {
		log.Printf("event dropped: %v", err)
		return
	}
	for _, topic := range fx.LeaveTopics {
		c.leave(topic)
	}
	c.reconcile(c.baseContext())
}

func (c *Core) baseContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}
