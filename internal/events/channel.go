package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/five82/rally/internal/remote"
)

// Handler receives channel lifecycle callbacks and inbound frames. Callbacks
// run on the channel's read goroutine, one at a time.
type Handler interface {
	OnConnect()
	OnConnectError(err error)
	OnEnvelope(env Envelope)
}

// Channel is a topic-multiplexed event stream.
type Channel interface {
	Connect(ctx context.Context, h Handler) error
	Disconnect() error
	Join(topic string) error
	Leave(topic string) error
}

// ErrNotConnected is returned by Join and Leave while no socket is open.
var ErrNotConnected = errors.New("event channel not connected")

const (
	defaultReconnect = 2 * time.Second
	maxBackoff       = 30 * time.Second
	writeTimeout     = 5 * time.Second
)

// calculateBackoff returns the reconnect delay after failures consecutive
// failed attempts, doubling from base and capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// command is the outbound frame.
type command struct {
	Command string `json:"command"`
	Topic   string `json:"topic"`
}

// WSChannel is a Channel over a single websocket connection. It redials with
// exponential backoff until Disconnect is called.
type WSChannel struct {
	url       string
	tokens    remote.TokenSource
	reconnect time.Duration
	dialer    *websocket.Dialer
	clientID  string

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	done    chan struct{}
	writeMu sync.Mutex
}

var _ Channel = (*WSChannel)(nil)

// NewWSChannel returns a channel for socketURL. reconnect is the base retry
// delay; zero selects the default.
func NewWSChannel(socketURL string, tokens remote.TokenSource, reconnect time.Duration) (*WSChannel, error) {
	trimmed := strings.TrimSpace(socketURL)
	if trimmed == "" {
		return nil, fmt.Errorf("socket url is empty")
	}
	if !strings.HasPrefix(trimmed, "ws://") && !strings.HasPrefix(trimmed, "wss://") {
		return nil, fmt.Errorf("socket url %q must use ws or wss", trimmed)
	}
	if reconnect <= 0 {
		reconnect = defaultReconnect
	}
	return &WSChannel{
		url:       trimmed,
		tokens:    tokens,
		reconnect: reconnect,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		clientID:  uuid.NewString(),
	}, nil
}

// Connect starts the dial loop in the background. It returns an error only
// when the channel is already running.
func (c *WSChannel) Connect(ctx context.Context, h Handler) error {
	if h == nil {
		return fmt.Errorf("event handler is nil")
	}
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return fmt.Errorf("event channel already connected")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go func() {
		defer close(done)
		c.run(runCtx, h)
	}()
	return nil
}

// Disconnect stops the dial loop and closes any open socket.
func (c *WSChannel) Disconnect() error {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Join subscribes to topic on the open socket.
func (c *WSChannel) Join(topic string) error {
	return c.send(command{Command: "join", Topic: topic})
}

// Leave unsubscribes from topic on the open socket.
func (c *WSChannel) Leave(topic string) error {
	return c.send(command{Command: "leave", Topic: topic})
}

func (c *WSChannel) send(cmd command) error {
	if cmd.Topic == "" {
		return fmt.Errorf("%s: topic required", cmd.Command)
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("%s %s: %w", cmd.Command, cmd.Topic, err)
	}
	return nil
}

func (c *WSChannel) run(ctx context.Context, h Handler) {
	failures := 0
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.OnConnectError(err)
			if !sleep(ctx, calculateBackoff(failures, c.reconnect)) {
				return
			}
			failures++
			continue
		}

		failures = 0
		c.setConn(conn)
		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-stop:
			}
		}()
		h.OnConnect()
		err = c.read(ctx, conn, h)
		close(stop)
		c.setConn(nil)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		h.OnConnectError(err)
		if !sleep(ctx, c.reconnect) {
			return
		}
	}
}

func (c *WSChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("X-Client-ID", c.clientID)
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			header.Set("token", token)
		}
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	return conn, nil
}

func (c *WSChannel) read(ctx context.Context, conn *websocket.Conn, h Handler) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("event frame dropped: %v", err)
			continue
		}
		h.OnEnvelope(env)
	}
}

func (c *WSChannel) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
