package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API lists every backend call the state core depends on. Calls that mutate
// shared match or message state return no payload: the resulting change is
// delivered through the event channel.
type API interface {
	FetchUser(ctx context.Context) (*User, error)
	SignIn(ctx context.Context, creds Credentials) (Auth, error)
	SignUp(ctx context.Context, creds Credentials) (Auth, error)
	SetCoordinates(ctx context.Context, coords Coordinates) error
	SetName(ctx context.Context, name string) error

	FetchMatches(ctx context.Context, coords Coordinates) ([]Match, error)
	FetchProviders(ctx context.Context) ([]Provider, error)
	CreateMatch(ctx context.Context, draft MatchDraft) error
	DeleteMatch(ctx context.Context) error
	JoinMatch(ctx context.Context, req JoinRequest) error
	LeaveMatch(ctx context.Context) error
	UpdateMatchName(ctx context.Context, name string) error
	UpdateMatchProvider(ctx context.Context, change ProviderChange) error
	UpdateMatchSchedule(ctx context.Context, slot Slot) error
	UpdateMatchParticipant(ctx context.Context, change ParticipantChange) error
	RemoveParticipant(ctx context.Context, participantID string) error
	InviteParticipant(ctx context.Context, participantID string) error
	RejectInvite(ctx context.Context, matchID string) error

	FetchMessages(ctx context.Context) ([]Message, error)
	PostMessage(ctx context.Context, draft MessageDraft) error
	PostAnnouncement(ctx context.Context, draft MessageDraft) error
	Announce(ctx context.Context, messageID string) error
	Unannounce(ctx context.Context, messageID string) error
	FetchPrivateMessages(ctx context.Context) ([]Message, error)
	PostPrivateMessage(ctx context.Context, draft MessageDraft) error

	SearchContact(ctx context.Context, idString string) (*UserRef, error)
	RequestContact(ctx context.Context, contactID string) error
	ConfirmContact(ctx context.Context, contactID string) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// TokenSource supplies the session token attached to every request.
type TokenSource interface {
	Token() (string, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// AuthError is returned by SignIn and SignUp when the backend rejects the
// credentials.
type AuthError struct {
	Err *StatusError
}

func (e *AuthError) Error() string {
	return "invalid credentials: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// Client talks to the backend HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
}

const (
	defaultAPIURL    = "127.0.0.1:3000"
	defaultUserAgent = "rally/0.1"
	requestTimeout   = 10 * time.Second
	apiPrefix        = "/api/v1"
)

// NewClient builds a Client for apiURL. tokens may be nil for anonymous use.
func NewClient(apiURL string, tokens TokenSource) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		tokens:    tokens,
	}, nil
}

// FetchUser returns the signed-in user, or nil when the backend has no session.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	var payload *User
	if err := c.do(ctx, http.MethodGet, "/session", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SignIn exchanges credentials for a token and user.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (Auth, error) {
	return c.authenticate(ctx, "/signin", creds)
}

// SignUp registers a new account and returns its token and user.
func (c *Client) SignUp(ctx context.Context, creds Credentials) (Auth, error) {
	return c.authenticate(ctx, "/signup", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (Auth, error) {
	var payload Auth
	err := c.do(ctx, http.MethodPost, path, creds, &payload)
	var status *StatusError
	if errors.As(err, &status) && (status.Code == http.StatusUnauthorized || status.Code == http.StatusForbidden || status.Code == http.StatusBadRequest) {
		return Auth{}, &AuthError{Err: status}
	}
	if err != nil {
		return Auth{}, err
	}
	if strings.TrimSpace(payload.Token) == "" {
		return Auth{}, fmt.Errorf("api %s%s returned no token", apiPrefix, path)
	}
	return payload, nil
}

// SetCoordinates stores the device position on the user's profile.
func (c *Client) SetCoordinates(ctx context.Context, coords Coordinates) error {
	body := map[string][]float64{"coordinates": coords.LngLat()}
	return c.do(ctx, http.MethodPut, "/setting/coordinates", body, nil)
}

// SetName renames the signed-in user.
func (c *Client) SetName(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/setting/name", map[string]string{"name": name}, nil)
}

// FetchMatches lists matches near coords sorted by distance.
func (c *Client) FetchMatches(ctx context.Context, coords Coordinates) ([]Match, error) {
	values := url.Values{}
	if coords.Set {
		values.Set("coords", coords.Query())
	}
	rel := &url.URL{Path: apiPrefix + "/match/list", RawQuery: values.Encode()}
	var payload []Match
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchProviders lists the venues a match can be scheduled at.
func (c *Client) FetchProviders(ctx context.Context) ([]Provider, error) {
	var payload []Provider
	if err := c.do(ctx, http.MethodGet, "/match/provider", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) CreateMatch(ctx context.Context, draft MatchDraft) error {
	return c.do(ctx, http.MethodPost, "/match/create", draft, nil)
}

func (c *Client) DeleteMatch(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/match/delete", nil, nil)
}

func (c *Client) JoinMatch(ctx context.Context, req JoinRequest) error {
	return c.do(ctx, http.MethodPut, "/match/join", req, nil)
}

func (c *Client) LeaveMatch(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/match/leave", nil, nil)
}

func (c *Client) UpdateMatchName(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/match/update/name", map[string]string{"name": name}, nil)
}

func (c *Client) UpdateMatchProvider(ctx context.Context, change ProviderChange) error {
	return c.do(ctx, http.MethodPut, "/match/update/provider", change, nil)
}

func (c *Client) UpdateMatchSchedule(ctx context.Context, slot Slot) error {
	return c.do(ctx, http.MethodPut, "/match/update/schedule", slot, nil)
}

func (c *Client) UpdateMatchParticipant(ctx context.Context, change ParticipantChange) error {
	return c.do(ctx, http.MethodPut, "/match/update/participant", change, nil)
}

func (c *Client) RemoveParticipant(ctx context.Context, participantID string) error {
	return c.do(ctx, http.MethodPut, "/match/remove", map[string]string{"participantRef": participantID}, nil)
}

func (c *Client) InviteParticipant(ctx context.Context, participantID string) error {
	return c.do(ctx, http.MethodPut, "/match/invite", map[string]string{"participantRef": participantID}, nil)
}

func (c *Client) RejectInvite(ctx context.Context, matchID string) error {
	return c.do(ctx, http.MethodPut, "/match/reject-invite", map[string]string{"matchRef": matchID}, nil)
}

// FetchMessages returns the chat history of the user's current match.
func (c *Client) FetchMessages(ctx context.Context) ([]Message, error) {
	var payload []Message
	if err := c.do(ctx, http.MethodGet, "/message/list", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) PostMessage(ctx context.Context, draft MessageDraft) error {
	return c.do(ctx, http.MethodPost, "/message/post", draft, nil)
}

func (c *Client) PostAnnouncement(ctx context.Context, draft MessageDraft) error {
	return c.do(ctx, http.MethodPost, "/message/announcement", draft, nil)
}

func (c *Client) Announce(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPut, "/message/announce", map[string]string{"messageRef": messageID}, nil)
}

func (c *Client) Unannounce(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPut, "/message/unannounce", map[string]string{"messageRef": messageID}, nil)
}

// FetchPrivateMessages returns every private message the user sent or received.
func (c *Client) FetchPrivateMessages(ctx context.Context) ([]Message, error) {
	var payload []Message
	if err := c.do(ctx, http.MethodGet, "/message/private/list", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) PostPrivateMessage(ctx context.Context, draft MessageDraft) error {
	if strings.TrimSpace(draft.RecipientRef) == "" {
		return fmt.Errorf("recipient required")
	}
	return c.do(ctx, http.MethodPost, "/message/private/post", draft, nil)
}

// SearchContact looks a user up by their public id string.
func (c *Client) SearchContact(ctx context.Context, idString string) (*UserRef, error) {
	values := url.Values{}
	values.Set("id", strings.TrimSpace(idString))
	rel := &url.URL{Path: apiPrefix + "/contact/search", RawQuery: values.Encode()}
	var payload *UserRef
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) RequestContact(ctx context.Context, contactID string) error {
	return c.do(ctx, http.MethodPost, "/contact/request", map[string]string{"contactRef": contactID}, nil)
}

func (c *Client) ConfirmContact(ctx context.Context, contactID string) error {
	return c.do(ctx, http.MethodPost, "/contact/confirm", map[string]string{"contactRef": contactID}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: apiPrefix + path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("token", token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.Path, Code: resp.StatusCode}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
