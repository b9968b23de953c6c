package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/rally/internal/remote"
)

// Config captures everything rally reads from its config file.
type Config struct {
	APIURL      string
	SocketURL   string
	DataDir     string
	Coordinates remote.Coordinates
	Reconnect   time.Duration
	Theme       string
}

const (
	defaultConfigPath = "~/.config/rally/config.toml"
	defaultDataDir    = "~/.local/share/rally"
	defaultAPIURL     = "http://127.0.0.1:3000"
	defaultReconnect  = 2 * time.Second
	defaultTheme      = "Nightfox"
)

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the rally config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string   `toml:"api_url"`
		SocketURL        string   `toml:"socket_url"`
		DataDir          string   `toml:"data_dir"`
		Latitude         *float64 `toml:"latitude"`
		Longitude        *float64 `toml:"longitude"`
		ReconnectSeconds int      `toml:"reconnect_seconds"`
		Theme            string   `toml:"theme"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.SocketURL = strings.TrimSpace(raw.SocketURL)
	if cfg.SocketURL == "" {
		cfg.SocketURL, err = socketURLFor(cfg.APIURL)
		if err != nil {
			return Config{}, err
		}
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}

	switch {
	case raw.Latitude != nil && raw.Longitude != nil:
		lat, lng := *raw.Latitude, *raw.Longitude
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return Config{}, fmt.Errorf("coordinates out of range: %v,%v", lat, lng)
		}
		cfg.Coordinates = remote.NewCoordinates(lat, lng)
	case raw.Latitude != nil || raw.Longitude != nil:
		return Config{}, fmt.Errorf("latitude and longitude must be set together")
	}

	if raw.ReconnectSeconds < 0 {
		return Config{}, fmt.Errorf("reconnect_seconds must not be negative")
	}
	if raw.ReconnectSeconds > 0 {
		cfg.Reconnect = time.Duration(raw.ReconnectSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}

	return cfg, nil
}

func defaults() Config {
	socket, _ := socketURLFor(defaultAPIURL)
	return Config{
		APIURL:    defaultAPIURL,
		SocketURL: socket,
		DataDir:   mustExpand(defaultDataDir),
		Reconnect: defaultReconnect,
		Theme:     defaultTheme,
	}
}

// LogPath returns the path of the client log file.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "rally.log")
}

// StorePath returns the path of the local key-value store.
func (c Config) StorePath() string {
	return filepath.Join(c.dataDir(), "store.toml")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
}

// socketURLFor derives the event channel endpoint from the API base URL:
// same host, ws or wss scheme, path /socket.
func socketURLFor(apiURL string) (string, error) {
	trimmed := strings.TrimSpace(apiURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse api_url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("api_url %q has no host", apiURL)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/socket"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
