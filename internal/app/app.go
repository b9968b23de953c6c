package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/rally/internal/config"
	"github.com/five82/rally/internal/core"
	"github.com/five82/rally/internal/events"
	"github.com/five82/rally/internal/kvstore"
	"github.com/five82/rally/internal/readmark"
	"github.com/five82/rally/internal/remote"
	"github.com/five82/rally/internal/state"
	"github.com/five82/rally/internal/ui"
)

// Options configure the rally client.
type Options struct {
	ConfigPath   string
	Headless     bool // no TUI; block until ctx is cancelled
	Reconnect    int  // seconds; zero uses the config value
	RefreshEvery int  // seconds; zero uses default
}

// ErrNoCoordinates is returned by StaticLocator when no position is configured.
var ErrNoCoordinates = errors.New("no coordinates configured")

// StaticLocator reports a fixed, configured position.
type StaticLocator struct {
	Coordinates remote.Coordinates
}

var _ core.Locator = StaticLocator{}

// Locate returns the configured position or ErrNoCoordinates.
func (l StaticLocator) Locate(context.Context) (remote.Coordinates, error) {
	if !l.Coordinates.Set {
		return remote.Coordinates{}, ErrNoCoordinates
	}
	return l.Coordinates, nil
}

// Run boots the rally client until the context is cancelled or the UI exits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load rally config: %w", err)
	}
	if opts.Reconnect > 0 {
		cfg.Reconnect = time.Duration(opts.Reconnect) * time.Second
	}

	logFile, err := openLog(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()
	if opts.Headless {
		log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	} else {
		log.SetOutput(logFile)
	}
	defer log.SetOutput(os.Stderr)

	kv := openStore(cfg.StorePath())
	tokens := kvstore.Tokens{Store: kv}

	client, err := remote.NewClient(cfg.APIURL, tokens)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	channel, err := events.NewWSChannel(cfg.SocketURL, tokens, cfg.Reconnect)
	if err != nil {
		return fmt.Errorf("init event channel: %w", err)
	}

	store := &state.Store{}
	c, err := core.New(core.Options{
		Store:   store,
		API:     client,
		Channel: channel,
		Marks:   readmark.New(kv),
		Locator: StaticLocator{Coordinates: cfg.Coordinates},
		Tokens:  tokens,
	})
	if err != nil {
		return fmt.Errorf("init core: %w", err)
	}

	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := c.Stop(); err != nil {
			log.Printf("stop: %v", err)
		}
	}()

	interval := defaultRefreshInterval
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}
	StartRefresher(ctx, c, interval)

	if opts.Headless {
		log.Printf("rally running headless against %s", cfg.APIURL)
		<-ctx.Done()
		return nil
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Control:   c,
		Store:     store,
		Config:    &cfg,
		ThemeName: cfg.Theme,
	})
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

// openStore never fails: an unreadable store is replaced by an empty one so
// the client still runs, signed out and with no read markers.
func openStore(path string) kvstore.Store {
	kv, err := kvstore.Open(path)
	if err != nil {
		log.Printf("local store: %v (continuing with an empty store)", err)
	}
	if kv == nil {
		return kvstore.NewMemoryStore()
	}
	return kv
}
