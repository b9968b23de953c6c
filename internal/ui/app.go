package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/rally/internal/config"
	"github.com/five82/rally/internal/state"
)

// View represents the current active pane.
type View int

const (
	ViewMatches View = iota
	ViewChat
	ViewInbox
	ViewLogs
)

var viewOrder = []View{ViewMatches, ViewChat, ViewInbox, ViewLogs}

func (v View) String() string {
	switch v {
	case ViewChat:
		return "Chat"
	case ViewInbox:
		return "Inbox"
	case ViewLogs:
		return "Logs"
	default:
		return "Matches"
	}
}

// Controller is the part of the core the monitor drives.
type Controller interface {
	SelectMatch(matchID string)
	MarkMatchRead(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Control   Controller
	Store     *state.Store
	Config    *config.Config
	PollTick  time.Duration
	ThemeName string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx      context.Context
	control  Controller
	store    *state.Store
	config   *config.Config
	pollTick time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	notice      string

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	cursor      int

	// Log state
	logViewport viewport.Model
	logLines    []string
	follow      bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	return Model{
		ctx:         ctx,
		control:     opts.Control,
		store:       opts.Store,
		config:      opts.Config,
		pollTick:    pollTick,
		theme:       GetTheme(opts.ThemeName),
		keys:        defaultKeyMap(),
		help:        help.New(),
		currentView: ViewMatches,
		follow:      true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ready {
			m.logViewport = viewport.New(m.width, m.logHeight())
		}
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampCursor()
		return m, nil

	case logBatchMsg:
		m.logLines = msg.lines
		m.updateLogViewport()
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewChat:
		return m.renderChat()
	case ViewInbox:
		return m.renderInbox()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderMatches()
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.currentView = stepView(m.currentView, 1)
		return m, m.enterView()

	case key.Matches(msg, m.keys.ShiftTab):
		m.currentView = stepView(m.currentView, -1)
		return m, m.enterView()
	}

	switch m.currentView {
	case ViewMatches:
		return m.handleMatchesKey(msg)
	case ViewChat:
		if key.Matches(msg, m.keys.MarkRead) {
			return m, m.markReadCmd()
		}
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) handleMatchesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Matches)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < count-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		if count > 0 {
			m.cursor = count - 1
		}
	case key.Matches(msg, m.keys.Select):
		if count == 0 || m.control == nil {
			return m, nil
		}
		id := m.snapshot.Matches[m.cursor].ID
		m.control.SelectMatch(id)
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
	case key.Matches(msg, m.keys.MarkRead):
		return m, m.markReadCmd()
	}
	return m, nil
}

func (m *Model) clampCursor() {
	count := len(m.snapshot.Matches)
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) enterView() tea.Cmd {
	if m.currentView == ViewLogs {
		return m.refreshLogs()
	}
	return nil
}

func stepView(current View, delta int) View {
	for i, v := range viewOrder {
		if v == current {
			n := len(viewOrder)
			return viewOrder[((i+delta)%n+n)%n]
		}
	}
	return ViewMatches
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) markReadCmd() tea.Cmd {
	if m.control == nil {
		return nil
	}
	ctx, control := m.ctx, m.control
	return func() tea.Msg {
		if err := control.MarkMatchRead(ctx); err != nil {
			return noticeMsg("mark read: " + err.Error())
		}
		return noticeMsg("chat marked read")
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type noticeMsg string

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits or the
// options' context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
