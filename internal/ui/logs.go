package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/rally/internal/logtail"
)

const logFetchLimit = 500

type logBatchMsg struct {
	lines []string
}

func (m Model) logPath() string {
	if m.config == nil {
		return ""
	}
	return m.config.LogPath()
}

// logHeight is the viewport height inside the log pane.
func (m Model) logHeight() int {
	return max(m.contentHeight()-3, 1) // border and title
}

// refreshLogs reads the tail of the client log off the UI goroutine.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logPath()
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logFetchLimit)
		if err != nil {
			lines = []string{err.Error()}
		}
		return logBatchMsg{lines: lines}
	}
}

func (m *Model) updateLogViewport() {
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = m.logHeight()
	m.logViewport.SetContent(m.renderLogContent())
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if len(m.logLines) == 0 {
		return styles.FaintText.Render("Log is empty")
	}
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		out[i] = m.colorizeLogLine(line, styles)
	}
	return strings.Join(out, "\n")
}

// colorizeLogLine picks a style from the message keywords the client logs.
func (m Model) colorizeLogLine(line string, styles Styles) string {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "failed"):
		return styles.DangerText.Render(line)
	case strings.Contains(lower, "dropped") || strings.Contains(lower, "ignored"):
		return styles.WarningText.Render(line)
	case strings.Contains(lower, "connected"):
		return styles.SuccessText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := "Log " + truncateMiddle(m.logPath(), max(m.width-20, 10))
	if !m.follow {
		title += " (paused)"
	}
	return m.renderPane(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs()
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.Up):
		m.follow = false
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.logViewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.HalfViewDown()
	}
	return m, nil
}
