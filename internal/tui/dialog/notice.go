package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/stockq/internal/app"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

// Notice is a modal message box. Only one notice is shown at a time; a newer
// one replaces the previous.
type Notice struct {
	notice app.Notice
	active bool
	width  int
}

// Show opens the box with n.
func (m *Notice) Show(n app.Notice) {
	m.notice = n
	m.active = true
}

// Active reports whether the box is open.
func (m Notice) Active() bool {
	return m.active
}

// Current returns the notice on screen.
func (m Notice) Current() app.Notice {
	return m.notice
}

// SetWidth limits the box width.
func (m *Notice) SetWidth(w int) {
	m.width = w
}

// Update closes the box on enter, esc or space.
func (m Notice) Update(msg tea.Msg) (Notice, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "esc", " ":
			m.active = false
		}
	}
	return m, nil
}

// LevelStyle returns the style used for a notice level.
func LevelStyle(l app.Level) lipgloss.Style {
	switch l {
	case app.LevelWarning:
		return theme.StyleWarning
	case app.LevelError:
		return theme.StyleError
	default:
		return theme.StyleSuccess
	}
}

// View renders the box.
func (m Notice) View() string {
	if !m.active {
		return ""
	}

	style := LevelStyle(m.notice.Level)
	text := m.notice.Text
	if m.width > 16 {
		text = lipgloss.NewStyle().Width(min(70, m.width-16)).Render(text)
	}

	body := strings.Join([]string{
		style.Bold(true).Render(m.notice.Title),
		"",
		text,
		"",
		theme.StyleMuted.Render("Enter: Close"),
	}, "\n")

	color := theme.ColorSuccess
	switch m.notice.Level {
	case app.LevelWarning:
		color = theme.ColorWarning
	case app.LevelError:
		color = theme.ColorError
	}
	return theme.Dialog(color).Render(body)
}
