package statusbar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

const globalHints = "Tab: Pane │ ?: Help │ q: Quit"

// paneHints lists the keys that act on each pane.
var paneHints = map[string]string{
	"tables":  "Enter: Browse",
	"queries": "Enter/1-0: Run",
	"results": "c: Copy │ y: Row │ e: CSV │ J: JSON",
}

// Model is the bottom line: session on the left, hints or the last
// message on the right.
type Model struct {
	width   int
	session string
	pane    string
	message string
	busy    bool
}

// New creates a status bar with no session.
func New() Model {
	return Model{pane: "tables"}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
}

// SetConnected shows name as the live session, or clears it.
func (m *Model) SetConnected(connected bool, name string) {
	m.session = ""
	if connected {
		m.session = name
	}
}

// SetActivePane selects which pane's keys are hinted.
func (m *Model) SetActivePane(pane string) {
	m.pane = pane
}

// SetMessage replaces the hints until cleared with "".
func (m *Model) SetMessage(msg string) {
	m.message = msg
}

// Message returns the current status message.
func (m Model) Message() string {
	return m.message
}

// SetBusy marks a database round trip in flight.
func (m *Model) SetBusy(b bool) {
	m.busy = b
}

// Hints returns the key help for the active pane.
func (m Model) Hints() string {
	if h, ok := paneHints[m.pane]; ok {
		return h + " │ " + globalHints
	}
	return globalHints
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (status bar has no interactive behavior).
func (m Model) Update(_ tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) left() string {
	dot, label := theme.StyleError.Render("●"), "disconnected"
	if m.session != "" {
		dot, label = theme.StyleSuccess.Render("●"), m.session
	}
	s := dot + " " + label + " " + theme.StyleMuted.Render("["+m.pane+"]")
	if m.busy {
		s += " " + theme.StyleWarning.Render("⧗")
	}
	return s
}

// View renders the status bar.
func (m Model) View() string {
	left := m.left()
	right := m.message
	if right == "" {
		right = m.Hints()
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.StyleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
