package explorer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

// BrowseTableMsg is sent when the user opens a table from the list.
type BrowseTableMsg struct {
	Table string
}

// Model is the base-table list shown next to the query menu.
type Model struct {
	database string
	tables   []string
	loaded   bool
	cursor   int
	width    int
	height   int
	focused  bool
	loading  bool
}

// New creates a new explorer model.
func New() Model {
	return Model{}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the explorer has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTables replaces the listing with the base tables of database.
func (m *Model) SetTables(database string, tables []string) {
	m.database = database
	m.tables = append([]string(nil), tables...)
	m.loaded = true
	m.loading = false
	if m.cursor >= len(m.tables) {
		m.cursor = max(0, len(m.tables)-1)
	}
}

// Reset forgets the listing, used on disconnect.
func (m *Model) Reset() {
	m.database = ""
	m.tables = nil
	m.loaded = false
	m.loading = false
	m.cursor = 0
}

// Tables returns the listed table names.
func (m Model) Tables() []string {
	return m.tables
}

// SelectedTable returns the table under the cursor, if any.
func (m Model) SelectedTable() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tables) {
		return "", false
	}
	return m.tables[m.cursor], true
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the explorer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.tables)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(0, len(m.tables)-1)
		case "enter", "right", "l":
			table, ok := m.SelectedTable()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return BrowseTableMsg{Table: table}
			}
		}
	}

	return m, nil
}

// View renders the explorer.
func (m Model) View() string {
	titleStyle := theme.StylePaneTitle

	title := titleStyle.Render("Tables")

	if m.loading {
		return title + "\n" + theme.StyleMuted.Render("  Loading...")
	}

	if !m.loaded {
		return title + "\n" + theme.StyleMuted.Render("  No connection")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(theme.StyleMuted.Render(fmt.Sprintf("  ▼ %s (%d)", m.database, len(m.tables))))

	if len(m.tables) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.StyleMuted.Render("    no base tables"))
		return b.String()
	}

	// Calculate visible area
	visibleHeight := m.height - 3 // title + database line + padding
	if visibleHeight < 1 {
		visibleHeight = 1
	}

	// Scroll offset to keep cursor visible
	scrollOffset := 0
	if m.cursor >= visibleHeight {
		scrollOffset = m.cursor - visibleHeight + 1
	}

	for i := scrollOffset; i < len(m.tables) && i < scrollOffset+visibleHeight; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderTable(m.tables[i], i == m.cursor))
	}

	return b.String()
}

func (m Model) renderTable(name string, selected bool) string {
	line := "    " + name

	if m.width > 4 && lipgloss.Width(line) > m.width-2 {
		runes := []rune(line)
		for len(runes) > 0 && lipgloss.Width(string(runes)) > m.width-4 {
			runes = runes[:len(runes)-1]
		}
		line = string(runes) + ".."
	}

	if selected && m.focused {
		return theme.StyleSelected.Render(line)
	}

	return line
}
