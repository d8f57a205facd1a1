package results

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

const maxColWidth = 40

// StatusNotifyMsg tells the app to show a message in the status bar.
type StatusNotifyMsg struct {
	Message string
}

// Model is the result grid. Cells are stored as display text.
type Model struct {
	title    string
	headers  []string
	cells    [][]string
	duration time.Duration
	shown    bool

	width     int
	height    int
	focused   bool
	loading   bool
	scrollY   int
	cursorY   int
	cursorX   int
	colOffset int
	colWidths []int

	statusMessage string
}

// New creates a new results model.
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

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTitle names what the grid is showing.
func (m *Model) SetTitle(title string) {
	m.title = title
}

// Display replaces the grid with rs: len(Columns) columns, len(Rows) rows, every
// value stringified with FormatValue.
func (m *Model) Display(rs *database.ResultSet) {
	m.Clear()
	if rs == nil {
		return
	}

	m.headers = make([]string, len(rs.Columns))
	copy(m.headers, rs.Columns)

	m.cells = make([][]string, len(rs.Rows))
	for r, row := range rs.Rows {
		line := make([]string, len(m.headers))
		for c := range line {
			if c < len(row) {
				line[c] = FormatValue(row[c])
			} else {
				line[c] = NullText
			}
		}
		m.cells[r] = line
	}
	m.duration = rs.Duration
	m.shown = true
	m.calculateColumnWidths()
}

// Clear removes any displayed result.
func (m *Model) Clear() {
	m.headers = nil
	m.cells = nil
	m.duration = 0
	m.shown = false
	m.loading = false
	m.scrollY = 0
	m.cursorY = 0
	m.cursorX = 0
	m.colOffset = 0
	m.colWidths = nil
	m.statusMessage = ""
}

// Headers returns the displayed column headers.
func (m Model) Headers() []string {
	return m.headers
}

// RowCount returns the number of displayed rows.
func (m Model) RowCount() int {
	return len(m.cells)
}

// ColumnCount returns the number of displayed columns.
func (m Model) ColumnCount() int {
	return len(m.headers)
}

// Cell returns the display text at row r, column c.
func (m Model) Cell(r, c int) string {
	return m.getCellValueAt(r, c)
}

// Rows returns the displayed cell text.
func (m Model) Rows() [][]string {
	return m.cells
}

// StatusMessage returns the last action feedback.
func (m Model) StatusMessage() string {
	return m.statusMessage
}

func (m *Model) calculateColumnWidths() {
	if len(m.headers) == 0 {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.headers))

	// Use display width (not byte length) for accurate measurement
	for i, col := range m.headers {
		m.colWidths[i] = lipgloss.Width(col)
	}

	for _, row := range m.cells {
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}

	for i := range m.colWidths {
		if m.colWidths[i] < 1 {
			m.colWidths[i] = 1
		}
		if m.colWidths[i] > maxColWidth {
			m.colWidths[i] = maxColWidth
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := len(m.cells)
	switch keyMsg.String() {
	case "up", "k":
		if m.cursorY > 0 {
			m.cursorY--
		}
	case "down", "j":
		if m.cursorY < rows-1 {
			m.cursorY++
		}
	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.cursorX < len(m.headers)-1 {
			m.cursorX++
		}
	case "pgup":
		m.cursorY -= m.visibleRows()
		if m.cursorY < 0 {
			m.cursorY = 0
		}
	case "pgdown":
		m.cursorY += m.visibleRows()
		if m.cursorY > rows-1 {
			m.cursorY = rows - 1
		}
		if m.cursorY < 0 {
			m.cursorY = 0
		}
	case "home", "g":
		m.cursorY = 0
	case "end", "G":
		m.cursorY = max(0, rows-1)
	case "c":
		m.doCopyCell()
	case "y":
		m.doCopyRowCSV()
	case "e":
		return m, m.exportCSVCmd()
	case "J":
		return m, m.exportJSONCmd()
	}

	m.keepCursorVisible()
	return m, nil
}

func (m Model) visibleRows() int {
	v := m.height - 4
	if v < 1 {
		v = 1
	}
	return v
}

func (m *Model) keepCursorVisible() {
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if m.cursorY >= m.scrollY+m.visibleRows() {
		m.scrollY = m.cursorY - m.visibleRows() + 1
	}
	if m.cursorX < m.colOffset {
		m.colOffset = m.cursorX
	}
	for m.colOffset < m.cursorX && m.spanWidth(m.colOffset, m.cursorX) > m.width-2 {
		m.colOffset++
	}
}

// spanWidth is the rendered width of columns from..to inclusive.
func (m Model) spanWidth(from, to int) int {
	w := 2
	for i := from; i <= to && i < len(m.colWidths); i++ {
		w += m.colWidths[i] + 3
	}
	return w
}

// View renders the results pane.
func (m Model) View() string {
	titleStyle := theme.StylePaneTitle

	title := "Results"
	if m.title != "" {
		title += ": " + m.title
	}

	if m.loading {
		return titleStyle.Render(title) + "\n" + theme.StyleMuted.Render("  Executing query...")
	}

	if !m.shown {
		return titleStyle.Render(title) + "\n" +
			theme.StyleMuted.Render("  Pick a query or a table to see results")
	}

	stats := fmt.Sprintf("%d row(s) × %d column(s) | %s",
		len(m.cells),
		len(m.headers),
		m.duration.Round(time.Millisecond).String(),
	)
	if m.statusMessage != "" {
		stats += " | " + m.statusMessage
	}
	header := titleStyle.Render(title) + "  " + theme.StyleMuted.Render(stats)

	if len(m.headers) == 0 {
		return header + "\n" + theme.StyleSuccess.Render("  Query executed successfully")
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	b.WriteString(m.renderRow(m.headers, -1))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	visible := m.visibleRows()
	for i := m.scrollY; i < len(m.cells) && i < m.scrollY+visible; i++ {
		b.WriteString(m.renderRow(m.cells[i], i))
		if i < m.scrollY+visible-1 && i < len(m.cells)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// lastVisibleColumn returns the exclusive end of the columns that fit the pane.
func (m Model) lastVisibleColumn() int {
	used := 2
	end := m.colOffset
	for i := m.colOffset; i < len(m.colWidths); i++ {
		if m.width > 0 && end > m.colOffset && used+m.colWidths[i] > m.width {
			break
		}
		used += m.colWidths[i] + 3
		end = i + 1
	}
	return end
}

// renderRow draws one line; rowIdx is -1 for the header.
func (m Model) renderRow(cells []string, rowIdx int) string {
	end := m.lastVisibleColumn()
	parts := make([]string, 0, end-m.colOffset)
	for i := m.colOffset; i < end && i < len(cells); i++ {
		width := m.colWidths[i]

		display := truncate(cells[i], width)
		if pad := width - lipgloss.Width(display); pad > 0 {
			display += strings.Repeat(" ", pad)
		}

		switch {
		case rowIdx < 0:
			display = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case m.focused && rowIdx == m.cursorY && i == m.cursorX:
			display = lipgloss.NewStyle().Reverse(true).Render(display)
		case cells[i] == NullText:
			display = theme.StyleMuted.Render(display)
		}
		parts = append(parts, display)
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	end := m.lastVisibleColumn()
	parts := make([]string, 0, end-m.colOffset)
	for i := m.colOffset; i < end; i++ {
		parts = append(parts, strings.Repeat("─", m.colWidths[i]))
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}

// truncate trims s to width display cells, ending with an ellipsis when cut.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) >= width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
