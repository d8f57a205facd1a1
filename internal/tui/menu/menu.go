package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

// RunTemplateMsg is sent when the user picks a query from the menu.
type RunTemplateMsg struct {
	Template *catalog.Template
}

// Model is the fixed query menu.
type Model struct {
	items   []*catalog.Template
	cursor  int
	width   int
	height  int
	focused bool
}

// New creates a menu over the catalog templates.
func New(items []*catalog.Template) Model {
	return Model{items: items}
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

// Focused returns whether the menu has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Selected returns the template under the cursor.
func (m Model) Selected() *catalog.Template {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu. Digits 1-9 and 0 pick an entry directly.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := keyMsg.String(); k {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(0, len(m.items)-1)
	case "enter":
		return m, m.run()
	default:
		if idx, ok := shortcut(k); ok && idx < len(m.items) {
			m.cursor = idx
			return m, m.run()
		}
	}
	return m, nil
}

func (m Model) run() tea.Cmd {
	tpl := m.Selected()
	if tpl == nil {
		return nil
	}
	return func() tea.Msg {
		return RunTemplateMsg{Template: tpl}
	}
}

// shortcut maps "1".."9" to 0..8 and "0" to 9.
func shortcut(k string) (int, bool) {
	if len(k) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(k)
	if err != nil {
		return 0, false
	}
	if n == 0 {
		return 9, true
	}
	return n - 1, true
}

func shortcutLabel(i int) string {
	switch {
	case i < 9:
		return strconv.Itoa(i + 1)
	case i == 9:
		return "0"
	default:
		return " "
	}
}

// View renders the menu.
func (m Model) View() string {
	titleStyle := theme.StylePaneTitle

	var b strings.Builder
	b.WriteString(titleStyle.Render("Queries"))

	visible := m.height - 2
	if visible < 1 {
		visible = 1
	}
	offset := 0
	if m.cursor >= visible {
		offset = m.cursor - visible + 1
	}

	for i := offset; i < len(m.items) && i < offset+visible; i++ {
		tpl := m.items[i]
		line := fmt.Sprintf("  %s  %s", shortcutLabel(i), tpl.Label)
		if tpl.Shape != catalog.ShapeSelect {
			line += " " + theme.StyleMuted.Render("("+tpl.Shape.String()+")")
		}
		if i == m.cursor && m.focused {
			line = theme.StyleSelected.Render(fmt.Sprintf("> %s  %s", shortcutLabel(i), tpl.Label))
		}
		b.WriteString("\n")
		b.WriteString(line)
	}

	return b.String()
}
