package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/stockq/internal/catalog"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func pick(t *testing.T, m Model, msg tea.KeyMsg) *catalog.Template {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("%q produced no command", msg.String())
	}
	run, ok := cmd().(RunTemplateMsg)
	if !ok {
		t.Fatalf("unexpected message %#v", run)
	}
	return run.Template
}

func TestEnterRunsSelectedTemplate(t *testing.T) {
	m := New(catalog.All())
	m.SetFocused(true)
	m, _ = m.Update(runes("j"))

	if got := pick(t, m, tea.KeyMsg{Type: tea.KeyEnter}); got.ID != catalog.All()[1].ID {
		t.Fatalf("ran %q, want %q", got.ID, catalog.All()[1].ID)
	}
}

func TestDigitShortcuts(t *testing.T) {
	m := New(catalog.All())
	m.SetFocused(true)

	all := catalog.All()
	if got := pick(t, m, runes("1")); got.ID != all[0].ID {
		t.Fatalf("1 ran %q", got.ID)
	}
	if got := pick(t, m, runes("0")); got.ID != all[9].ID {
		t.Fatalf("0 ran %q", got.ID)
	}
}

func TestUnfocusedMenuIgnoresKeys(t *testing.T) {
	m := New(catalog.All())
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("unfocused menu ran a template")
	}
}

func TestViewListsEveryTemplate(t *testing.T) {
	m := New(catalog.All())
	m.SetSize(60, 20)
	out := m.View()
	for _, tpl := range catalog.All() {
		if !strings.Contains(out, tpl.Label) {
			t.Fatalf("menu missing %q", tpl.Label)
		}
	}
}
