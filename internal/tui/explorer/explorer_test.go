package explorer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestEnterBrowsesSelectedTable(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTables("Supplies", []string{"Материалы", "Поставщики", "Склады"})

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("j"))
	_, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("enter produced no command")
	}
	msg, ok := cmd().(BrowseTableMsg)
	if !ok || msg.Table != "Склады" {
		t.Fatalf("got %#v, want browse of Склады", msg)
	}
}

func TestEnterOnEmptyListDoesNothing(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTables("Supplies", nil)
	if _, cmd := m.Update(key("enter")); cmd != nil {
		t.Fatalf("expected no command for empty list")
	}
	if !strings.Contains(m.View(), "no base tables") {
		t.Fatalf("empty list not reported")
	}
}

func TestResetClampsCursor(t *testing.T) {
	m := New()
	m.SetFocused(true)
	m.SetTables("a", []string{"x", "y", "z"})
	m, _ = m.Update(key("G"))
	m.SetTables("a", []string{"x"})
	if table, _ := m.SelectedTable(); table != "x" {
		t.Fatalf("cursor not clamped, selected %q", table)
	}
	m.Reset()
	if _, ok := m.SelectedTable(); ok {
		t.Fatalf("reset list still has a selection")
	}
	if !strings.Contains(m.View(), "No connection") {
		t.Fatalf("reset view should show no connection")
	}
}
