package dialog

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/stockq/internal/app"
	"github.com/joacominatel/stockq/internal/catalog"
)

var (
	textParam  = catalog.Param{Name: "name", Label: "Material name", NonBlank: true}
	floatParam = catalog.Param{Name: "price", Label: "Maximum price", Kind: catalog.KindFloat}
)

func typeText(p Prompt, s string) Prompt {
	for _, r := range s {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

func enter(p Prompt) (Prompt, tea.Msg) {
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return p, nil
	}
	return p, cmd()
}

func TestPromptCollectsInOrder(t *testing.T) {
	p := NewPrompt("material-by-price", "Material under price", []catalog.Param{textParam, floatParam})

	p = typeText(p, "Кирпич")
	p, msg := enter(p)
	if msg != nil || !p.Active() {
		t.Fatalf("prompt finished after first value")
	}
	if cur, _ := p.Current(); cur.Name != "price" {
		t.Fatalf("second prompt is %q", cur.Name)
	}

	p = typeText(p, "12,5")
	p, msg = enter(p)
	done, ok := msg.(PromptDoneMsg)
	if !ok {
		t.Fatalf("expected PromptDoneMsg, got %#v", msg)
	}
	if done.Tag != "material-by-price" || len(done.Values) != 2 {
		t.Fatalf("unexpected result %#v", done)
	}
	if done.Values[0] != "Кирпич" || done.Values[1] != 12.5 {
		t.Fatalf("values = %#v", done.Values)
	}
	if p.Active() {
		t.Fatalf("prompt still active")
	}
}

func TestPromptInvalidNumberStaysOpen(t *testing.T) {
	p := NewPrompt("x", "x", []catalog.Param{floatParam})
	p = typeText(p, "abc")
	p, msg := enter(p)
	if msg != nil || !p.Active() {
		t.Fatalf("invalid number should keep the prompt open")
	}
	if !strings.Contains(p.Err(), "not a number") || !strings.Contains(p.View(), "not a number") {
		t.Fatalf("validation error not shown: %q", p.Err())
	}
}

func TestPromptEscCancels(t *testing.T) {
	p := NewPrompt("search-supplier", "Find supplier", []catalog.Param{textParam})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("esc produced no command")
	}
	if msg, ok := cmd().(PromptCancelledMsg); !ok || msg.Tag != "search-supplier" {
		t.Fatalf("unexpected message %#v", msg)
	}
	if p.Active() {
		t.Fatalf("prompt still active after esc")
	}
}

func TestPromptBlankRequiredCancels(t *testing.T) {
	p := NewPrompt("avg-price", "Average", []catalog.Param{textParam})
	p = typeText(p, "   ")
	_, msg := enter(p)
	if _, ok := msg.(PromptCancelledMsg); !ok {
		t.Fatalf("blank required value should cancel, got %#v", msg)
	}
}

func TestNoticeShowAndDismiss(t *testing.T) {
	var n Notice
	n.Show(app.Notice{Level: app.LevelWarning, Title: "Integrity violation", Text: "2 row(s)"})
	if !n.Active() || !strings.Contains(n.View(), "Integrity violation") {
		t.Fatalf("notice not shown")
	}

	n, _ = n.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !n.Active() {
		t.Fatalf("other keys must not dismiss")
	}
	n, _ = n.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if n.Active() || n.View() != "" {
		t.Fatalf("enter should dismiss")
	}
}
