package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

// PromptDoneMsg carries every collected value, in parameter order.
type PromptDoneMsg struct {
	Tag    string
	Values []any
}

// PromptCancelledMsg is sent when the user dismisses a prompt or leaves a
// required value blank.
type PromptCancelledMsg struct {
	Tag string
}

// Prompt asks for a list of parameters one at a time.
type Prompt struct {
	tag    string
	title  string
	params []catalog.Param
	values []any
	idx    int
	input  textinput.Model
	err    string
	active bool
	width  int
}

// NewPrompt starts a prompt sequence. tag is echoed back in the result messages.
func NewPrompt(tag, title string, params []catalog.Param) Prompt {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40
	ti.Prompt = "› "
	ti.Focus()

	p := Prompt{
		tag:    tag,
		title:  title,
		params: params,
		values: make([]any, 0, len(params)),
		input:  ti,
		active: len(params) > 0,
	}
	p.prepare()
	return p
}

// Active reports whether the prompt is waiting for input.
func (p Prompt) Active() bool {
	return p.active
}

// Tag returns the tag the prompt was started with.
func (p Prompt) Tag() string {
	return p.tag
}

// Current returns the parameter being asked for.
func (p Prompt) Current() (catalog.Param, bool) {
	if p.idx < 0 || p.idx >= len(p.params) {
		return catalog.Param{}, false
	}
	return p.params[p.idx], true
}

// Err returns the last validation error shown under the input.
func (p Prompt) Err() string {
	return p.err
}

// SetWidth limits the dialog width.
func (p *Prompt) SetWidth(w int) {
	p.width = w
	if w > 10 {
		p.input.Width = min(40, w-10)
	}
}

func (p *Prompt) prepare() {
	p.input.Reset()
	p.err = ""
	if cur, ok := p.Current(); ok {
		p.input.Placeholder = cur.Kind.String()
	}
}

// Init returns the cursor blink command.
func (p Prompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input for the active prompt.
func (p Prompt) Update(msg tea.Msg) (Prompt, tea.Cmd) {
	if !p.active {
		return p, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return p.cancel()
		case "enter":
			return p.submit()
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Prompt) submit() (Prompt, tea.Cmd) {
	cur, ok := p.Current()
	if !ok {
		return p, nil
	}

	v, err := cur.Parse(p.input.Value())
	if err != nil {
		p.err = err.Error()
		return p, nil
	}
	if cur.Blank(v) {
		return p.cancel()
	}

	p.values = append(p.values, v)
	p.idx++
	if p.idx < len(p.params) {
		p.prepare()
		return p, nil
	}

	p.active = false
	tag, values := p.tag, p.values
	return p, func() tea.Msg {
		return PromptDoneMsg{Tag: tag, Values: values}
	}
}

func (p Prompt) cancel() (Prompt, tea.Cmd) {
	p.active = false
	tag := p.tag
	return p, func() tea.Msg {
		return PromptCancelledMsg{Tag: tag}
	}
}

// View renders the prompt dialog.
func (p Prompt) View() string {
	cur, ok := p.Current()
	if !p.active || !ok {
		return ""
	}

	title := cur.Title
	if title == "" {
		title = p.title
	}

	lines := []string{
		theme.StyleTitle.Render(title),
		"",
		cur.Label + ":",
		p.input.View(),
	}
	if p.err != "" {
		lines = append(lines, theme.StyleError.Render(p.err))
	}
	step := ""
	if len(p.params) > 1 {
		step = fmt.Sprintf("%d/%d  ", p.idx+1, len(p.params))
	}
	lines = append(lines, "", theme.StyleMuted.Render(step+"Enter: OK │ Esc: Cancel"))

	return theme.Dialog(theme.ColorPrimary).Render(strings.Join(lines, "\n"))
}
