package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joacominatel/stockq/internal/app"
	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/config"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/logger"
	"github.com/joacominatel/stockq/internal/secrets"
	"github.com/joacominatel/stockq/internal/tui/dialog"
	"github.com/joacominatel/stockq/internal/tui/explorer"
	"github.com/joacominatel/stockq/internal/tui/menu"
	"github.com/joacominatel/stockq/internal/tui/results"
	"github.com/joacominatel/stockq/internal/tui/statusbar"
	"github.com/joacominatel/stockq/internal/tui/theme"
)

const (
	connectTimeout = 15 * time.Second
	connectTag     = "connect"
)

// Pane identifies a focusable area.
type Pane int

const (
	PaneTables Pane = iota
	PaneMenu
	PaneResults
)

func (p Pane) String() string {
	switch p {
	case PaneTables:
		return "tables"
	case PaneMenu:
		return "queries"
	case PaneResults:
		return "results"
	default:
		return "unknown"
	}
}

// AppMode tracks the current UI state.
type AppMode int

const (
	ModeSelectConnection AppMode = iota // show saved connections list
	ModeConnect                         // server and database prompts
	ModeMain                            // main TUI
)

var connectParams = []catalog.Param{
	{Name: "server", Title: "Connect", Label: "Server", NonBlank: true},
	{Name: "database", Title: "Connect", Label: "Database", NonBlank: true},
}

// Custom messages for async operations.
type (
	connectedMsg struct {
		conn     config.Connection
		database string
		err      error
	}
	tablesLoadedMsg struct {
		tables []string
		err    error
	}
	executedMsg struct {
		out app.Outcome
	}
	browsedMsg struct {
		table  string
		result *database.ResultSet
		err    error
	}
	connectionSavedMsg struct {
		err error
	}
)

// Options wires the model to the application core.
type Options struct {
	Service *app.Service
	Runner  *app.Runner
	Config  *config.Config
	Logger  logger.LoggerService
	// Initial connects immediately when set (from command-line flags).
	Initial *config.Connection
}

// Model is the top-level bubbletea model orchestrating all components.
type Model struct {
	service    *app.Service
	runner     *app.Runner
	cfg        *config.Config
	log        logger.LoggerService
	explorer   explorer.Model
	menu       menu.Model
	results    results.Model
	statusbar  statusbar.Model
	prompt     dialog.Prompt
	notice     dialog.Notice
	activePane Pane
	mode       AppMode
	width      int
	height     int
	err        error
	showHelp   bool
	initial    *config.Connection

	// Connection selection
	connCursor int

	// Session state as last reported by a finished command. The service itself
	// is only touched from commands while busy.
	connected bool
	dbName    string

	// One database round trip at a time
	busy    bool
	pending *catalog.Template
}

// presenter routes runner output into the grid and the notice box.
type presenter struct {
	m *Model
}

func (p presenter) Display(rs *database.ResultSet) {
	p.m.results.Display(rs)
}

func (p presenter) Notify(n app.Notice) {
	p.m.notice.Show(n)
}

// NewModel creates the top-level model.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	// Decide initial mode
	mode := ModeConnect
	if opts.Initial == nil && len(cfg.Connections) > 0 {
		mode = ModeSelectConnection
	}

	m := Model{
		service:    opts.Service,
		runner:     opts.Runner,
		cfg:        cfg,
		log:        log,
		explorer:   explorer.New(),
		menu:       menu.New(catalog.All()),
		results:    results.New(),
		statusbar:  statusbar.New(),
		activePane: PaneTables,
		mode:       mode,
		initial:    opts.Initial,
	}
	if mode == ModeConnect && opts.Initial == nil {
		m.prompt = dialog.NewPrompt(connectTag, "Connect", connectParams)
	}
	if def := config.DefaultConnection(cfg); def != nil {
		for i := range cfg.Connections {
			if cfg.Connections[i].Name == def.Name {
				m.connCursor = i
			}
		}
	}
	m.setFocus(PaneTables)

	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	// If a connection was provided via flags, connect immediately
	if m.initial != nil {
		return m.connectCmd(*m.initial)
	}
	if m.prompt.Active() {
		return m.prompt.Init()
	}
	return nil
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		// Global keys
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.notice.Active() {
			m.notice, _ = m.notice.Update(msg)
			return m, nil
		}
		if m.prompt.Active() {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}

		// Help toggle
		if msg.String() == "?" && m.mode == ModeMain {
			m.showHelp = !m.showHelp
			return m, nil
		}

		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		// Mode-specific key handling
		switch m.mode {
		case ModeSelectConnection:
			return m.updateSelectConnection(msg)
		case ModeConnect:
			return m.updateConnect(msg)
		case ModeMain:
			return m.updateMain(msg)
		}

	case connectedMsg:
		if msg.err != nil {
			m.setBusy(false)
			m.err = msg.err
			m.statusbar.SetMessage("Connection failed")
			if m.mode == ModeConnect {
				m.prompt = dialog.NewPrompt(connectTag, "Connect", connectParams)
				return m, m.prompt.Init()
			}
			return m, nil
		}
		// Stays busy until the table listing arrives.
		m.setBusy(true)
		m.connected = true
		m.dbName = msg.database
		m.mode = ModeMain
		m.err = nil
		m.results.Clear()
		m.explorer.Reset()
		m.explorer.SetLoading(true)
		m.statusbar.SetConnected(true, msg.conn.Name+" ("+m.dbName+")")
		m.statusbar.SetMessage("")
		m.setFocus(PaneTables)
		m.layout()

		// Save connection in background
		return m, tea.Batch(m.loadTablesCmd(), m.saveConnectionCmd(msg.conn))

	case connectionSavedMsg:
		if msg.err != nil {
			m.log.Error("save connection", msg.err)
			m.statusbar.SetMessage("Warning: could not save connection")
		}
		return m, nil

	case tablesLoadedMsg:
		m.setBusy(false)
		m.explorer.SetLoading(false)
		if msg.err != nil {
			m.notice.Show(app.Notice{Level: app.LevelError, Title: "Could not load tables", Text: app.UserMessage(msg.err)})
			return m, nil
		}
		m.explorer.SetTables(m.dbName, msg.tables)
		return m, nil

	case dialog.PromptDoneMsg:
		if msg.Tag == connectTag {
			conn := config.NewTrusted(fmt.Sprint(msg.Values[0]), fmt.Sprint(msg.Values[1]))
			cmd := m.connectCmd(conn)
			return m, cmd
		}
		if m.pending != nil && m.pending.ID == msg.Tag {
			tpl := m.pending
			m.pending = nil
			cmd := m.executeCmd(tpl, msg.Values)
			return m, cmd
		}
		return m, nil

	case dialog.PromptCancelledMsg:
		if msg.Tag == connectTag {
			if len(m.cfg.Connections) > 0 {
				m.mode = ModeSelectConnection
				return m, nil
			}
			if m.connected {
				m.mode = ModeMain
				return m, nil
			}
			return m, tea.Quit
		}
		m.pending = nil
		return m, nil

	case menu.RunTemplateMsg:
		return m.startTemplate(msg.Template)

	case explorer.BrowseTableMsg:
		if m.busy {
			return m, nil
		}
		cmd := m.browseCmd(msg.Table)
		return m, cmd

	case executedMsg:
		m.setBusy(false)
		m.results.SetLoading(false)
		if msg.out.Result != nil {
			m.results.SetTitle(msg.out.Template.Label)
		}
		app.Present(msg.out, presenter{m: &m})
		m.statusbar.SetMessage(statusFor(msg.out))
		return m, nil

	case browsedMsg:
		m.setBusy(false)
		m.results.SetLoading(false)
		if msg.err != nil {
			m.notice.Show(app.Notice{Level: app.LevelError, Title: "Query error", Text: app.UserMessage(msg.err)})
			return m, nil
		}
		m.results.SetTitle(msg.table)
		m.results.Display(msg.result)
		m.setFocus(PaneResults)
		return m, nil

	case results.StatusNotifyMsg:
		m.statusbar.SetMessage(msg.Message)
		return m, nil
	}

	if m.prompt.Active() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	// Pass through to active component
	if m.mode == ModeMain {
		return m.updateComponents(msg)
	}

	return m, nil
}

func statusFor(out app.Outcome) string {
	switch {
	case out.Err != nil:
		return out.Template.Label + " failed"
	case out.Result != nil:
		return fmt.Sprintf("%s: %d row(s) in %s", out.Template.Label, out.Result.RowCount(), out.Duration.Round(time.Millisecond))
	default:
		return out.Template.Label + " done"
	}
}

// startTemplate prompts for parameters first, if any, then executes.
func (m Model) startTemplate(tpl *catalog.Template) (tea.Model, tea.Cmd) {
	if tpl == nil || m.busy {
		return m, nil
	}
	if len(tpl.Params) == 0 {
		cmd := m.executeCmd(tpl, nil)
		return m, cmd
	}
	m.pending = tpl
	m.prompt = dialog.NewPrompt(tpl.ID, tpl.Label, tpl.Params)
	m.prompt.SetWidth(m.width)
	return m, m.prompt.Init()
}

func (m Model) updateSelectConnection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	connCount := len(m.cfg.Connections)

	switch msg.String() {
	case "up", "k":
		if m.connCursor > 0 {
			m.connCursor--
		}
	case "down", "j":
		if m.connCursor < connCount { // connCount = last item is "New connection"
			m.connCursor++
		}
	case "enter":
		if m.connCursor < connCount {
			// Selected a saved connection
			conn := m.cfg.Connections[m.connCursor]
			m.statusbar.SetMessage("Connecting to " + conn.Name + "...")
			cmd := m.connectCmd(conn)
			return m, cmd
		}
		// "New connection" selected
		return m.openConnectForm()
	case "n":
		return m.openConnectForm()
	case "esc":
		if m.connected {
			m.mode = ModeMain
		}
	case "q":
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) openConnectForm() (tea.Model, tea.Cmd) {
	m.mode = ModeConnect
	m.err = nil
	m.prompt = dialog.NewPrompt(connectTag, "Connect", connectParams)
	m.prompt.SetWidth(m.width)
	return m, m.prompt.Init()
}

func (m Model) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The form is a prompt; once it is closed only quitting is left.
	if msg.String() == "q" && !m.busy {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.cyclePane()
		return m, nil
	case "shift+tab":
		m.cyclePaneBack()
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "d":
		if m.connected {
			if err := m.service.Disconnect(); err != nil {
				m.log.Error("disconnect", err)
			}
			m.connected = false
			m.dbName = ""
			m.explorer.Reset()
			m.results.Clear()
			m.statusbar.SetConnected(false, "")
			m.statusbar.SetMessage("Disconnected")
		}
		return m, nil
	case "r":
		// The current session stays open until a new one is established.
		m.mode = ModeSelectConnection
		m.err = nil
		if len(m.cfg.Connections) == 0 {
			return m.openConnectForm()
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.activePane {
	case PaneTables:
		m.explorer, cmd = m.explorer.Update(msg)
	case PaneMenu:
		m.menu, cmd = m.menu.Update(msg)
	case PaneResults:
		m.results, cmd = m.results.Update(msg)
	}

	return m, cmd
}

func (m *Model) cyclePane() {
	switch m.activePane {
	case PaneTables:
		m.setFocus(PaneMenu)
	case PaneMenu:
		m.setFocus(PaneResults)
	case PaneResults:
		m.setFocus(PaneTables)
	}
}

func (m *Model) cyclePaneBack() {
	switch m.activePane {
	case PaneTables:
		m.setFocus(PaneResults)
	case PaneMenu:
		m.setFocus(PaneTables)
	case PaneResults:
		m.setFocus(PaneMenu)
	}
}

func (m *Model) setFocus(pane Pane) {
	m.activePane = pane
	m.explorer.SetFocused(pane == PaneTables)
	m.menu.SetFocused(pane == PaneMenu)
	m.results.SetFocused(pane == PaneResults)
	m.statusbar.SetActivePane(pane.String())
}

func (m *Model) setBusy(b bool) {
	m.busy = b
	m.statusbar.SetBusy(b)
}

// paneSizes splits the screen: tables on the left, menu above results on the right.
func (m Model) paneSizes() (leftWidth, rightWidth, menuHeight, resultsHeight int) {
	leftWidth = m.width / 4
	if leftWidth < 22 {
		leftWidth = 22
	}
	if leftWidth > 35 {
		leftWidth = 35
	}
	rightWidth = m.width - leftWidth - 1

	availHeight := m.height - 1 - 2
	menuHeight = len(catalog.All()) + 1
	if menuHeight > availHeight/2 {
		menuHeight = availHeight / 2
	}
	resultsHeight = availHeight - menuHeight - 2
	return leftWidth, rightWidth, menuHeight, resultsHeight
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	leftWidth, rightWidth, menuHeight, resultsHeight := m.paneSizes()

	m.explorer.SetSize(leftWidth, m.height-3)
	m.menu.SetSize(rightWidth, menuHeight)
	m.results.SetSize(rightWidth-2, resultsHeight)
	m.statusbar.SetWidth(m.width)
	m.prompt.SetWidth(m.width)
	m.notice.SetWidth(m.width)
}

// Async commands

func (m *Model) connectCmd(conn config.Connection) tea.Cmd {
	m.setBusy(true)
	service := m.service
	return func() tea.Msg {
		if !conn.Trusted && conn.Password == "" {
			pw, err := secrets.Get(conn.Name)
			if err != nil && !errors.Is(err, secrets.ErrNotFound) {
				return connectedMsg{conn: conn, err: err}
			}
			conn.Password = pw
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := service.Connect(ctx, conn); err != nil {
			return connectedMsg{conn: conn, err: err}
		}
		return connectedMsg{conn: conn, database: service.DatabaseName()}
	}
}

func (m Model) saveConnectionCmd(conn config.Connection) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		if !conn.Trusted && conn.Password != "" {
			if err := secrets.Set(conn.Name, conn.Password); err != nil {
				return connectionSavedMsg{err: err}
			}
		}
		err := config.SaveConnection(cfg, conn)
		return connectionSavedMsg{err: err}
	}
}

func (m Model) loadTablesCmd() tea.Cmd {
	service := m.service
	timeout := m.cfg.Preferences.QueryTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tables, err := service.LoadTables(ctx)
		return tablesLoadedMsg{tables: tables, err: err}
	}
}

func (m *Model) executeCmd(tpl *catalog.Template, args []any) tea.Cmd {
	m.setBusy(true)
	m.results.SetLoading(true)
	m.statusbar.SetMessage("Running " + tpl.Label + "...")
	runner := m.runner
	return func() tea.Msg {
		return executedMsg{out: runner.Execute(context.Background(), tpl, args)}
	}
}

func (m *Model) browseCmd(table string) tea.Cmd {
	m.setBusy(true)
	m.results.SetLoading(true)
	service := m.service
	timeout := m.cfg.Preferences.QueryTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rs, err := service.BrowseTable(ctx, table)
		return browsedMsg{table: table, result: rs, err: err}
	}
}

// View renders the entire application.
func (m Model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}

	var base string
	switch m.mode {
	case ModeSelectConnection:
		base = m.viewSelectConnection()
	case ModeConnect:
		base = m.viewConnect()
	default:
		base = m.viewMain()
	}

	switch {
	case m.notice.Active():
		return m.overlay(m.notice.View())
	case m.prompt.Active() && m.mode == ModeMain:
		return m.overlay(m.prompt.View())
	}
	return base
}

// overlay centers a dialog on screen.
func (m Model) overlay(box string) string {
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

func (m Model) header() []string {
	return []string{
		"",
		theme.StyleTitle.Padding(1, 0).Render("stockq"),
		theme.StyleMuted.Render("Suppliers, materials and warehouses."),
		"",
	}
}

func (m Model) errorLine() string {
	if m.err == nil {
		return ""
	}
	return "\n" + theme.StyleError.Render("  Error: "+app.UserMessage(m.err))
}

func (m Model) viewSelectConnection() string {
	sectionTitle := theme.StyleTitle.Render("Saved Connections")

	var items []string
	for i, conn := range m.cfg.Connections {
		label := fmt.Sprintf("  %s (%s)", conn.Name, conn.DisplayString())
		if i == m.connCursor {
			label = theme.StyleSelected.Render("> " + conn.Name + " (" + conn.DisplayString() + ")")
		}
		items = append(items, label)
	}

	// "New connection" option
	newLabel := "  [New Connection]"
	if m.connCursor == len(m.cfg.Connections) {
		newLabel = theme.StyleSelected.Render("> [New Connection]")
	}
	items = append(items, "", newLabel)

	hintText := "  ↑/↓: Navigate  Enter: Connect  n: New  q: Quit"
	if m.connected {
		hintText += "  Esc: Back"
	}
	if m.busy {
		hintText = "  Connecting..."
	}

	parts := append(m.header(), sectionTitle)
	parts = append(parts, items...)
	if e := m.errorLine(); e != "" {
		parts = append(parts, e)
	}
	parts = append(parts, "", theme.StyleMuted.Render(hintText))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (m Model) viewConnect() string {
	parts := m.header()
	switch {
	case m.busy:
		parts = append(parts, theme.StyleMuted.Render("  Connecting..."))
	case m.prompt.Active():
		parts = append(parts, m.prompt.View())
	default:
		parts = append(parts, theme.StyleMuted.Render("  q: Quit"))
	}
	if e := m.errorLine(); e != "" {
		parts = append(parts, e)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

func (m Model) viewMain() string {
	leftWidth, rightWidth, menuHeight, resultsHeight := m.paneSizes()
	availHeight := m.height - 1 - 2

	border := func(p Pane) lipgloss.Style {
		return theme.Pane(m.activePane == p)
	}

	tablesView := border(PaneTables).
		Width(leftWidth - 2).
		Height(availHeight).
		Render(m.explorer.View())

	menuView := border(PaneMenu).
		Width(rightWidth - 2).
		Height(menuHeight).
		Render(m.menu.View())

	resultsView := border(PaneResults).
		Width(rightWidth - 2).
		Height(resultsHeight).
		Render(m.results.View())

	rightPane := lipgloss.JoinVertical(lipgloss.Left,
		menuView,
		resultsView,
	)

	mainArea := lipgloss.JoinHorizontal(lipgloss.Top,
		tablesView,
		rightPane,
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		mainArea,
		m.statusbar.View(),
	)
}

func (m Model) viewHelp() string {
	titleStyle := theme.StyleTitle
	sectionStyle := theme.StyleSelected

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	descStyle := lipgloss.NewStyle().
		Foreground(theme.ColorMuted)

	row := func(k, d string) string {
		return keyStyle.Render(fmt.Sprintf("  %-14s", k)) + descStyle.Render(d)
	}

	help := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("stockq - Keyboard Shortcuts"),
		"",
		sectionStyle.Render("Global"),
		row("q / Ctrl+C", "Quit application"),
		row("Tab", "Switch between panes"),
		row("Shift+Tab", "Switch panes (reverse)"),
		row("d", "Disconnect"),
		row("r", "Connect to another database"),
		row("?", "Toggle this help"),
		"",
		sectionStyle.Render("Tables"),
		row("↑/k  ↓/j", "Navigate up/down"),
		row("Enter/→/l", "Show every row of the table"),
		"",
		sectionStyle.Render("Queries"),
		row("↑/k  ↓/j", "Navigate up/down"),
		row("Enter", "Run the selected query"),
		row("1-9, 0", "Run query by number"),
		row("Esc", "Cancel a parameter prompt"),
		"",
		sectionStyle.Render("Results"),
		row("↑/k  ↓/j", "Move between rows"),
		row("←/h  →/l", "Move between columns"),
		row("PgUp/PgDn", "Page up/down"),
		row("c", "Copy cell"),
		row("y", "Copy row as CSV"),
		row("e / J", "Export CSV / JSON"),
		"",
		theme.StyleMuted.Render("Press any key to close"),
	)

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		help,
	)
}
