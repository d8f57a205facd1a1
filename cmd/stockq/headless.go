package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joacominatel/stockq/internal/app"
	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/config"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/tui/results"
)

// linePrompter reads one parameter per line. End of input cancels.
type linePrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewScanner(in), out: out}
}

func (p *linePrompter) Prompt(param catalog.Param) (any, bool) {
	for {
		fmt.Fprintf(p.out, "%s (%s): ", param.Label, param.Kind)
		if !p.in.Scan() {
			fmt.Fprintln(p.out)
			return nil, false
		}
		v, err := param.Parse(p.in.Text())
		if err != nil {
			fmt.Fprintln(p.out, err)
			continue
		}
		return v, true
	}
}

// tablePresenter prints grids and notices to a writer.
type tablePresenter struct {
	out io.Writer
}

func (p tablePresenter) Display(rs *database.ResultSet) {
	rows := make([][]string, len(rs.Rows))
	for i, row := range rs.Rows {
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = results.FormatValue(v)
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(rs.Columns...).
		Rows(rows...)
	fmt.Fprintln(p.out, t.Render())
	fmt.Fprintf(p.out, "%d row(s)\n", rs.RowCount())
}

func (p tablePresenter) Notify(n app.Notice) {
	fmt.Fprintf(p.out, "[%s] %s: %s\n", strings.ToUpper(n.Level.String()), n.Title, n.Text)
}

func printCatalog(out io.Writer) {
	for _, tpl := range catalog.All() {
		params := make([]string, len(tpl.Params))
		for i, p := range tpl.Params {
			params[i] = p.Label
		}
		line := fmt.Sprintf("%-18s %s", tpl.ID, tpl.Label)
		if len(params) > 0 {
			line += " (" + strings.Join(params, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
}

// runHeadless serves --list, --tables and --run and returns the exit code.
func runHeadless(ctx context.Context, o options, conn *config.Connection, service *app.Service, runner *app.Runner, in io.Reader, out io.Writer) int {
	if o.list {
		printCatalog(out)
		if !o.tables && o.run == "" {
			return 0
		}
	}

	var tpl *catalog.Template
	if o.run != "" {
		t, ok := catalog.Lookup(o.run)
		if !ok {
			fmt.Fprintf(out, "Error: unknown query %q; valid ids: %s\n", o.run, strings.Join(catalog.IDs(), ", "))
			return 2
		}
		tpl = t
	}

	if conn == nil {
		fmt.Fprintln(out, "Error: no connection; use --dsn, --server/--database or --connection")
		return 2
	}
	profile, err := withPassword(*conn)
	if err != nil {
		fmt.Fprintf(out, "Error: %s\n", app.UserMessage(err))
		return 1
	}
	if err := service.Connect(ctx, profile); err != nil {
		fmt.Fprintf(out, "Error: %s\n", app.UserMessage(err))
		return 1
	}

	if o.tables {
		tables, err := service.LoadTables(ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %s\n", app.UserMessage(err))
			return 1
		}
		for _, t := range tables {
			fmt.Fprintln(out, t)
		}
	}

	if tpl == nil {
		return 0
	}

	outcome := runner.Run(ctx, tpl, newLinePrompter(in, out), tablePresenter{out: out})
	if outcome.Cancelled || outcome.Err != nil {
		return 1
	}
	return 0
}
