package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/joacominatel/stockq/internal/app"
	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/config"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/database/sqlserver"
)

type stubDriver struct {
	queries []database.Statement
	result  *database.ResultSet
}

func (d *stubDriver) Connect(context.Context, string) error { return nil }

func (d *stubDriver) Close() error { return nil }

func (d *stubDriver) Ping(context.Context) error { return nil }

func (d *stubDriver) ListTables(context.Context) ([]string, error) {
	return []string{"Материалы", "Склады"}, nil
}

func (d *stubDriver) Query(_ context.Context, q string, args ...any) (*database.ResultSet, error) {
	d.queries = append(d.queries, database.Statement{SQL: q, Args: args})
	return d.result, nil
}

func (d *stubDriver) ExecBatch(context.Context, []database.Statement, bool) (int64, error) {
	return 0, nil
}

func (d *stubDriver) Dialect() database.Dialect { return sqlserver.Dialect{} }

func (d *stubDriver) DatabaseName() string { return "Supplies" }

func headless(t *testing.T, drv *stubDriver, o options, stdin string) (int, string) {
	t.Helper()
	svc := app.NewService(func(string) (database.Driver, error) { return drv, nil }, nil)
	runner := app.NewRunner(svc, app.RunnerOptions{Timeout: time.Second, Atomic: true}, nil)
	conn := config.NewTrusted("srv", "Supplies")

	var out bytes.Buffer
	code := runHeadless(context.Background(), o, &conn, svc, runner, strings.NewReader(stdin), &out)
	return code, out.String()
}

func TestParseFlagsAndResolve(t *testing.T) {
	o, err := parseFlags([]string{"--server", `DESKTOP-1\SQLEXPRESS`, "--database", "Supplies", "--run", "avg-price"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !o.headless() {
		t.Fatalf("--run should be headless")
	}
	conn, err := resolveConnection(config.Default(), o)
	if err != nil || conn == nil {
		t.Fatalf("resolve: %v", err)
	}
	if !conn.Trusted || conn.DriverName() != config.DriverSQLServer {
		t.Fatalf("expected trusted sql server profile, got %+v", conn)
	}

	if _, err := resolveConnection(config.Default(), options{connection: "missing"}); err == nil {
		t.Fatalf("expected unknown saved connection error")
	}
	if conn, err := resolveConnection(config.Default(), options{}); err != nil || conn != nil {
		t.Fatalf("no flags should leave the choice to the user")
	}
}

func TestOpenDriver(t *testing.T) {
	for _, name := range []string{config.DriverSQLServer, config.DriverPostgres} {
		if _, err := openDriver(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := openDriver("oracle"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestLinePrompterRetriesAndCancelsOnEOF(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("abc\n12,5\n"), &out)
	param := catalog.Param{Label: "Maximum price", Kind: catalog.KindFloat}

	v, ok := p.Prompt(param)
	if !ok || v != 12.5 {
		t.Fatalf("got %v %v, want 12.5", v, ok)
	}
	if !strings.Contains(out.String(), "not a number") {
		t.Fatalf("parse error not reported:\n%s", out.String())
	}
	if _, ok := p.Prompt(param); ok {
		t.Fatalf("EOF should cancel")
	}
}

func TestListPrintsEveryQuery(t *testing.T) {
	code, out := headless(t, &stubDriver{}, options{list: true}, "")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	for _, id := range catalog.IDs() {
		if !strings.Contains(out, id) {
			t.Fatalf("missing %s in:\n%s", id, out)
		}
	}
}

func TestTablesListsBaseTables(t *testing.T) {
	code, out := headless(t, &stubDriver{}, options{tables: true}, "")
	if code != 0 || !strings.Contains(out, "Материалы\nСклады\n") {
		t.Fatalf("code %d, output:\n%s", code, out)
	}
}

func TestRunPrintsGrid(t *testing.T) {
	drv := &stubDriver{result: &database.ResultSet{
		Columns: []string{"Средняя_цена"},
		Rows:    [][]any{{nil}},
	}}
	code, out := headless(t, drv, options{run: "avg-price"}, "Кирпич\n")
	if code != 0 {
		t.Fatalf("exit code %d:\n%s", code, out)
	}
	if !strings.Contains(out, "Средняя_цена") || !strings.Contains(out, "NULL") || !strings.Contains(out, "1 row(s)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if len(drv.queries) != 1 || drv.queries[0].Args[0] != "Кирпич" {
		t.Fatalf("unexpected queries %+v", drv.queries)
	}
}

func TestRunCancelledOnEOF(t *testing.T) {
	drv := &stubDriver{}
	code, out := headless(t, drv, options{run: "search-supplier"}, "")
	if code != 1 || len(drv.queries) != 0 || strings.Contains(out, "[") || strings.Contains(out, "row(s)") {
		t.Fatalf("code %d queries %d output:\n%s", code, len(drv.queries), out)
	}
}

func TestRunUnknownID(t *testing.T) {
	code, out := headless(t, &stubDriver{}, options{run: "drop-everything"}, "")
	if code != 2 || !strings.Contains(out, "sort-suppliers") {
		t.Fatalf("code %d output:\n%s", code, out)
	}
}
