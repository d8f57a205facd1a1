package app

import (
	"context"
	"errors"

	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/database/sqlserver"
)

// fakeDriver records every statement it is asked to run.
type fakeDriver struct {
	connectErr error
	queryErr   error
	execErr    error
	failAt     int

	connected bool
	closed    int
	dsn       string
	tables    []string
	result    *database.ResultSet

	queries []database.Statement
	execs   []database.Statement
	atomic  []bool
	commits int
}

func (f *fakeDriver) Connect(_ context.Context, dsn string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	f.dsn = dsn
	return nil
}

func (f *fakeDriver) Close() error {
	if f.connected {
		f.closed++
	}
	f.connected = false
	return nil
}

func (f *fakeDriver) Ping(context.Context) error { return nil }

func (f *fakeDriver) ListTables(context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeDriver) Query(_ context.Context, query string, args ...any) (*database.ResultSet, error) {
	f.queries = append(f.queries, database.Statement{SQL: query, Args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.result == nil {
		return &database.ResultSet{Columns: []string{}, Rows: [][]any{}}, nil
	}
	return f.result, nil
}

func (f *fakeDriver) ExecBatch(_ context.Context, stmts []database.Statement, atomic bool) (int64, error) {
	f.atomic = append(f.atomic, atomic)
	for i, st := range stmts {
		f.execs = append(f.execs, st)
		if f.execErr != nil && i+1 == f.failAt {
			return 0, f.execErr
		}
	}
	f.commits++
	return 0, nil
}

func (f *fakeDriver) Dialect() database.Dialect { return sqlserver.Dialect{} }

func (f *fakeDriver) DatabaseName() string { return "Supplies" }

func (f *fakeDriver) statements() int {
	return len(f.queries) + len(f.execs)
}

// opener hands out the given drivers in order.
func opener(drivers ...*fakeDriver) Opener {
	i := 0
	return func(string) (database.Driver, error) {
		if i >= len(drivers) {
			return nil, errors.New("no more drivers")
		}
		d := drivers[i]
		i++
		return d, nil
	}
}

// scriptedPrompter answers prompts from a list; a nil entry cancels.
type scriptedPrompter struct {
	answers []any
	asked   []catalog.Param
}

func (p *scriptedPrompter) Prompt(param catalog.Param) (any, bool) {
	p.asked = append(p.asked, param)
	if len(p.answers) == 0 {
		return nil, false
	}
	v := p.answers[0]
	p.answers = p.answers[1:]
	if v == nil {
		return nil, false
	}
	return v, true
}

type recordingPresenter struct {
	displays []*database.ResultSet
	notices  []Notice
}

func (p *recordingPresenter) Display(rs *database.ResultSet) {
	p.displays = append(p.displays, rs)
}

func (p *recordingPresenter) Notify(n Notice) {
	p.notices = append(p.notices, n)
}

func (p *recordingPresenter) calls() int {
	return len(p.displays) + len(p.notices)
}
