package sqlserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joacominatel/stockq/internal/database"
	_ "github.com/microsoft/go-mssqldb"
)

const driverName = "sqlserver"

// Driver implements the database.Driver interface for SQL Server.
type Driver struct {
	db     *sqlx.DB
	dbName string
}

// New creates a new SQL Server driver.
func New() *Driver {
	return &Driver{}
}

// Connect opens a single-connection handle and pings it.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return database.Wrap("open", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return database.Wrap("ping", err)
	}

	var name string
	if err := db.GetContext(ctx, &name, queryDatabaseName); err != nil {
		_ = db.Close()
		return database.Wrap("database name", err)
	}

	d.db = db
	d.dbName = name
	return nil
}

// Close closes the connection handle.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return fmt.Errorf("not connected")
	}
	return d.db.PingContext(ctx)
}

// ListTables returns every base table visible in the database.
func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	tables := make([]string, 0)
	if err := d.db.SelectContext(ctx, &tables, queryListTables); err != nil {
		return nil, database.Wrap("list tables", err)
	}
	return tables, nil
}

// Query runs a SQL query and returns the first result set that has columns.
func (d *Driver) Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error) {
	if d.db == nil {
		return nil, fmt.Errorf("not connected")
	}
	start := time.Now()

	rows, err := d.db.QueryxContext(ctx, rebind(query), args...)
	if err != nil {
		return nil, database.Wrap("execute", err)
	}
	defer rows.Close()

	rs, err := collectRecordset(rows)
	if err != nil {
		return nil, err
	}
	rs.Duration = time.Since(start)
	return rs, nil
}

// collectRecordset skips leading row-count only results, which procedures emit
// when NOCOUNT is off.
func collectRecordset(rows *sqlx.Rows) (*database.ResultSet, error) {
	for {
		cols, err := rows.Columns()
		if err != nil {
			return nil, database.Wrap("columns", err)
		}

		resultRows := make([][]any, 0)
		for rows.Next() {
			values, err := rows.SliceScan()
			if err != nil {
				return nil, database.Wrap("read row", err)
			}
			resultRows = append(resultRows, values)
		}
		if err := rows.Err(); err != nil {
			return nil, database.Wrap("rows", err)
		}

		if len(cols) > 0 || !rows.NextResultSet() {
			return &database.ResultSet{Columns: cols, Rows: resultRows}, nil
		}
	}
}

// ExecBatch runs statements in order, optionally inside one transaction.
func (d *Driver) ExecBatch(ctx context.Context, stmts []database.Statement, atomic bool) (int64, error) {
	if d.db == nil {
		return 0, fmt.Errorf("not connected")
	}

	if !atomic {
		var total int64
		for i, st := range stmts {
			res, err := d.db.ExecContext(ctx, rebind(st.SQL), st.Args...)
			if err != nil {
				return total, database.Wrap(fmt.Sprintf("statement %d", i+1), err)
			}
			if n, err := res.RowsAffected(); err == nil {
				total += n
			}
		}
		return total, nil
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, database.Wrap("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for i, st := range stmts {
		res, err := tx.ExecContext(ctx, rebind(st.SQL), st.Args...)
		if err != nil {
			return 0, database.Wrap(fmt.Sprintf("statement %d", i+1), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, database.Wrap("commit", err)
	}
	return total, nil
}

// Dialect returns the T-SQL dialect.
func (d *Driver) Dialect() database.Dialect {
	return Dialect{}
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

// Dialect renders T-SQL.
type Dialect struct{}

func (Dialect) Name() string { return "sqlserver" }

func (Dialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// CallProcedure binds every parameter by name: EXEC p @a = ?, @b = ?.
func (Dialect) CallProcedure(name string, params []string) string {
	if len(params) == 0 {
		return "EXEC " + name
	}
	binds := make([]string, len(params))
	for i, p := range params {
		binds[i] = "@" + strings.TrimPrefix(p, "@") + " = ?"
	}
	return "EXEC " + name + " " + strings.Join(binds, ", ")
}

func rebind(query string) string {
	return sqlx.Rebind(sqlx.AT, query)
}
