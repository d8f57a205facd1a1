package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/joacominatel/stockq/internal/database"
)

// Driver implements the database.Driver interface for PostgreSQL.
type Driver struct {
	pool   *pgxpool.Pool
	dbName string
}

// New creates a new PostgreSQL driver.
func New() *Driver {
	return &Driver{}
}

// Connect opens a single-connection pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return database.Wrap("parse dsn", err)
	}

	cfg.MaxConns = 1
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return database.Wrap("connect", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return database.Wrap("ping", err)
	}

	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return fmt.Errorf("not connected")
	}
	return d.pool.Ping(ctx)
}

// ListTables returns the base tables of the current schema.
func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	rows, err := d.pool.Query(ctx, queryListTables)
	if err != nil {
		return nil, database.Wrap("list tables", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, database.Wrap("scan table", err)
	}
	return tables, nil
}

// Query runs a SQL query and returns every row.
func (d *Driver) Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error) {
	if d.pool == nil {
		return nil, fmt.Errorf("not connected")
	}
	start := time.Now()

	rows, err := d.pool.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, database.Wrap("execute", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, database.Wrap("read row", err)
		}
		resultRows = append(resultRows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, database.Wrap("rows", err)
	}

	return &database.ResultSet{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// ExecBatch runs statements in order, optionally inside one transaction.
func (d *Driver) ExecBatch(ctx context.Context, stmts []database.Statement, atomic bool) (int64, error) {
	if d.pool == nil {
		return 0, fmt.Errorf("not connected")
	}

	if !atomic {
		var total int64
		for i, st := range stmts {
			tag, err := d.pool.Exec(ctx, rebind(st.SQL), st.Args...)
			if err != nil {
				return total, database.Wrap(fmt.Sprintf("statement %d", i+1), err)
			}
			total += tag.RowsAffected()
		}
		return total, nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, database.Wrap("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var total int64
	for i, st := range stmts {
		tag, err := tx.Exec(ctx, rebind(st.SQL), st.Args...)
		if err != nil {
			return 0, database.Wrap(fmt.Sprintf("statement %d", i+1), err)
		}
		total += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, database.Wrap("commit", err)
	}
	return total, nil
}

// Dialect returns the PostgreSQL dialect.
func (d *Driver) Dialect() database.Dialect {
	return Dialect{}
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

// Dialect renders PostgreSQL specific SQL.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) QuoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// CallProcedure calls a set-returning function. Arguments are positional; the
// parameter names only document the call.
func (Dialect) CallProcedure(name string, params []string) string {
	marks := make([]string, len(params))
	for i := range marks {
		marks[i] = "?"
	}
	fn := pgx.Identifier(strings.Split(name, ".")).Sanitize()
	return fmt.Sprintf("SELECT * FROM %s(%s)", fn, strings.Join(marks, ", "))
}

func rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}
