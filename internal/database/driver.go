package database

import "context"

// Driver defines the interface for database operations.
// A Driver holds at most one open session; callers never use it concurrently.
type Driver interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection. Closing twice is a no-op.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// ListTables returns base table names (views excluded), ordered by name.
	ListTables(ctx context.Context) ([]string, error)

	// Query runs a statement with positional ? placeholders and fetches every row.
	Query(ctx context.Context, query string, args ...any) (*ResultSet, error)

	// ExecBatch runs statements in order and commits. With atomic set they share one
	// transaction; otherwise execution stops at the first failure and earlier
	// statements stay applied.
	ExecBatch(ctx context.Context, stmts []Statement, atomic bool) (int64, error)

	// Dialect returns the SQL flavour spoken by the driver.
	Dialect() Dialect

	// DatabaseName returns the name of the connected database.
	DatabaseName() string
}

// Dialect covers the SQL differences the catalog cares about.
type Dialect interface {
	Name() string

	// QuoteIdent quotes a table name taken from the catalog listing.
	QuoteIdent(name string) string

	// CallProcedure renders a procedure call binding params positionally with ?.
	CallProcedure(name string, params []string) string
}
