package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/joacominatel/stockq/internal/config"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/logger"
)

// Opener returns a fresh, unconnected driver for a driver identifier.
type Opener func(driver string) (database.Driver, error)

// Service owns the single database session of the application.
type Service struct {
	open    Opener
	log     logger.LoggerService
	driver  database.Driver
	profile config.Connection
	tables  []string
}

// NewService creates a new application service.
func NewService(open Opener, log logger.LoggerService) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{open: open, log: log}
}

// Connect opens a new session for conn. The previous session is closed only after
// the new one is established; on failure it stays usable.
func (s *Service) Connect(ctx context.Context, conn config.Connection) error {
	if err := conn.Validate(); err != nil {
		return &ErrConfig{Cause: err}
	}

	drv, err := s.open(conn.DriverName())
	if err != nil {
		return &ErrConfig{Cause: err}
	}

	if err := drv.Connect(ctx, conn.DSN()); err != nil {
		s.log.Error("connect "+conn.DisplayString(), err)
		return &ErrConnection{Cause: err}
	}

	if s.driver != nil {
		if err := s.driver.Close(); err != nil {
			s.log.Error("close previous session", err)
		}
	}

	s.driver = drv
	s.profile = conn
	s.tables = nil
	s.log.Success("connected to " + conn.DisplayString())
	return nil
}

// Disconnect closes the session if one is open.
func (s *Service) Disconnect() error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close()
	s.driver = nil
	s.tables = nil
	s.log.Info("disconnected from " + s.profile.DisplayString())
	return err
}

// Connected reports whether a session is open.
func (s *Service) Connected() bool {
	return s.driver != nil
}

// Profile returns the connection profile of the open session.
func (s *Service) Profile() config.Connection {
	return s.profile
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	if s.driver == nil {
		return ""
	}
	if name := s.driver.DatabaseName(); name != "" {
		return name
	}
	return s.profile.Database
}

// Dialect returns the dialect of the open session.
func (s *Service) Dialect() database.Dialect {
	if s.driver == nil {
		return nil
	}
	return s.driver.Dialect()
}

// LoadTables lists the base tables of the connected database and remembers them
// as the only names BrowseTable accepts.
func (s *Service) LoadTables(ctx context.Context) ([]string, error) {
	if s.driver == nil {
		return nil, ErrNotConnected
	}
	tables, err := s.driver.ListTables(ctx)
	if err != nil {
		return nil, &ErrQuery{Query: "list tables", Cause: err}
	}
	s.tables = tables
	return tables, nil
}

// Tables returns the last loaded table listing.
func (s *Service) Tables() []string {
	return s.tables
}

// BrowseTable selects every row of a table from the catalog listing.
func (s *Service) BrowseTable(ctx context.Context, table string) (*database.ResultSet, error) {
	if s.driver == nil {
		return nil, ErrNotConnected
	}
	if !slices.Contains(s.tables, table) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return s.Query(ctx, "SELECT * FROM "+s.driver.Dialect().QuoteIdent(table))
}

// Query runs a statement and fetches every row.
func (s *Service) Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error) {
	if s.driver == nil {
		return nil, ErrNotConnected
	}
	result, err := s.driver.Query(ctx, query, args...)
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	return result, nil
}

// ExecBatch runs statements in order and commits.
func (s *Service) ExecBatch(ctx context.Context, stmts []database.Statement, atomic bool) (int64, error) {
	if s.driver == nil {
		return 0, ErrNotConnected
	}
	n, err := s.driver.ExecBatch(ctx, stmts, atomic)
	if err != nil {
		q := ""
		if len(stmts) > 0 {
			q = stmts[0].SQL
		}
		return n, &ErrQuery{Query: q, Cause: err}
	}
	return n, nil
}
