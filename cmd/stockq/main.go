package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joacominatel/stockq/internal/app"
	"github.com/joacominatel/stockq/internal/config"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/database/postgres"
	"github.com/joacominatel/stockq/internal/database/sqlserver"
	"github.com/joacominatel/stockq/internal/logger"
	"github.com/joacominatel/stockq/internal/secrets"
	"github.com/joacominatel/stockq/internal/tui"
)

type options struct {
	dsn        string
	server     string
	database   string
	driver     string
	user       string
	port       int
	connection string
	list       bool
	tables     bool
	run        string
	debug      bool
}

func (o options) headless() bool {
	return o.list || o.tables || o.run != ""
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("stockq", flag.ContinueOnError)
	fs.StringVar(&o.dsn, "dsn", "", `Connection string (odbc:server=...;database=... or postgresql://...)`)
	fs.StringVar(&o.server, "server", "", `Database server (e.g. DESKTOP-1\SQLEXPRESS)`)
	fs.StringVar(&o.database, "database", "", "Database name")
	fs.StringVar(&o.driver, "driver", "", "Driver: sqlserver (default) or postgres")
	fs.StringVar(&o.user, "user", "", "User name; without it the operating-system identity is used")
	fs.IntVar(&o.port, "port", 0, "Server port")
	fs.StringVar(&o.connection, "connection", "", "Name of a saved connection")
	fs.BoolVar(&o.list, "list", false, "List the available queries and exit")
	fs.BoolVar(&o.tables, "tables", false, "List the base tables and exit")
	fs.StringVar(&o.run, "run", "", "Run one query by id, prompting for parameters on stdin")
	fs.BoolVar(&o.debug, "debug", false, "Mirror the log to stderr")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// resolveConnection picks the profile from flags: --dsn, then --server/--database,
// then --connection. nil means the user chooses interactively.
func resolveConnection(cfg *config.Config, o options) (*config.Connection, error) {
	switch {
	case o.dsn != "":
		conn, err := config.ParseDSN(o.dsn)
		if err != nil {
			return nil, err
		}
		return &conn, nil

	case o.server != "" || o.database != "":
		conn := config.NewTrusted(o.server, o.database)
		if o.driver != "" {
			conn.Driver = strings.ToLower(o.driver)
		}
		conn.Port = o.port
		if o.user != "" {
			conn.Trusted = false
			conn.Username = o.user
		}
		if err := conn.Validate(); err != nil {
			return nil, err
		}
		return &conn, nil

	case o.connection != "":
		conn, ok := cfg.FindConnection(o.connection)
		if !ok {
			return nil, fmt.Errorf("no saved connection named %q", o.connection)
		}
		return &conn, nil
	}
	return nil, nil
}

// withPassword fills the password of an explicit-credential profile from the keyring.
func withPassword(conn config.Connection) (config.Connection, error) {
	if conn.Trusted || conn.Password != "" {
		return conn, nil
	}
	pw, err := secrets.Get(conn.Name)
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return conn, err
	}
	conn.Password = pw
	return conn, nil
}

func openDriver(name string) (database.Driver, error) {
	switch name {
	case config.DriverSQLServer:
		return sqlserver.New(), nil
	case config.DriverPostgres:
		return postgres.New(), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %q", name)
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}
	if opts.debug {
		cfg.Preferences.Debug = true
	}

	logSvc := logger.NewWriter(os.Stderr)
	if dir, err := config.Dir(); err == nil {
		if l, err := logger.New(dir, cfg.Preferences.Debug); err == nil {
			logSvc = l
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to open log: %v\n", err)
		}
	}
	defer logSvc.Close()

	initial, err := resolveConnection(cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Set up dependencies
	service := app.NewService(openDriver, logSvc)
	runner := app.NewRunner(service, app.RunnerOptions{
		Timeout: cfg.Preferences.QueryTimeout,
		Atomic:  cfg.Preferences.AtomicMutations,
	}, logSvc)

	if opts.headless() {
		code := runHeadless(context.Background(), opts, initial, service, runner, os.Stdin, os.Stdout)
		_ = service.Disconnect()
		logSvc.Close()
		os.Exit(code)
	}

	model := tui.NewModel(tui.Options{
		Service: service,
		Runner:  runner,
		Config:  cfg,
		Logger:  logSvc,
		Initial: initial,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	// Graceful cleanup
	if err := service.Disconnect(); err != nil {
		logSvc.Error("disconnect", err)
	}
}
