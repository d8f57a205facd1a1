package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/joacominatel/stockq/internal/config"
	"github.com/joacominatel/stockq/internal/database"
)

func TestConnectReplacesPreviousSession(t *testing.T) {
	first := &fakeDriver{}
	second := &fakeDriver{}
	svc := NewService(opener(first, second), nil)
	ctx := context.Background()

	if err := svc.Connect(ctx, config.NewTrusted("srv", "one")); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !strings.Contains(first.dsn, "database=one") {
		t.Fatalf("expected trusted dsn, got %q", first.dsn)
	}

	if err := svc.Connect(ctx, config.NewTrusted("srv", "two")); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if first.closed != 1 {
		t.Fatalf("previous session should be closed once, closed %d", first.closed)
	}
	if svc.Profile().Database != "two" {
		t.Fatalf("expected new profile, got %+v", svc.Profile())
	}
}

func TestConnectFailureKeepsPreviousSession(t *testing.T) {
	first := &fakeDriver{tables: []string{"Поставщики"}}
	broken := &fakeDriver{connectErr: errors.New("Login failed for user")}
	svc := NewService(opener(first, broken), nil)
	ctx := context.Background()

	if err := svc.Connect(ctx, config.NewTrusted("srv", "one")); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := svc.LoadTables(ctx); err != nil {
		t.Fatalf("load tables: %v", err)
	}

	err := svc.Connect(ctx, config.NewTrusted("other", "two"))
	var connErr *ErrConnection
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if UserMessage(err) != "Login failed for user" {
		t.Fatalf("driver text not preserved: %q", UserMessage(err))
	}

	if !svc.Connected() || first.closed != 0 {
		t.Fatalf("previous session must stay open")
	}
	if svc.Profile().Database != "one" || len(svc.Tables()) != 1 {
		t.Fatalf("previous state mutated: %+v %v", svc.Profile(), svc.Tables())
	}
}

func TestConnectRejectsInvalidProfile(t *testing.T) {
	svc := NewService(opener(), nil)
	err := svc.Connect(context.Background(), config.NewTrusted("", "db"))
	var cfgErr *ErrConfig
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	drv := &fakeDriver{}
	svc := NewService(opener(drv), nil)

	if err := svc.Disconnect(); err != nil {
		t.Fatalf("disconnect without session: %v", err)
	}
	if err := svc.Connect(context.Background(), config.NewTrusted("srv", "db")); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := svc.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := svc.Disconnect(); err != nil {
		t.Fatalf("second disconnect: %v", err)
	}
	if drv.closed != 1 || svc.Connected() {
		t.Fatalf("expected exactly one close, got %d", drv.closed)
	}
}

func TestBrowseTableOnlyFromListing(t *testing.T) {
	drv := &fakeDriver{tables: []string{"Поставщики", "Склады"}}
	svc := NewService(opener(drv), nil)
	ctx := context.Background()

	if _, err := svc.BrowseTable(ctx, "Поставщики"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := svc.Connect(ctx, config.NewTrusted("srv", "db")); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := svc.BrowseTable(ctx, "Поставщики"); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("tables not loaded yet, expected ErrUnknownTable, got %v", err)
	}

	tables, err := svc.LoadTables(ctx)
	if err != nil || len(tables) != 2 {
		t.Fatalf("load tables: %v %v", tables, err)
	}

	if _, err := svc.BrowseTable(ctx, "Поставщики; DROP TABLE Склады"); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
	if _, err := svc.BrowseTable(ctx, "Склады"); err != nil {
		t.Fatalf("browse: %v", err)
	}
	last := drv.queries[len(drv.queries)-1]
	if last.SQL != "SELECT * FROM [Склады]" {
		t.Fatalf("unexpected browse SQL %q", last.SQL)
	}
}

func TestUserMessage(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}
	dialErr := fmt.Errorf("unable to open tcp connection with host '127.0.0.1:1433': %w", refused)
	objErr := errors.New("Invalid object name 'Материалы'.")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not connected", ErrNotConnected, "no database connection"},
		{"unknown table", fmt.Errorf("%w: %q", ErrUnknownTable, "x"), `table is not in the catalog listing: "x"`},
		{"query keeps driver text", &ErrQuery{Query: "q", Cause: database.Wrap("execute", objErr)}, objErr.Error()},
		{"wrapped driver error is not unwrapped", &ErrConnection{Cause: database.Wrap("ping", dialErr)}, dialErr.Error()},
		{"statement step", &ErrQuery{Cause: database.Wrap("statement 3", objErr)}, objErr.Error()},
		{"config", &ErrConfig{Cause: errors.New("server is required")}, "server is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Fatalf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}

	if !strings.Contains(UserMessage(&ErrConnection{Cause: database.Wrap("ping", dialErr)}), "connection refused") {
		t.Fatalf("inner network cause lost")
	}
}
