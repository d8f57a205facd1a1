package app

import (
	"errors"
	"fmt"

	"github.com/joacominatel/stockq/internal/database"
)

var (
	// ErrNotConnected is returned when an operation needs a session and none is open.
	ErrNotConnected = errors.New("no database connection")
	// ErrUnknownTable is returned when a table name did not come from the catalog listing.
	ErrUnknownTable = errors.New("table is not in the catalog listing")
)

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrQuery represents a query execution error.
type ErrQuery struct {
	Query string
	Cause error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *ErrQuery) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text shown to the user. It peels off this program's own
// layers (ErrConnection, ErrQuery, ErrConfig and driver step tags) and stops at the
// first error that came from elsewhere, so the driver's message is kept whole.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotConnected) || errors.Is(err, ErrUnknownTable) {
		return err.Error()
	}
	for {
		var next error
		switch e := err.(type) {
		case *ErrConnection:
			next = e.Cause
		case *ErrQuery:
			next = e.Cause
		case *ErrConfig:
			next = e.Cause
		case *database.OpError:
			next = e.Err
		}
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
