package catalog

import (
	"fmt"
	"strings"

	"github.com/joacominatel/stockq/internal/database"
	"github.com/samber/lo"
)

// Shape selects how a template is executed and presented.
type Shape int

const (
	ShapeSelect Shape = iota
	ShapeMutation
	ShapeIntegrity
	ShapeProcedure
)

func (s Shape) String() string {
	switch s {
	case ShapeSelect:
		return "select"
	case ShapeMutation:
		return "mutation"
	case ShapeIntegrity:
		return "integrity"
	case ShapeProcedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// Binding maps a statement placeholder to a template parameter, by index.
type Binding []int

// Step is one SQL statement of a template.
type Step struct {
	SQL  string
	Bind Binding
}

// Template is an immutable, named query with its parameters and result policy.
type Template struct {
	ID         string
	Label      string
	Shape      Shape
	Params     []Param
	Steps      []Step
	Procedure  string
	ErrorTitle string

	// Success renders the message shown after a mutation or an empty integrity check.
	Success func(args []any) string
	// Violation renders the warning shown when an integrity check returns rows.
	Violation func(args []any, rows int) string
}

// Statements binds args into the template's SQL for the given dialect.
func (t *Template) Statements(d database.Dialect, args []any) ([]database.Statement, error) {
	if len(args) != len(t.Params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", t.ID, len(t.Params), len(args))
	}

	if t.Shape == ShapeProcedure {
		names := lo.Map(t.Params, func(p Param, _ int) string { return p.Name })
		return []database.Statement{{SQL: d.CallProcedure(t.Procedure, names), Args: args}}, nil
	}

	stmts := make([]database.Statement, 0, len(t.Steps))
	for _, st := range t.Steps {
		bound := make([]any, len(st.Bind))
		for i, idx := range st.Bind {
			bound[i] = args[idx]
		}
		stmts = append(stmts, database.Statement{SQL: st.SQL, Args: bound})
	}
	return stmts, nil
}

// All returns every template in menu order.
func All() []*Template {
	return templates
}

// Lookup finds a template by id.
func Lookup(id string) (*Template, bool) {
	return lo.Find(templates, func(t *Template) bool { return t.ID == id })
}

// IDs lists the template ids in menu order.
func IDs() []string {
	return lo.Map(templates, func(t *Template, _ int) string { return t.ID })
}

// placeholders counts ? marks outside string literals.
func placeholders(sql string) int {
	n := 0
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			inString = !inString
		case '?':
			if !inString {
				n++
			}
		}
	}
	return n
}

// Compact folds a statement onto one line for logs and status text.
func Compact(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
