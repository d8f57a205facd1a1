package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the scalar type a parameter prompt collects.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	default:
		return "unknown"
	}
}

// Param describes one positional parameter of a template.
type Param struct {
	Name  string
	Title string
	Label string
	Kind  Kind
	// NonBlank aborts the run when the user submits only whitespace.
	NonBlank bool
}

// Parse converts prompt input into the bound value: string, int64 or float64.
func (p Param) Parse(input string) (any, error) {
	switch p.Kind {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", p.Label, input)
		}
		return n, nil
	case KindFloat:
		s := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", p.Label, input)
		}
		return f, nil
	default:
		return input, nil
	}
}

// Blank reports whether v should cancel a NonBlank parameter.
func (p Param) Blank(v any) bool {
	if !p.NonBlank {
		return false
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
