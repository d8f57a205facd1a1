package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joacominatel/stockq/internal/catalog"
	"github.com/joacominatel/stockq/internal/database"
	"github.com/joacominatel/stockq/internal/logger"
)

// Session is the part of Service the runner executes against.
type Session interface {
	Connected() bool
	Dialect() database.Dialect
	Query(ctx context.Context, query string, args ...any) (*database.ResultSet, error)
	ExecBatch(ctx context.Context, stmts []database.Statement, atomic bool) (int64, error)
}

// Prompter asks the user for one parameter value. ok is false when the prompt was cancelled.
type Prompter interface {
	Prompt(p catalog.Param) (value any, ok bool)
}

// Presenter shows the outcome of an execution.
type Presenter interface {
	Display(rs *database.ResultSet)
	Notify(n Notice)
}

// Level classifies a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a user-facing message.
type Notice struct {
	Level Level
	Title string
	Text  string
}

// Outcome is everything one template execution produced.
type Outcome struct {
	RunID     string
	Template  *catalog.Template
	Result    *database.ResultSet
	Notice    *Notice
	Cancelled bool
	Err       error
	Duration  time.Duration
}

// RunnerOptions tune execution.
type RunnerOptions struct {
	Timeout time.Duration
	// Atomic wraps multi-statement mutations in one transaction.
	Atomic bool
}

// Runner interprets catalog templates against a session.
type Runner struct {
	session Session
	opts    RunnerOptions
	log     logger.LoggerService
}

// NewRunner creates a runner.
func NewRunner(session Session, opts RunnerOptions, log logger.LoggerService) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{session: session, opts: opts, log: log}
}

// Collect prompts for every parameter in declaration order. It returns false as
// soon as a prompt is cancelled or a non-blank parameter is left blank.
func (r *Runner) Collect(tpl *catalog.Template, prompter Prompter) ([]any, bool) {
	args := make([]any, 0, len(tpl.Params))
	for _, p := range tpl.Params {
		v, ok := prompter.Prompt(p)
		if !ok || p.Blank(v) {
			return nil, false
		}
		args = append(args, v)
	}
	return args, true
}

// Run collects parameters, executes the template and presents the outcome.
// A cancelled run executes nothing and presents nothing.
func (r *Runner) Run(ctx context.Context, tpl *catalog.Template, prompter Prompter, presenter Presenter) Outcome {
	args, ok := r.Collect(tpl, prompter)
	if !ok {
		r.log.Info("run cancelled: " + tpl.ID)
		return Outcome{Template: tpl, Cancelled: true}
	}
	out := r.Execute(ctx, tpl, args)
	Present(out, presenter)
	return out
}

// Execute runs a template with already collected arguments.
func (r *Runner) Execute(ctx context.Context, tpl *catalog.Template, args []any) Outcome {
	out := Outcome{RunID: uuid.NewString(), Template: tpl}
	start := time.Now()

	if !r.session.Connected() {
		out.Err = ErrNotConnected
		out.Notice = &Notice{Level: LevelError, Title: "Connection error", Text: "No database connection. Connect first."}
		r.log.Warn(fmt.Sprintf("run %s %s: not connected", out.RunID, tpl.ID))
		return out
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	stmts, err := tpl.Statements(r.session.Dialect(), args)
	if err == nil {
		r.log.Info(fmt.Sprintf("run %s %s: %d statement(s)", out.RunID, tpl.ID, len(stmts)))
		err = r.execute(ctx, tpl, stmts, args, &out)
	}
	out.Duration = time.Since(start)

	if err != nil {
		out.Err = err
		out.Result = nil
		out.Notice = &Notice{Level: LevelError, Title: tpl.ErrorTitle, Text: UserMessage(err)}
		r.log.Error(fmt.Sprintf("run %s %s", out.RunID, tpl.ID), err)
		return out
	}

	r.log.Success(fmt.Sprintf("run %s %s in %s", out.RunID, tpl.ID, out.Duration.Round(time.Millisecond)))
	return out
}

func (r *Runner) execute(ctx context.Context, tpl *catalog.Template, stmts []database.Statement, args []any, out *Outcome) error {
	switch tpl.Shape {
	case catalog.ShapeMutation:
		if _, err := r.session.ExecBatch(ctx, stmts, r.opts.Atomic); err != nil {
			return err
		}
		out.Notice = &Notice{Level: LevelInfo, Title: "Success", Text: successText(tpl, args)}
		return nil

	case catalog.ShapeIntegrity:
		rs, err := r.query(ctx, stmts)
		if err != nil {
			return err
		}
		if rs.Empty() {
			out.Notice = &Notice{Level: LevelInfo, Title: tpl.Label, Text: successText(tpl, args)}
			return nil
		}
		out.Result = rs
		text := fmt.Sprintf("%d row(s) violate the check.", rs.RowCount())
		if tpl.Violation != nil {
			text = tpl.Violation(args, rs.RowCount())
		}
		out.Notice = &Notice{Level: LevelWarning, Title: "Integrity violation", Text: text}
		return nil

	default:
		rs, err := r.query(ctx, stmts)
		if err != nil {
			return err
		}
		out.Result = rs
		return nil
	}
}

// query runs a single-statement template.
func (r *Runner) query(ctx context.Context, stmts []database.Statement) (*database.ResultSet, error) {
	if len(stmts) != 1 {
		return nil, errors.New("select templates must have exactly one statement")
	}
	rs, err := r.session.Query(ctx, stmts[0].SQL, stmts[0].Args...)
	if err != nil {
		return nil, err
	}
	if err := rs.Check(); err != nil {
		return nil, err
	}
	return rs, nil
}

func successText(tpl *catalog.Template, args []any) string {
	if tpl.Success != nil {
		return tpl.Success(args)
	}
	return tpl.Label + " completed."
}

// Present hands an outcome to a presenter: the grid first, then the notice.
func Present(out Outcome, p Presenter) {
	if out.Cancelled {
		return
	}
	if out.Result != nil {
		p.Display(out.Result)
	}
	if out.Notice != nil {
		p.Notify(*out.Notice)
	}
}
