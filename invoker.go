package oraclecall

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignaciocaff/oraclecall/internal/core"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a structured logger. Per-invocation detail goes to
// V(1).
func WithLogger(log logr.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithRegistry shares a pre-built registry between sessions.
func WithRegistry(reg *Registry) Option {
	return func(s *Session) { s.registry = reg }
}

// Session executes registered routines and opens cursors over one database
// handle. Calls are synchronous: every Invoke and every fetch blocks until
// the server answers.
type Session struct {
	db       *sqlx.DB
	registry *Registry
	log      logr.Logger
}

func New(db *sqlx.DB, opts ...Option) *Session {
	s := &Session{db: db, registry: NewRegistry(), log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a routine declaration to the session registry.
func (s *Session) Register(r Routine) error { return s.registry.Register(r) }

// Registry exposes the session registry.
func (s *Session) Registry() *Registry { return s.registry }

// NamedValue pairs an OUT or IN OUT parameter name with the value the
// routine left in it.
type NamedValue struct {
	Name  string
	Value Value
}

// Result carries everything an invocation produced.
type Result struct {
	// Out holds OUT and IN OUT parameter values in declaration order.
	Out []NamedValue
	// Return is the function return value; nil for procedures and for
	// invocations ended by a handled fault.
	Return *Value
	// Cursor is the result cursor delivered through a cursor OUT parameter.
	// Ownership transfers to the caller, who must Close it.
	Cursor *Cursor
	// Diagnostic is set when a declared handler intercepted a fault; the
	// invocation still counts as a success.
	Diagnostic string
}

// OutValue looks up an output parameter by name, case-insensitively.
func (r *Result) OutValue(name string) (Value, bool) {
	for _, nv := range r.Out {
		if strings.EqualFold(nv.Name, name) {
			return nv.Value, true
		}
	}
	return Value{}, false
}

// outBind is the scratch space one OUT or IN OUT scalar binds through.
// Scalars travel as nullable strings; Oracle converts implicitly and
// NUMBER survives without float rounding.
type outBind struct {
	param Parameter
	dest  sql.NullString
}

func (b *outBind) value() (Value, error) {
	if !b.dest.Valid {
		return Null(b.param.Kind), nil
	}
	if b.param.Kind == KindNumeric {
		d, err := decimal.NewFromString(strings.TrimSpace(b.dest.String))
		if err != nil {
			return Value{}, fmt.Errorf("parameter %s: %w", b.param.Name, err)
		}
		return Number(d), nil
	}
	return Text(b.dest.String), nil
}

// Invoke executes a registered routine. The argument list must match the
// declaration position by position in direction and kind; any disagreement
// fails with a MismatchError before the store is touched. OUT and IN OUT
// parameters come back on the Result, functions additionally return one
// value, and a cursor OUT parameter hands its cursor to the caller.
func (s *Session) Invoke(ctx context.Context, name string, args ...Argument) (*Result, error) {
	routine, ok := s.registry.lookup(name)
	if !ok {
		return nil, &NotFoundError{Routine: name}
	}
	if err := matchArguments(routine, args); err != nil {
		return nil, err
	}

	var (
		execArgs = make([]interface{}, 0, len(args)+1)
		outs     []*outBind
		retBind  *outBind
		cursor   *core.CursorBind
	)
	if routine.Kind == Function {
		retBind = &outBind{param: Parameter{Name: "RETURN", Direction: DirOut, Kind: *routine.Returns}}
		execArgs = append(execArgs, sql.Out{Dest: &retBind.dest})
	}
	for i, p := range routine.Params {
		switch {
		case p.Kind == KindCursor:
			cursor = core.NewCursorBind(s.db.DriverName())
			execArgs = append(execArgs, cursor.Dest())
		case p.Direction == DirIn:
			execArgs = append(execArgs, inputValue(args[i].Value))
		default:
			b := &outBind{param: p}
			if p.Direction == DirInOut {
				b.dest = nullStringOf(args[i].Value)
			}
			execArgs = append(execArgs, sql.Out{Dest: &b.dest, In: p.Direction == DirInOut})
			outs = append(outs, b)
		}
	}

	callText := core.BuildCallText(normalizeName(routine.Name), len(routine.Params), routine.Kind == Function)
	s.log.V(1).Info("invoking routine", "routine", routine.Name, "call", callText)

	if _, err := s.db.ExecContext(ctx, callText, execArgs...); err != nil {
		if cursor != nil {
			// A failed block never hands the cursor to the caller; whatever
			// the driver left in the bind is released here.
			cursor.Release()
		}
		fault := &Fault{Kind: classify(err), Op: routine.Name, Err: err}
		handler, handled := routine.Handlers[fault.Kind]
		if !handled {
			return nil, fault
		}
		// A declared handler turns the fault into a success with a
		// diagnostic. Work done before the fault point stays done, so
		// output slots keep whatever the body managed to write.
		diag := handler(err)
		s.log.V(1).Info("fault intercepted",
			"routine", routine.Name, "kind", fault.Kind.String(), "diagnostic", diag)
		res := &Result{Diagnostic: diag}
		for _, b := range outs {
			v, convErr := b.value()
			if convErr != nil {
				v = Null(b.param.Kind)
			}
			res.Out = append(res.Out, NamedValue{Name: b.param.Name, Value: v})
		}
		return res, nil
	}

	res := &Result{}
	if cursor != nil {
		src, err := cursor.Rows()
		if err != nil {
			return nil, &Fault{Kind: classify(err), Op: routine.Name, Err: err}
		}
		if src != nil {
			res.Cursor = newCursor(src, s.log)
		}
	}
	// abort releases the cursor when the invocation fails after the body
	// already ran; the cursor never reaches the caller on an error return.
	abort := func(f *Fault) (*Result, error) {
		if res.Cursor != nil {
			_ = res.Cursor.Close()
		}
		return nil, f
	}
	for _, b := range outs {
		v, err := b.value()
		if err != nil {
			return abort(&Fault{Kind: FaultExecution, Op: routine.Name, Err: err})
		}
		res.Out = append(res.Out, NamedValue{Name: b.param.Name, Value: v})
	}
	if retBind != nil {
		v, err := retBind.value()
		if err != nil {
			return abort(&Fault{Kind: FaultExecution, Op: routine.Name, Err: err})
		}
		res.Return = &v
	}
	return res, nil
}

// matchArguments enforces the declared arity, directions and kinds. It runs
// before any store access.
func matchArguments(r Routine, args []Argument) error {
	if len(args) != len(r.Params) {
		return &MismatchError{
			Routine: r.Name,
			Reason:  fmt.Sprintf("call has %d arguments, declaration has %d", len(args), len(r.Params)),
		}
	}
	for i, p := range r.Params {
		a := args[i]
		if a.Direction != p.Direction {
			return &MismatchError{
				Routine:  r.Name,
				Position: i + 1,
				Reason:   fmt.Sprintf("argument direction is %s, declared %s", a.Direction, p.Direction),
			}
		}
		if a.Value.Kind() != p.Kind {
			return &MismatchError{
				Routine:  r.Name,
				Position: i + 1,
				Reason:   fmt.Sprintf("argument kind is %s, declared %s", a.Value.Kind(), p.Kind),
			}
		}
	}
	return nil
}

func inputValue(v Value) interface{} {
	if v.IsNull() {
		return nil
	}
	return v.String()
}

func nullStringOf(v Value) sql.NullString {
	if v.IsNull() {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}
