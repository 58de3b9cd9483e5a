package oraclecall

import (
	"errors"
	"fmt"
)

// Direction tags how a routine parameter travels.
type Direction int

const (
	DirIn Direction = iota
	DirOut
	DirInOut
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "IN"
	case DirOut:
		return "OUT"
	case DirInOut:
		return "IN OUT"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Parameter declares one positional routine parameter.
type Parameter struct {
	Name      string
	Direction Direction
	Kind      ScalarKind
}

// RoutineKind separates procedures (no return value) from functions
// (exactly one).
type RoutineKind int

const (
	Procedure RoutineKind = iota
	Function
)

func (k RoutineKind) String() string {
	if k == Function {
		return "function"
	}
	return "procedure"
}

// HandlerFunc intercepts a fault raised inside a routine body, mirroring a
// local EXCEPTION handler. The returned string becomes the invocation's
// diagnostic message.
type HandlerFunc func(err error) string

// Routine declares a server-side callable unit.
type Routine struct {
	Name   string
	Kind   RoutineKind
	Params []Parameter

	// Returns is the function return kind; nil for procedures.
	Returns *ScalarKind

	// Invokes lists the names of registered routines the body calls. It is
	// checked at registration time: a function must not call a procedure,
	// since functions are expression-callable.
	Invokes []string

	// Handlers map fault kinds to local handlers. A handled fault ends the
	// invocation in success with a diagnostic instead of an error; work
	// performed before the fault point is not unwound.
	Handlers map[FaultKind]HandlerFunc
}

func (r Routine) validate() error {
	if r.Name == "" {
		return errors.New("oraclecall: routine has no name")
	}
	switch r.Kind {
	case Procedure:
		if r.Returns != nil {
			return fmt.Errorf("oraclecall: procedure %s cannot declare a return value", r.Name)
		}
	case Function:
		if r.Returns == nil {
			return fmt.Errorf("oraclecall: function %s must declare exactly one return value", r.Name)
		}
		if *r.Returns == KindCursor {
			return fmt.Errorf("oraclecall: function %s must pass a cursor through an OUT parameter, not the return value", r.Name)
		}
	default:
		return fmt.Errorf("oraclecall: routine %s has unknown kind %d", r.Name, int(r.Kind))
	}

	cursors := 0
	for i, p := range r.Params {
		if p.Name == "" {
			return fmt.Errorf("oraclecall: parameter %d of %s has no name", i+1, r.Name)
		}
		if p.Kind == KindCursor {
			cursors++
			if p.Direction != DirOut {
				return fmt.Errorf("oraclecall: cursor parameter %s of %s must be OUT", p.Name, r.Name)
			}
		}
	}
	if cursors > 1 {
		return fmt.Errorf("oraclecall: %s declares %d cursor parameters, at most one is supported", r.Name, cursors)
	}
	return nil
}
