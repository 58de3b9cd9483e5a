package oraclecall

import (
	"errors"
	"fmt"

	"github.com/ignaciocaff/oraclecall/internal/core"
)

// FaultKind classifies how a routine invocation or cursor operation failed.
type FaultKind int

const (
	// FaultExecution is the catch-all for unclassified server failures.
	FaultExecution FaultKind = iota
	// FaultDivisionByZero maps ORA-01476.
	FaultDivisionByZero
	// FaultInvalidCursor covers server cursor faults (ORA-01001, ORA-01002,
	// ORA-06511) and client-side fetches on an exhausted or closed cursor.
	FaultInvalidCursor
)

func (k FaultKind) String() string {
	switch k {
	case FaultDivisionByZero:
		return "division by zero"
	case FaultInvalidCursor:
		return "invalid cursor state"
	case FaultExecution:
		return "execution error"
	}
	return fmt.Sprintf("FaultKind(%d)", int(k))
}

// EndOfData signals cursor exhaustion. It is a sentinel, not a fault: the
// fetch loop polls for it the way a PL/SQL loop polls %NOTFOUND.
var EndOfData = errors.New("oraclecall: end of data")

// NotFoundError reports an invocation, expression call or Invokes reference
// naming an unregistered routine.
type NotFoundError struct {
	Routine string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("oraclecall: routine %s is not registered", e.Routine)
}

// MismatchError reports a call argument list disagreeing with the routine
// declaration. It is raised before any store access.
type MismatchError struct {
	Routine  string
	Position int // 1-based; 0 when the mismatch is not positional
	Reason   string
}

func (e *MismatchError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("oraclecall: %s parameter %d: %s", e.Routine, e.Position, e.Reason)
	}
	return fmt.Sprintf("oraclecall: %s: %s", e.Routine, e.Reason)
}

// Fault wraps a failure raised while executing a routine body or driving a
// cursor.
type Fault struct {
	Kind FaultKind
	Op   string // routine name or cursor operation
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("oraclecall: %s: %s: %v", f.Op, f.Kind, f.Err)
	}
	return fmt.Sprintf("oraclecall: %s: %s", f.Op, f.Kind)
}

func (f *Fault) Unwrap() error { return f.Err }

// KindOf classifies an error, returning FaultExecution for anything not
// recognized.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return classify(err)
}

// classify maps a server error code onto the fault taxonomy.
func classify(err error) FaultKind {
	code, ok := core.OracleCode(err)
	if !ok {
		return FaultExecution
	}
	switch code {
	case 1476:
		return FaultDivisionByZero
	case 1001, 1002, 6511:
		return FaultInvalidCursor
	}
	return FaultExecution
}
