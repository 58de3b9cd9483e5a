package oraclecall

import (
	"github.com/ignaciocaff/oraclecall/internal/core"
)

// Register adds a routine declaration to the default session configured by
// Configure.
func Register(r Routine) error {
	return mustDefault().Register(r)
}

// Invoke executes a registered routine on the default session using the
// configured application context.
func Invoke(name string, args ...Argument) (*Result, error) {
	return mustDefault().Invoke(core.GetContext(), name, args...)
}

// OpenCursor opens a cursor over a query on the default session. The caller
// owns the cursor and must Close it.
func OpenCursor(query string, args ...interface{}) (*Cursor, error) {
	return mustDefault().OpenCursor(core.GetContext(), query, args...)
}

// Query drives fn over every row of the query on the default session,
// releasing the cursor on every exit path.
func Query(query string, args []interface{}, fn func(Row) error) error {
	return mustDefault().Query(core.GetContext(), query, args, fn)
}
