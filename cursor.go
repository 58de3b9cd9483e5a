package oraclecall

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/shopspring/decimal"

	"github.com/ignaciocaff/oraclecall/internal/core"
)

// CursorState tracks the cursor lifecycle. Transitions are one-way:
// open to exhausted, and either of those to closed.
type CursorState int

const (
	CursorOpen CursorState = iota
	CursorExhausted
	CursorClosed
)

func (s CursorState) String() string {
	switch s {
	case CursorOpen:
		return "OPEN"
	case CursorExhausted:
		return "EXHAUSTED"
	case CursorClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("CursorState(%d)", int(s))
}

// Row is one fixed-width result row. Fields keep the projection order of
// the originating query.
type Row struct {
	cols []string
	vals []driver.Value
}

func (r Row) Len() int { return len(r.vals) }

// Columns returns the projection column names in store order.
func (r Row) Columns() []string { return r.cols }

// Value returns the raw driver value at position i.
func (r Row) Value(i int) driver.Value { return r.vals[i] }

// IsNull reports whether field i is NULL.
func (r Row) IsNull(i int) bool { return r.vals[i] == nil }

// Decimal converts field i to a decimal, accepting the numeric shapes the
// supported drivers produce: int64, float64 and string-backed NUMBERs.
func (r Row) Decimal(i int) (decimal.Decimal, error) {
	switch v := r.vals[i].(type) {
	case nil:
		return decimal.Decimal{}, fmt.Errorf("oraclecall: column %s is NULL", r.cols[i])
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	case []byte:
		return decimal.NewFromString(string(v))
	default:
		if s, ok := r.vals[i].(fmt.Stringer); ok {
			return decimal.NewFromString(s.String())
		}
		return decimal.Decimal{}, fmt.Errorf("oraclecall: column %s holds %T, not a number", r.cols[i], v)
	}
}

// Text converts field i to a string.
func (r Row) Text(i int) (string, error) {
	switch v := r.vals[i].(type) {
	case nil:
		return "", fmt.Errorf("oraclecall: column %s is NULL", r.cols[i])
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Cursor is a uni-directional iteration handle over a query result. It is
// driven by a single reader; it is not safe for concurrent use.
type Cursor struct {
	src   driver.Rows
	cols  []string
	state CursorState
	log   logr.Logger
}

func newCursor(src driver.Rows, log logr.Logger) *Cursor {
	return &Cursor{src: src, cols: src.Columns(), state: CursorOpen, log: log}
}

// State reports the cursor lifecycle state.
func (c *Cursor) State() CursorState { return c.state }

// Columns returns the projection column names in store order.
func (c *Cursor) Columns() []string { return c.cols }

// Next fetches the next row. At exhaustion it returns EndOfData exactly
// once; the fetch that trips exhaustion never yields a row. Any further
// Next, or a Next on a closed cursor, fails with an invalid cursor fault.
// A fetch fault closes the cursor.
func (c *Cursor) Next() (Row, error) {
	switch c.state {
	case CursorExhausted:
		return Row{}, &Fault{Kind: FaultInvalidCursor, Op: "fetch", Err: errors.New("cursor already exhausted")}
	case CursorClosed:
		return Row{}, &Fault{Kind: FaultInvalidCursor, Op: "fetch", Err: errors.New("cursor is closed")}
	}
	dest := make([]driver.Value, len(c.cols))
	if err := c.src.Next(dest); err != nil {
		if errors.Is(err, io.EOF) {
			c.state = CursorExhausted
			return Row{}, EndOfData
		}
		// A faulted row source must not be driven again; the cursor goes
		// terminal and releases it.
		c.state = CursorClosed
		_ = c.src.Close()
		return Row{}, &Fault{Kind: classify(err), Op: "fetch", Err: err}
	}
	vals := make([]driver.Value, len(dest))
	copy(vals, dest)
	return Row{cols: c.cols, vals: vals}, nil
}

// Close releases the cursor. Closing twice is a no-op.
func (c *Cursor) Close() error {
	if c.state == CursorClosed {
		return nil
	}
	c.state = CursorClosed
	c.log.V(1).Info("cursor closed", "columns", c.cols)
	return c.src.Close()
}

// OpenCursor executes a query and returns a cursor positioned before the
// first row. The caller owns the cursor and must Close it.
func (s *Session) OpenCursor(ctx context.Context, query string, args ...interface{}) (*Cursor, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, &Fault{Kind: classify(err), Op: "open", Err: err}
	}
	src, err := core.NewQueryRows(rows)
	if err != nil {
		return nil, &Fault{Kind: classify(err), Op: "open", Err: err}
	}
	s.log.V(1).Info("cursor opened", "query", query)
	return newCursor(src, s.log), nil
}

// Query opens a cursor over the query, feeds every row to fn in store
// order, and closes the cursor on every exit path. An error from fn stops
// the iteration and is returned as-is.
func (s *Session) Query(ctx context.Context, query string, args []interface{}, fn func(Row) error) error {
	cur, err := s.OpenCursor(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = cur.Close() }()
	for {
		row, err := cur.Next()
		if errors.Is(err, EndOfData) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
