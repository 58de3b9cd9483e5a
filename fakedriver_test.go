package oraclecall

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// fakeOracle is an in-memory database/sql driver. Routine bodies are
// scripted Go functions that read and write the sql.Out binds they receive,
// and queries are answered from canned result sets, so every invocation and
// cursor path runs without a live Oracle instance.
type fakeOracle struct {
	mu       sync.Mutex
	routines map[string]func(args []driver.NamedValue) error
	queries  map[string]*sliceRows
	execs    int // store round-trips observed
	lastRows *sliceRows
}

func (d *fakeOracle) roundTrips() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.execs
}

func (d *fakeOracle) Open(string) (driver.Conn, error) { return &fakeConn{drv: d}, nil }

type fakeConn struct{ drv *fakeOracle }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{drv: c.drv, query: query}, nil
}
func (c *fakeConn) Close() error { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, fmt.Errorf("fake oracle: transactions are not scripted")
}

// CheckNamedValue accepts every argument untouched so sql.Out binds reach
// the statement the way the real Oracle drivers take them.
func (c *fakeConn) CheckNamedValue(*driver.NamedValue) error { return nil }

type fakeStmt struct {
	drv   *fakeOracle
	query string
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, fmt.Errorf("fake oracle: legacy Exec is not supported")
}

func (s *fakeStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, fmt.Errorf("fake oracle: legacy Query is not supported")
}

var callNamePattern = regexp.MustCompile(`BEGIN (?::1 := )?([A-Z0-9_$#]+)\(`)

func (s *fakeStmt) ExecContext(_ context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.drv.mu.Lock()
	s.drv.execs++
	s.drv.mu.Unlock()

	m := callNamePattern.FindStringSubmatch(s.query)
	if m == nil {
		return nil, fmt.Errorf("fake oracle: unparseable call text %q", s.query)
	}
	body, ok := s.drv.routines[m[1]]
	if !ok {
		return nil, fmt.Errorf("fake oracle: no scripted body for %s", m[1])
	}
	if err := body(args); err != nil {
		return nil, err
	}
	return driver.RowsAffected(0), nil
}

func (s *fakeStmt) QueryContext(context.Context, []driver.NamedValue) (driver.Rows, error) {
	s.drv.mu.Lock()
	defer s.drv.mu.Unlock()
	s.drv.execs++
	canned, ok := s.drv.queries[s.query]
	if !ok {
		return nil, fmt.Errorf("fake oracle: no canned rows for %q", s.query)
	}
	rows := canned.clone()
	s.drv.lastRows = rows
	return rows, nil
}

// sliceRows is an in-memory driver.Rows.
type sliceRows struct {
	cols   []string
	rows   [][]driver.Value
	pos    int
	closed bool
}

func newSliceRows(cols []string, rows ...[]driver.Value) *sliceRows {
	return &sliceRows{cols: cols, rows: rows}
}

func (r *sliceRows) clone() *sliceRows { return newSliceRows(r.cols, r.rows...) }

func (r *sliceRows) Columns() []string { return r.cols }

func (r *sliceRows) Close() error {
	r.closed = true
	return nil
}

func (r *sliceRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

var fakeDriverSeq int32

// newFakeSession registers the fake driver under a fresh name (sql.Register
// panics on duplicates) and builds a session over it.
func newFakeSession(t *testing.T, drv *fakeOracle, opts ...Option) *Session {
	t.Helper()
	name := fmt.Sprintf("fake-oracle-%d", atomic.AddInt32(&fakeDriverSeq, 1))
	sql.Register(name, drv)
	sqlDB, err := sql.Open(name, "mem")
	require.NoError(t, err)
	db := sqlx.NewDb(sqlDB, name)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, opts...)
}

// outString unwraps a scalar OUT bind from a scripted routine body.
func outString(arg driver.NamedValue) *sql.NullString {
	return arg.Value.(sql.Out).Dest.(*sql.NullString)
}

// outCursor unwraps a ref cursor OUT bind from a scripted routine body.
func outCursor(arg driver.NamedValue) *driver.Rows {
	return arg.Value.(sql.Out).Dest.(*driver.Rows)
}
