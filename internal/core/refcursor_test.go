package core

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	go_ora "github.com/sijms/go-ora/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRows is a driver.Rows that logs its Close into a shared order.
type recordedRows struct {
	name   string
	order  *[]string
	err    error
	closed bool
}

func (r *recordedRows) Columns() []string         { return nil }
func (r *recordedRows) Next([]driver.Value) error { return io.EOF }
func (r *recordedRows) Close() error {
	r.closed = true
	*r.order = append(*r.order, r.name)
	return r.err
}

// recordedCloser logs its Close the same way.
type recordedCloser struct {
	name  string
	order *[]string
	err   error
}

func (c *recordedCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestCursorBindDestShapes(t *testing.T) {
	out, ok := NewCursorBind(DriverGoOra).Dest().(sql.Out)
	require.True(t, ok)
	_, ok = out.Dest.(*go_ora.RefCursor)
	assert.True(t, ok, "go-ora binds its RefCursor type")

	out, ok = NewCursorBind(DriverGodror).Dest().(sql.Out)
	require.True(t, ok)
	_, ok = out.Dest.(*driver.Rows)
	assert.True(t, ok, "godror binds a raw driver.Rows")
}

func TestCursorBindRowsPassesThrough(t *testing.T) {
	var order []string
	b := NewCursorBind(DriverGodror)
	served := &recordedRows{name: "rows", order: &order}
	*b.Dest().(sql.Out).Dest.(*driver.Rows) = served

	rows, err := b.Rows()
	require.NoError(t, err)
	assert.Equal(t, driver.Rows(served), rows)

	empty := NewCursorBind(DriverGodror)
	rows, err = empty.Rows()
	require.NoError(t, err)
	assert.Nil(t, rows, "an unopened cursor unwraps to nothing")
}

func TestCursorBindRelease(t *testing.T) {
	var order []string
	b := NewCursorBind(DriverGodror)
	served := &recordedRows{name: "rows", order: &order}
	*b.Dest().(sql.Out).Dest.(*driver.Rows) = served

	b.Release()
	assert.True(t, served.closed)

	b.Release()
	assert.Equal(t, []string{"rows"}, order, "a released bind is not closed twice")

	// Release never touches the unpopulated go-ora handle.
	NewCursorBind(DriverGoOra).Release()
}

func TestOraRowsCloseOrder(t *testing.T) {
	var order []string
	rows := &oraRows{
		Rows: &recordedRows{name: "dataset", order: &order},
		cur:  &recordedCloser{name: "cursor", order: &order},
	}

	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"dataset", "cursor"}, order,
		"the data set is released before the server-side cursor handle")
}

func TestOraRowsCloseErrors(t *testing.T) {
	dsErr := errors.New("dataset close failed")
	curErr := errors.New("cursor close failed")

	var order []string
	rows := &oraRows{
		Rows: &recordedRows{name: "dataset", order: &order, err: dsErr},
		cur:  &recordedCloser{name: "cursor", order: &order},
	}
	assert.ErrorIs(t, rows.Close(), dsErr, "a data set error surfaces when the cursor closes cleanly")

	order = order[:0]
	rows = &oraRows{
		Rows: &recordedRows{name: "dataset", order: &order, err: dsErr},
		cur:  &recordedCloser{name: "cursor", order: &order, err: curErr},
	}
	assert.ErrorIs(t, rows.Close(), curErr, "the cursor handle error wins")
	assert.Equal(t, []string{"dataset", "cursor"}, order, "both are still closed")
}
