package core

import (
	"database/sql/driver"
	"io"

	"github.com/jmoiron/sqlx"
)

// QueryRows adapts a *sqlx.Rows into the driver-level row source the cursor
// machinery consumes, so a directly opened query and a ref cursor OUT
// parameter iterate through the same code path.
type QueryRows struct {
	rows *sqlx.Rows
	cols []string
}

func NewQueryRows(rows *sqlx.Rows) (*QueryRows, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &QueryRows{rows: rows, cols: cols}, nil
}

func (q *QueryRows) Columns() []string { return q.cols }

func (q *QueryRows) Next(dest []driver.Value) error {
	if !q.rows.Next() {
		if err := q.rows.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	raw := make([]interface{}, len(dest))
	ptrs := make([]interface{}, len(dest))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := q.rows.Scan(ptrs...); err != nil {
		return err
	}
	for i := range raw {
		dest[i] = raw[i]
	}
	return nil
}

func (q *QueryRows) Close() error { return q.rows.Close() }
