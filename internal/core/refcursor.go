package core

import (
	"database/sql"
	"database/sql/driver"
	"io"

	go_ora "github.com/sijms/go-ora/v2"
)

// Driver names the two supported Oracle drivers register under.
const (
	DriverGoOra  = "oracle"
	DriverGodror = "godror"
)

// CursorBind is the OUT destination for a SYS_REFCURSOR parameter. The bind
// shape differs per driver: go-ora fills a go_ora.RefCursor that is queried
// afterwards, godror hands back a driver.Rows directly. Drivers other than
// go-ora are bound the godror way, which is also what database/sql fakes
// expect.
type CursorBind struct {
	driverName string
	ora        go_ora.RefCursor
	rows       driver.Rows
}

func NewCursorBind(driverName string) *CursorBind {
	return &CursorBind{driverName: driverName}
}

// Dest returns the execution argument carrying the bind.
func (b *CursorBind) Dest() interface{} {
	if b.driverName == DriverGoOra {
		return sql.Out{Dest: &b.ora}
	}
	return sql.Out{Dest: &b.rows}
}

// Rows unwraps the populated bind into a driver-level row source. It
// returns (nil, nil) when the routine never opened the cursor.
func (b *CursorBind) Rows() (driver.Rows, error) {
	if b.driverName == DriverGoOra {
		ds, err := b.ora.Query()
		if err != nil {
			return nil, err
		}
		return &oraRows{Rows: ds, cur: &b.ora}, nil
	}
	return b.rows, nil
}

// Release closes a cursor the driver handed back on a failed execution,
// dropping secondary errors. Only the driver.Rows bind shape can be
// populated at that point: a failed block never copies the go-ora
// RefCursor back.
func (b *CursorBind) Release() {
	if b.rows != nil {
		_ = b.rows.Close()
		b.rows = nil
	}
}

// oraRows ties the go-ora data set to its ref cursor so one Close releases
// both the client iterator and the server-side cursor handle, data set
// first.
type oraRows struct {
	driver.Rows
	cur io.Closer
}

func (r *oraRows) Close() error {
	dsErr := r.Rows.Close()
	if err := r.cur.Close(); err != nil {
		return err
	}
	return dsErr
}
