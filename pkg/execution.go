package pkg

import (
	"github.com/ignaciocaff/oraclecall"
)

// Invoke executes a registered stored routine through the globally
// configured session.
func Invoke(name string, args ...oraclecall.Argument) (*oraclecall.Result, error) {
	return oraclecall.Invoke(name, args...)
}

// Query drives fn over every row of the query through the globally
// configured session.
func Query(query string, args []interface{}, fn func(oraclecall.Row) error) error {
	return oraclecall.Query(query, args, fn)
}
