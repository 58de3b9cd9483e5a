package oraclecall

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ignaciocaff/oraclecall/internal/core"
)

var defaultSession *Session

// Configure sets up the shared database connection and application context
// and builds the default session the package-level helpers run against.
// It panics when either is missing.
func Configure(dbConn *sqlx.DB, ctx context.Context, opts ...Option) {
	if dbConn == nil {
		panic("oraclecall: database connection is required")
	}
	core.Configure(ctx)
	defaultSession = New(dbConn, opts...)
}

// Default returns the session built by Configure, or nil before it ran.
func Default() *Session { return defaultSession }

func mustDefault() *Session {
	if defaultSession == nil {
		panic("oraclecall: Configure must be called before the package-level API")
	}
	return defaultSession
}
