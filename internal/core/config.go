package core

import "context"

var appContext context.Context

// Configure stores the application context the package-level helpers run
// against. It must be non-nil.
func Configure(ctx context.Context) {
	if ctx == nil {
		panic("oraclecall: application context is required")
	}
	appContext = ctx
}

// GetContext returns the application context supplied to Configure.
func GetContext() context.Context {
	return appContext
}
