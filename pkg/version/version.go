// Package version records build metadata stamped at link time.
package version

// Stamped via -ldflags at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
