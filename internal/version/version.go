// Package version holds build metadata injected via ldflags.
package version

// Name is the service identifier reported by the info endpoint.
const Name = "vecgate"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
