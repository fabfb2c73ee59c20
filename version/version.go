// Package version holds build information injected at link time.
package version

import "runtime"

// Build information. Populated at build time via -ldflags.
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo is the Go runtime version the binary was built with.
var GoInfo = runtime.Version()
