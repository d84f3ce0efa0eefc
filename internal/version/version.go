package version

import "runtime"

// Build metadata, overridden at build time via -ldflags.
var (
	Version   = "dev"     // ex: v0.1.0
	Commit    = "none"    // ex: abcd123
	BuildDate = "unknown" // ex: 2026-08-29T18:42:00Z
	GoVersion = runtime.Version()
)
