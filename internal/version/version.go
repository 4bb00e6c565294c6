// Package version carries build metadata stamped via -ldflags.
package version

var (
	// Version is the semantic version of the build.
	Version = "0.1.0"

	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)
