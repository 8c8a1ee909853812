// Package version provides build-time version information for ytcomments.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X github.com/andywolf/ytcomments/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

const name = "ytcomments"

// Short returns the version string (e.g., "v1.2.3" or "dev").
func Short() string {
	return Version
}

// shortCommit returns the first seven characters of Commit.
func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Info returns a single-line version string with commit and build info.
// Format: "ytcomments v1.2.3 (commit: abc1234, built: 2024-01-15T10:30:00Z, go: go1.23.x)"
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		name, Version, shortCommit(), BuildDate, runtime.Version())
}

// Full returns a multi-line verbose version output.
func Full() string {
	return fmt.Sprintf(`%s %s
  Commit:     %s
  Built:      %s
  Go version: %s
  OS/Arch:    %s/%s`,
		name, Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every YouTube Data API request.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (+%s)", name, Version, shortCommit())
}
