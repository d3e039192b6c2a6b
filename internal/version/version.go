// Package version holds build metadata for the rangelink binary.
package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X github.com/couimet/rangeLink-sub005/internal/version.Version=v0.3.0".
var Version = "dev"

// Additional build metadata, also set through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("rangelink %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
