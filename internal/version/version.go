// Package version carries the build identity stamped into the imbgen
// binary at link time. Release builds override the defaults with
// -ldflags "-X github.com/postalworks/imbgen/internal/version.Version=...".
package version

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date in one call, for
// callers that report all three together.
func Info() (version, commit, date string) {
	return Version, GitCommit, BuildDate
}
