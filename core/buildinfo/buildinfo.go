package buildinfo

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/nezabudrama/core/buildinfo.Version=v0.4.0'
//	-X 'github.com/m3rciful/nezabudrama/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/nezabudrama/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the release tag of the binary.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)
