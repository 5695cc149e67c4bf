// Package version records the release tag stamped into builds.
package version

// Version is the tag reported by -version and the server startup log.
// Release builds override it with
// -ldflags "-X covab2fasta/internal/version.Version=...".
var Version = "1.0.0"
