// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/bookthickness/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/bookthickness/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/bookthickness/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the abbreviated git revision.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String returns a multi-line summary for `bookthickness version`.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s\ngo: %s", Version, Commit, Date, runtime.Version())
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}

// Map returns the build fields keyed for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
		"go":      runtime.Version(),
	}
}
