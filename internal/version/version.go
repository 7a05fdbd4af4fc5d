// Package version reports the build version of ivory
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags "-X bennypowers.dev/ivory/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// readBuildInfo is replaced in tests
var readBuildInfo = debug.ReadBuildInfo

// Get returns the version set at build time, then the module version from
// the build info, then "dev"
func Get() string {
	if Version != "dev" && Version != "" {
		return Version
	}
	if info, ok := readBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// Full returns the version with the commit and build time when known
func Full() string {
	var extra []string
	if GitCommit != "unknown" && GitCommit != "" {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		extra = append(extra, "commit "+commit)
	}
	if BuildTime != "unknown" && BuildTime != "" {
		extra = append(extra, "built "+BuildTime)
	}
	if len(extra) == 0 {
		return "ivory " + Get()
	}
	return fmt.Sprintf("ivory %s (%s)", Get(), strings.Join(extra, ", "))
}
