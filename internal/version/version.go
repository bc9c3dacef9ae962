// Package version reports the planner's build information.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X finplan/internal/version.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Commit    string `json:"commit,omitempty"`
	Modified  bool   `json:"modified"`
}

// Get collects the ldflags values and the VCS settings embedded by the toolchain
func Get() Info {
	info := Info{Version: Version, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// ShortCommit is the first 8 characters of the revision, marked when dirty
func (i Info) ShortCommit() string {
	rev := i.Commit
	if len(rev) > 8 {
		rev = rev[:8]
	}
	if rev != "" && i.Modified {
		rev += "-dirty"
	}
	return rev
}

// String renders "finplan <version> (<commit>, built <time>, <go>)"
func (i Info) String() string {
	var details []string
	if c := i.ShortCommit(); c != "" {
		details = append(details, c)
	}
	if i.BuildTime != "unknown" && i.BuildTime != "" {
		details = append(details, "built "+i.BuildTime)
	}
	if i.GoVersion != "" {
		details = append(details, i.GoVersion)
	}
	if len(details) == 0 {
		return "finplan " + i.Version
	}
	return fmt.Sprintf("finplan %s (%s)", i.Version, strings.Join(details, ", "))
}
