/*
Package version reports which tulz build is running.

Release builds set the values via ldflags:
  - Version: git tag (e.g., v0.4.0)
  - Commit: git commit hash (short form)
  - Date: build date in UTC (YYYY-MM-DD)

Builds without ldflags fall back to the VCS stamp the Go toolchain embeds,
and to "dev" when there is none.
*/
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build identity.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get resolves the build identity.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildInfo(info, bi)
	}
	return info
}

// fromBuildInfo fills fields still at their defaults from the embedded
// module and VCS settings.
func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" && s.Value != "" {
				info.Commit = s.Value
				if len(info.Commit) > 7 {
					info.Commit = info.Commit[:7]
				}
			}
		case "vcs.time":
			if info.Date == "unknown" && len(s.Value) >= 10 {
				info.Date = s.Value[:10]
			}
		}
	}
	return info
}

// String formats the identity for --version output.
func (i Info) String() string {
	if i.Version == "dev" {
		if i.Commit != "none" {
			return "dev (development build, commit: " + i.Commit + ")"
		}
		return "dev (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}

// UserAgent returns a product token such as "tulz/v0.4.0".
func UserAgent() string {
	return "tulz/" + strings.TrimSpace(Get().Version)
}
