package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

var (
	embedded     Info
	embeddedOnce sync.Once
)

func readEmbedded() Info {
	embeddedOnce.Do(func() {
		embedded.GoVersion = runtime.Version()
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			embedded.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				embedded.Commit = s.Value
			case "vcs.time":
				embedded.BuildTime = s.Value
			case "vcs.modified":
				embedded.Modified = s.Value == "true"
			}
		}
	})
	return embedded
}

// Get returns the build information.
func Get() Info {
	return resolve(Version, Commit, BuildTime, readEmbedded())
}

func resolve(version, commit, buildTime string, fallback Info) Info {
	info := Info{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: fallback.GoVersion,
		Modified:  fallback.Modified,
	}
	if info.Version == "dev" && fallback.Version != "" {
		info.Version = fallback.Version
	}
	if info.Commit == "unknown" && fallback.Commit != "" {
		info.Commit = fallback.Commit
	}
	if info.BuildTime == "unknown" && fallback.BuildTime != "" {
		info.BuildTime = fallback.BuildTime
	}
	if info.GoVersion == "" {
		info.GoVersion = "unknown"
	}
	return info
}

// String returns a formatted version string.
func (i Info) String() string {
	s := i.Version + " (" + shortCommit(i.Commit)
	if i.Modified {
		s += "-dirty"
	}
	return s + ") built at " + i.BuildTime + " with " + i.GoVersion
}

// String returns the formatted version of Get.
func String() string {
	return Get().String()
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
