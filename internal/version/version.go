// Package version reports the build identity shown by the -v flag and the
// info tab.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Set via ldflags by the release build; resolved from the embedded
	// build info when left empty.
	Version = ""
	Commit  = ""
	Date    = ""

	once sync.Once
)

func ensureInitialized() {
	once.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if ok {
			if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				Version = info.Main.Version
			}
			var revision, modified, vcsTime string
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					revision = s.Value
				case "vcs.modified":
					modified = s.Value
				case "vcs.time":
					vcsTime = s.Value
				}
			}
			if Commit == "" && revision != "" {
				if len(revision) > 7 {
					revision = revision[:7]
				}
				if modified == "true" {
					revision += "-dirty"
				}
				Commit = revision
			}
			if Date == "" {
				Date = vcsTime
			}
		}

		if Version == "" {
			Version = "dev"
		}
		if Commit == "" {
			Commit = "unknown"
		}
		if Date == "" {
			Date = "unknown"
		}
	})
}

// Info returns a single-line version description.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("gemini-model-usage-tracker %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
