// Where: cli/internal/version/version.go
// What: Version information retrieval.
// Why: Report the VCS revision baked into the binary at build time.
package version

import (
	"fmt"
	"runtime/debug"
)

// GetVersion returns the short VCS revision embedded in the build info,
// suffixed with "(dirty)" when the tree was modified. Builds without VCS
// stamping report "dev".
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
