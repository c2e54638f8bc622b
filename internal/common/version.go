package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Version information (set via -ldflags during build)
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"

	versionOnce sync.Once
)

// GetVersion returns the version string. When the binary was built without
// ldflags it falls back to a .version file next to the executable.
func GetVersion() string {
	versionOnce.Do(func() {
		if Version != "dev" {
			return
		}
		exePath, err := os.Executable()
		if err != nil {
			return
		}
		data, err := os.ReadFile(filepath.Join(filepath.Dir(exePath), ".version"))
		if err != nil {
			return
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			Version = v
		}
	})
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion returns version with build info
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", GetVersion(), Build, GitCommit)
}
