// Package version exposes build-time version metadata.
package version

import "fmt"

var (
	// Version is set at build time via -ldflags.
	Version = "dev"
	// GitCommit is the commit SHA the binary was built from.
	GitCommit = "unknown"
)

// Info holds version metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
}

// Get returns the current version info.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit}
}

// String renders the version info for display.
func (i Info) String() string {
	return fmt.Sprintf("portage %s (%s)", i.Version, i.GitCommit)
}
