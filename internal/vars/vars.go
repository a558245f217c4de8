// Package vars holds build metadata set through -ldflags -X.
package vars

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"
)

// License of steamdex
const License = "MIT"

var (
	// Name of the binary as shown in reports and plugin results
	Name = "Steamdex"

	// Version is the release tag, "dev" for local builds
	Version = "dev"

	// Commit is the git SHA the binary was built from
	Commit = "unknown"

	// Revision is the commit count of the build
	Revision = 0

	// BuildTime is when the binary was built, UTC
	BuildTime = time.Unix(0, 0).UTC()

	// URL of the repository
	URL = "https://github.com/woozymasta/steamdex"

	_revision  string
	_buildTime string
)

// BuildInfo is served on /api/version and printed by -v.
type BuildInfo struct {
	// betteralign:ignore

	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Commit      string    `json:"commit"`
	CommitShort string    `json:"commit_short"`
	Revision    int       `json:"revision,omitempty"`
	BuildTime   time.Time `json:"build_time"`

	// Platform decides how Steam URIs are opened, e.g. linux/amd64
	Platform string `json:"platform"`

	URL     string `json:"url"`
	License string `json:"license"`
}

func init() {
	if n, err := strconv.Atoi(_revision); err == nil {
		Revision = n
	}

	if _buildTime != "" {
		if t, err := time.Parse(time.RFC3339, _buildTime); err == nil {
			BuildTime = t.UTC()
		}
	}
}

// Info collects the build metadata.
func Info() BuildInfo {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}

	return BuildInfo{
		Name:        Name,
		Version:     Version,
		Commit:      Commit,
		CommitShort: commit,
		Revision:    Revision,
		BuildTime:   BuildTime,
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		URL:         URL,
		License:     License,
	}
}

// Print writes Info to w, one field per line.
func Print(w io.Writer) {
	i := Info()
	_, _ = fmt.Fprintf(w, `name:     %s
version:  %s (%s, revision %d)
built:    %s
platform: %s
url:      %s
license:  %s
`, i.Name, i.Version, i.CommitShort, i.Revision, i.BuildTime.Format(time.RFC3339), i.Platform, i.URL, i.License)
}
