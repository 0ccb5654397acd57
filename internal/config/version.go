package config

import "fmt"

// Stamped at link time:
//
//	-ldflags "-X github.com/bobmcallan/vox-portal/internal/config.Version=1.2.0"
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
}

// Info returns the linker-stamped build identity.
func Info() BuildInfo {
	return BuildInfo{Name: "vox-portal", Version: Version, Build: Build, GitCommit: GitCommit}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", b.Version, b.Build, b.GitCommit)
}

// UserAgent is sent on every upstream request.
func UserAgent() string {
	return "vox-portal/" + Version
}
