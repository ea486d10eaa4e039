package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the release of the server and the report command
	Version = "0.3.0"

	// APIVersion is the version of the HTTP and WebSocket contracts
	APIVersion = "v1"

	productName = "SaaSPulse"
)

// Set with -ldflags "-X saaspulse/pkg/contracts.BuildTime=..." by build.go
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version
type VersionInfo struct {
	Version      string `json:"version"`
	APIVersion   string `json:"api_version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

// GetVersionInfo returns the build metadata. Binaries built without
// build.go fall back to the VCS stamp the go tool embeds.
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:      Version,
		APIVersion:   APIVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
	if info.GitCommit == "unknown" || info.BuildTime == "unknown" {
		fillFromBuildInfo(&info)
	}
	return info
}

func fillFromBuildInfo(info *VersionInfo) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.GitCommit == "unknown" && s.Value != "":
			info.GitCommit = s.Value
			if len(info.GitCommit) > 7 {
				info.GitCommit = info.GitCommit[:7]
			}
		case s.Key == "vcs.time" && info.BuildTime == "unknown" && s.Value != "":
			info.BuildTime = s.Value
		}
	}
}

// GetVersionString names the product and release, e.g. "SaaSPulse v0.3.0".
// Generated reports carry it as their generator.
func GetVersionString() string {
	return fmt.Sprintf("%s v%s", productName, Version)
}

// GetFullVersionString adds the build metadata to GetVersionString
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(), info.BuildTime, info.GitCommit, info.GoVersion, info.OS, info.Architecture)
}
