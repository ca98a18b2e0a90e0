// Package version provides information about the build version of the relay
package version

import (
	"fmt"
	"runtime"
)

// BuildInfo holds version information about the relay build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'reportrelay/internal/core/version.version=v0.0.1'
	// -X 'reportrelay/internal/core/version.commit=abcd' -X 'reportrelay/internal/core/version.date=2025-09-02'"
	return BuildInfo{
		Service: "reportrelay",
		Version: version,
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
	}
}

// ClientVersion is the version string sent when registering with the sink
func ClientVersion() string { return "relay-" + version }

// UserAgent is sent on every outbound request
func UserAgent() string {
	return fmt.Sprintf("reportrelay/%s (%s; %s/%s)", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
