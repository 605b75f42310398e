package version

import "runtime"

// Stamped through -ldflags when the binary is built.
var (
	// Version is the release tag, "dev" for local builds
	Version = "dev"
	// Commit is the git revision the binary was built from
	Commit = "unknown"
	// BuildTime is the ISO 8601 timestamp of the build
	BuildTime = "unknown"
)

// Info is the payload served on the version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get reports the build details of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
