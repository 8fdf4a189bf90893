package version

// Version is the current version of the econ-series tool.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/econ-series/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.4.0"

// ConfigVersion is the newest config file format this build reads.
const ConfigVersion = "1.1.0"

// GetVersion returns the current version of the tool.
func GetVersion() string {
	return Version
}
