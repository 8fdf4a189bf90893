package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/econ-series/pkg/errors"
)

// CheckConfigCompatibility checks whether a config file written for
// fileVersion can be read by a build supporting supportedVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - The file's minor version must not be newer than the supported one
//   - Patch versions can differ
//
// Examples:
//   - Supported 1.1.0, File 1.1.0 -> OK
//   - Supported 1.1.0, File 1.0.3 -> OK (older minor)
//   - Supported 1.1.0, File 1.2.0 -> ERROR (file is newer)
//   - Supported 1.1.0, File 2.0.0 -> ERROR (major differs)
func CheckConfigCompatibility(supportedVersion, fileVersion string) error {
	// Strip 'v' prefix if present for consistency
	supportedVersion = strings.TrimPrefix(supportedVersion, "v")
	fileVersion = strings.TrimPrefix(fileVersion, "v")

	if supportedVersion == "main" || fileVersion == "main" {
		return nil
	}

	supported, err := semver.NewVersion(supportedVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid supported config version '%s'", supportedVersion)
	}

	file, err := semver.NewVersion(fileVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", fileVersion)
	}

	if supported.Major() != file.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"major version mismatch: this build reads config %d.x.x but the file is %d.x.x",
			supported.Major(), file.Major())
	}

	if file.Minor() > supported.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"config version %d.%d.x is newer than the supported %d.%d.x, upgrade the tool",
			file.Major(), file.Minor(), supported.Major(), supported.Minor())
	}

	return nil
}
