package version

import (
	"testing"

	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name             string
		supportedVersion string
		fileVersion      string
		expectError      bool
		errorContains    string
	}{
		{
			name:             "exact match",
			supportedVersion: "1.1.0",
			fileVersion:      "1.1.0",
		},
		{
			name:             "file patch higher",
			supportedVersion: "1.1.0",
			fileVersion:      "1.1.7",
		},
		{
			name:             "file minor older",
			supportedVersion: "1.1.0",
			fileVersion:      "1.0.0",
		},
		{
			name:             "short version",
			supportedVersion: "1.1.0",
			fileVersion:      "1.0",
		},
		{
			name:             "file minor newer",
			supportedVersion: "1.1.0",
			fileVersion:      "1.2.0",
			expectError:      true,
			errorContains:    "newer than the supported",
		},
		{
			name:             "major version differs",
			supportedVersion: "1.1.0",
			fileVersion:      "2.0.0",
			expectError:      true,
			errorContains:    "major version mismatch",
		},
		{
			name:             "older major",
			supportedVersion: "2.0.0",
			fileVersion:      "1.9.0",
			expectError:      true,
			errorContains:    "major version mismatch",
		},
		{
			name:             "supported is main",
			supportedVersion: "main",
			fileVersion:      "9.0.0",
		},
		{
			name:             "file is main",
			supportedVersion: "1.1.0",
			fileVersion:      "main",
		},

		// Edge cases with v prefix
		{
			name:             "v prefix on file",
			supportedVersion: "1.1.0",
			fileVersion:      "v1.1.0",
		},
		{
			name:             "v prefix on both",
			supportedVersion: "v1.1.0",
			fileVersion:      "v1.0.2",
		},
		{
			name:             "prerelease version",
			supportedVersion: "1.1.0",
			fileVersion:      "1.1.0-beta.1",
		},

		// Invalid versions
		{
			name:             "invalid file version",
			supportedVersion: "1.1.0",
			fileVersion:      "latest",
			expectError:      true,
			errorContains:    "invalid config version",
		},
		{
			name:             "empty file version",
			supportedVersion: "1.1.0",
			fileVersion:      "",
			expectError:      true,
			errorContains:    "invalid config version",
		},
		{
			name:             "invalid supported version",
			supportedVersion: "x.y",
			fileVersion:      "1.1.0",
			expectError:      true,
			errorContains:    "invalid supported config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.supportedVersion, tt.fileVersion)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidVersion))
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSupportedConfigVersionParses(t *testing.T) {
	require.NoError(t, CheckConfigCompatibility(ConfigVersion, ConfigVersion))
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}
