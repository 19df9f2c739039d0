package versions

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// devPrefix marks versions derived from a VCS stamp rather than a release tag.
const devPrefix = "build-"

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
// Release versions compare as semver. Dev builds never compare as newer or
// older than anything; other unparsable versions compare as strings.
func IsNewerVersion(newVersion, oldVersion string) bool {
	if strings.HasPrefix(newVersion, devPrefix) || strings.HasPrefix(oldVersion, devPrefix) {
		return false
	}

	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)
	if errNew != nil || errOld != nil {
		return newVersion > oldVersion
	}

	return newSemver.GreaterThan(oldSemver)
}
