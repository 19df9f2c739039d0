package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewerVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		newVersion string
		oldVersion string
		want       bool
	}{
		{name: "newer minor", newVersion: "v1.3.0", oldVersion: "v1.2.4", want: true},
		{name: "older patch", newVersion: "1.0.1", oldVersion: "1.0.2"},
		{name: "equal", newVersion: "v1.0.0", oldVersion: "1.0.0"},
		{name: "release beats prerelease", newVersion: "1.0.0", oldVersion: "1.0.0-rc.1", want: true},
		{name: "dev build is never newer", newVersion: "build-0123abcd", oldVersion: "v1.0.0"},
		{name: "nothing is newer than a dev build", newVersion: "v9.0.0", oldVersion: "build-0123abcd"},
		{name: "non-semver falls back to strings", newVersion: "snapshot-b", oldVersion: "snapshot-a", want: true},
		{name: "empty old version", newVersion: "1.0.0", oldVersion: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNewerVersion(tt.newVersion, tt.oldVersion))
		})
	}
}
