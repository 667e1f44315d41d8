package version_test

import (
	"testing"

	"shotty/src/version"
)

func TestVersionNonEmpty(t *testing.T) {
	if version.Version == "" {
		t.Fatalf("version string must not be empty")
	}
}
