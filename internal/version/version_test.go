package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFull ensures the full version string contains all build metadata fields.
func TestFull(t *testing.T) {
	t.Parallel()

	full := Full()
	require.Contains(t, full, "version: "+Version)
	require.Contains(t, full, "commit: "+Commit)
	require.Contains(t, full, "built at: "+BuildTime)
}

// TestShort ensures the short form is just the semantic version.
func TestShort(t *testing.T) {
	t.Parallel()

	require.Equal(t, Version, Short())
}
