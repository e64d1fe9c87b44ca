package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDefault checks that the stock configuration is valid and fully populated.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, "hhd", cfg.PackageName)
	require.Equal(t, DefaultUdevRulePath, cfg.UdevRulePath)
	require.Equal(t, DefaultUnitPath, cfg.UnitPath)
	require.NotZero(t, cfg.Timeout)
	require.NotEmpty(t, cfg.DataDir)
	require.NotEmpty(t, cfg.BinDir)
}

// TestValidate checks required fields and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil configuration.
	require.Error(t, Validate(nil))

	// Bad asset URL.
	cfg := Default()
	cfg.AssetBaseURL = "not-a-url"
	require.Error(t, Validate(cfg))

	// Non-https scheme is rejected too.
	cfg = Default()
	cfg.AssetBaseURL = "ftp://example.com/assets/"
	require.Error(t, Validate(cfg))

	// Relative privileged destination.
	cfg = Default()
	cfg.UdevRulePath = "etc/udev/rules.d/83-hhd.rules"
	require.Error(t, Validate(cfg))

	// Template without instance marker.
	cfg = Default()
	cfg.ServiceTemplate = "hhd_local"
	require.Error(t, Validate(cfg))

	// Defaults fill a zero timeout.
	cfg = Default()
	cfg.Timeout = 0
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bootstrap.yaml")

	cfg := Default()
	cfg.AssetBaseURL = "https://updates.local/assets/"
	cfg.Timeout = 42 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.AssetBaseURL, loaded.AssetBaseURL)
	require.Equal(t, cfg.Timeout, loaded.Timeout)
	require.Equal(t, cfg.DataDir, loaded.DataDir)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoadMissingExplicitPath ensures a missing explicit file is an error,
// while a missing default file falls back to stock settings.
func TestLoadMissingExplicitPath(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
