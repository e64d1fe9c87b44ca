package uninstaller

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hhd-dev/hhd-bootstrap/internal/config"
)

// fakeRunner records host commands and emulates rm for escalated removals.
type fakeRunner struct {
	t       *testing.T
	calls   []string
	outputs map[string]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.t.Helper()
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))

	if name == "sudo" && len(args) >= 1 && args[0] == "rm" {
		require.NoError(f.t, os.RemoveAll(args[len(args)-1]))
	}

	return nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)

	if out, ok := f.outputs[line]; ok {
		return out, nil
	}

	return "", fmt.Errorf("%s: exit status 1", line)
}

// installedFixture lays out every artifact the installer would create.
func installedFixture(t *testing.T) (string, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:      filepath.Join(dir, "share", "hhd"),
		BinDir:       filepath.Join(dir, "bin"),
		AssetBaseURL: "https://updates.local/assets/",
		UdevRulePath: filepath.Join(dir, "etc", "udev", "rules.d", "83-hhd.rules"),
		UnitPath:     filepath.Join(dir, "etc", "systemd", "system", "hhd_local@.service"),
		Timeout:      30 * time.Second,
	}

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.DataDir, "venv", "bin"), 0o755))
	require.NoError(t, os.MkdirAll(cfg.BinDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UdevRulePath), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UnitPath), 0o755))
	require.NoError(t, os.WriteFile(cfg.UdevRulePath, []byte("rule\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.UnitPath, []byte("unit\n"), 0o644))
	require.NoError(t, os.Symlink(
		filepath.Join(cfg.DataDir, "venv", "bin", "hhd"),
		filepath.Join(cfg.BinDir, "hhd")))

	cfgPath := filepath.Join(dir, "bootstrap.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	return cfgPath, cfg
}

// TestRun_RemovesEverything verifies a full removal after an install.
func TestRun_RemovesEverything(t *testing.T) {
	t.Parallel()

	cfgPath, cfg := installedFixture(t)

	currentUser, err := user.Current()
	require.NoError(t, err)

	unit := fmt.Sprintf("hhd_local@%s.service", currentUser.Username)
	runner := &fakeRunner{
		t:       t,
		outputs: map[string]string{"systemctl is-enabled " + unit: "enabled"},
	}

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: cfgPath, Runner: runner}))

	// Service disabled.
	require.Contains(t, runner.calls, "sudo systemctl disable "+unit)

	// All artifacts gone.
	for _, path := range []string{
		cfg.UdevRulePath,
		cfg.UnitPath,
		filepath.Join(cfg.BinDir, "hhd"),
		cfg.DataDir,
	} {
		_, err := os.Lstat(path)
		require.Error(t, err, path)
	}
}

// TestRun_CleanSystemIsNoop verifies removal succeeds with nothing installed.
func TestRun_CleanSystemIsNoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:      filepath.Join(dir, "share", "hhd"),
		BinDir:       filepath.Join(dir, "bin"),
		AssetBaseURL: "https://updates.local/assets/",
		UdevRulePath: filepath.Join(dir, "etc", "udev", "rules.d", "83-hhd.rules"),
		UnitPath:     filepath.Join(dir, "etc", "systemd", "system", "hhd_local@.service"),
		Timeout:      30 * time.Second,
	}

	cfgPath := filepath.Join(dir, "bootstrap.yaml")
	require.NoError(t, config.Save(cfgPath, cfg))

	runner := &fakeRunner{t: t, outputs: map[string]string{}}

	require.NoError(t, Run(context.Background(), &Options{ConfigPath: cfgPath, Runner: runner}))

	// No escalated mutations were attempted.
	for _, call := range runner.calls {
		require.NotContains(t, call, "systemctl disable")
		require.NotContains(t, call, "sudo rm")
	}
}
