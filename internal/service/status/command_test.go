package status

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

// fakeRunner replays scripted systemctl outputs.
type fakeRunner struct {
	outputs map[string]string
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ ...string) error {
	return nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	if out, ok := f.outputs[line]; ok {
		return out, nil
	}

	return "", fmt.Errorf("%s: exit status 1", line)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		DataDir:      filepath.Join(dir, "share", "hhd"),
		BinDir:       filepath.Join(dir, "bin"),
		AssetBaseURL: "https://updates.local/assets/",
		UdevRulePath: filepath.Join(dir, "etc", "udev", "rules.d", "83-hhd.rules"),
		UnitPath:     filepath.Join(dir, "etc", "systemd", "system", "hhd_local@.service"),
		Timeout:      30 * time.Second,
	}
}

// TestCollect_CleanSystem reports everything absent on a pristine host.
func TestCollect_CleanSystem(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, config.Validate(cfg))

	report, err := Collect(context.Background(), cfg, &fakeRunner{})
	require.NoError(t, err)

	require.False(t, report.InstallRootPresent)
	require.False(t, report.EnvironmentPresent)
	require.Empty(t, report.SymlinkTarget)
	require.False(t, report.UdevRulePresent)
	require.False(t, report.UnitPresent)
	require.False(t, report.ServiceEnabled)
}

// TestCollect_InstalledSystem reports every artifact of a full install.
func TestCollect_InstalledSystem(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, config.Validate(cfg))

	venvDir := filepath.Join(cfg.DataDir, "venv")
	require.NoError(t, os.MkdirAll(filepath.Join(venvDir, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(venvDir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644))
	require.NoError(t, os.MkdirAll(cfg.BinDir, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(venvDir, "bin", "hhd"), filepath.Join(cfg.BinDir, "hhd")))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UdevRulePath), 0o755))
	require.NoError(t, os.WriteFile(cfg.UdevRulePath, []byte("rule\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.UnitPath), 0o755))
	require.NoError(t, os.WriteFile(cfg.UnitPath, []byte("unit\n"), 0o644))

	currentUser, err := user.Current()
	require.NoError(t, err)

	runner := &fakeRunner{outputs: map[string]string{
		fmt.Sprintf("systemctl is-enabled hhd_local@%s.service", currentUser.Username): "enabled",
	}}

	report, err := Collect(context.Background(), cfg, runner)
	require.NoError(t, err)

	require.True(t, report.InstallRootPresent)
	require.True(t, report.EnvironmentPresent)
	require.Equal(t, filepath.Join(venvDir, "bin", "hhd"), report.SymlinkTarget)
	require.True(t, report.UdevRulePresent)
	require.True(t, report.UnitPresent)
	require.True(t, report.ServiceEnabled)
}
