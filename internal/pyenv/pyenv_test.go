package pyenv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRunner records executed commands.
type fakeRunner struct {
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))

	return nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))

	return "", nil
}

// TestEnsureCreated verifies the venv invocation includes system site packages.
func TestEnsureCreated(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "venv")
	runner := new(fakeRunner)
	env := New(dir, "python3", runner)

	require.NoError(t, env.EnsureCreated(context.Background()))
	require.Equal(t, []string{"python3 -m venv --system-site-packages " + dir}, runner.calls)
}

// TestEnsureCreatedReusesExisting verifies a present environment is not recreated.
func TestEnsureCreatedReusesExisting(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "venv")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0o644))

	runner := new(fakeRunner)
	env := New(dir, "python3", runner)

	require.True(t, env.Exists())
	require.NoError(t, env.EnsureCreated(context.Background()))
	require.Empty(t, runner.calls)
}

// TestInstallPackage verifies pip is addressed inside the environment.
func TestInstallPackage(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "venv")
	runner := new(fakeRunner)
	env := New(dir, "python3", runner)

	require.NoError(t, env.InstallPackage(context.Background(), "hhd"))
	require.Equal(t, []string{filepath.Join(dir, "bin", "pip") + " install --upgrade hhd"}, runner.calls)
}

// TestBinPath addresses executables inside the environment.
func TestBinPath(t *testing.T) {
	t.Parallel()

	env := New("/data/hhd/venv", "python3", nil)
	require.Equal(t, "/data/hhd/venv/bin/hhd", env.BinPath("hhd"))
}
