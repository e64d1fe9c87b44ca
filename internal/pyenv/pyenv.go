// Package pyenv provisions and addresses the Python virtual environment
// holding the daemon. The environment is never "activated": callers use
// explicit paths into its bin directory, so no process-global state is
// mutated.
package pyenv

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hhd-dev/hhd-bootstrap/internal/system"
)

// markerFile is written by the venv module and marks a usable environment.
const markerFile = "pyvenv.cfg"

// Env is a Python virtual environment rooted at Dir.
type Env struct {
	// Dir is the environment root.
	Dir string
	// Interpreter is the host Python used to create the environment.
	Interpreter string

	runner system.Runner
}

// New describes an environment at dir created by interpreter.
func New(dir, interpreter string, runner system.Runner) *Env {
	return &Env{
		Dir:         dir,
		Interpreter: interpreter,
		runner:      runner,
	}
}

// Exists reports whether a usable environment is already present.
func (e *Env) Exists() bool {
	_, err := os.Stat(filepath.Join(e.Dir, markerFile))

	return err == nil
}

// EnsureCreated creates the environment unless it already exists.
// The environment is created with access to system-wide packages: the
// daemon depends on distribution-provided bindings (evdev and friends)
// that are not always installable from the package index.
func (e *Env) EnsureCreated(ctx context.Context) error {
	if e.Exists() {
		return nil
	}

	return e.runner.Run(ctx, e.Interpreter, "-m", "venv", "--system-site-packages", e.Dir)
}

// BinPath returns the path of an executable inside the environment.
func (e *Env) BinPath(name string) string {
	return filepath.Join(e.Dir, "bin", name)
}

// InstallPackage installs or upgrades a package using the environment's
// own pip, so the host interpreter's site-packages stay untouched.
func (e *Env) InstallPackage(ctx context.Context, name string) error {
	return e.runner.Run(ctx, e.BinPath("pip"), "install", "--upgrade", name)
}
