package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes external commands. The installer drives every host
// tool (python, sudo, systemctl) through this interface so tests can
// substitute a recording fake.
type Runner interface {
	// Run executes the command, streaming its output to the user.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands on the host via os/exec.
type ExecRunner struct{}

// Run executes the command with stdout/stderr attached to the process,
// so tools like pip and sudo interact with the user directly.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}

	return nil
}

// Output executes the command and returns its trimmed standard output.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}

	return strings.TrimSpace(string(out)), nil
}
