package system

import (
	"context"
	"fmt"
	"os"
)

// DefaultEscalationTool is used to run single privileged commands.
const DefaultEscalationTool = "sudo"

// Escalator runs individual commands with elevated privilege. The
// bootstrapper itself stays unprivileged; only the three operations that
// touch system state (two file installs, one service enable) go through
// the escalation tool.
type Escalator struct {
	runner Runner
	tool   string
}

// NewEscalator wraps the runner with the default escalation tool.
func NewEscalator(runner Runner) *Escalator {
	return &Escalator{
		runner: runner,
		tool:   DefaultEscalationTool,
	}
}

// Run executes name with args under the escalation tool.
func (e *Escalator) Run(ctx context.Context, name string, args ...string) error {
	full := make([]string, 0, len(args)+1)
	full = append(full, name)
	full = append(full, args...)

	return e.runner.Run(ctx, e.tool, full...)
}

// InstallFile copies src to the privileged destination dst with the given
// mode, replacing any previous content. install(1) writes through a
// temporary file, so a re-run overwrites instead of failing.
func (e *Escalator) InstallFile(ctx context.Context, src, dst string, mode os.FileMode) error {
	return e.Run(ctx, "install", "-D", "-m", fmt.Sprintf("%04o", mode.Perm()), src, dst)
}

// RemoveFile deletes a privileged file, succeeding if it is already gone.
func (e *Escalator) RemoveFile(ctx context.Context, path string) error {
	return e.Run(ctx, "rm", "-f", path)
}
