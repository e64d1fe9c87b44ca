package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hhd-dev/hhd-bootstrap/internal/logger"
)

// Step names, in execution order. They double as user-facing labels in
// the run report.
const (
	stepProvisionDirs      = "provision directories"
	stepProvisionEnv       = "provision python environment"
	stepInstallPackage     = "install package"
	stepInstallSystemFiles = "install system files"
	stepExposeExecutable   = "expose executable"
	stepEnableService      = "enable service"
)

// StepStatus classifies the outcome of a single installation step.
type StepStatus string

const (
	// StepCompleted means the step finished successfully.
	StepCompleted StepStatus = "completed"
	// StepFailed means the step returned an error and aborted the run.
	StepFailed StepStatus = "failed"
	// StepSkipped means the step never ran because an earlier one failed.
	StepSkipped StepStatus = "skipped"
)

// StepResult records one step's outcome for the run report.
type StepResult struct {
	// Name is the step label.
	Name string
	// Status is the step outcome.
	Status StepStatus
	// Err is set when Status is StepFailed.
	Err error
}

// errRunningAsRoot aborts the run before any mutation when invoked as the
// superuser: the deployment is strictly per-user, and the three privileged
// operations escalate individually instead.
var errRunningAsRoot = errors.New(
	"refusing to run as root; invoke as the user who will run the daemon")

// guardNotRoot rejects superuser invocations.
func guardNotRoot(euid int) error {
	if euid == 0 {
		return errRunningAsRoot
	}

	return nil
}

// logReport prints the outcome of every step so a partially configured
// system is never silent about which steps completed and which never ran.
func logReport(ctx context.Context, results []StepResult) {
	for _, res := range results {
		switch res.Status {
		case StepFailed:
			logger.ErrorKV(ctx, "Step failed", "step", res.Name, "error", res.Err)
		case StepSkipped:
			logger.WarnKV(ctx, "Step skipped", "step", res.Name)
		case StepCompleted:
			logger.InfoKV(ctx, "Step completed", "step", res.Name)
		}
	}
}

// completionNotice is printed after a successful run.
func completionNotice(serviceInstance, linkPath string) string {
	return fmt.Sprintf(`Installation finished.

The daemon is managed by the %s systemd unit, which starts on boot.
Reboot (or start the unit manually) to launch it.
The hhd command is available at %s.

Caution: other gamepad remapping software (e.g. HandyGCCS) conflicts with
the daemon and should be removed before rebooting.`, serviceInstance, linkPath)
}
