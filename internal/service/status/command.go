package status

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/hhd-dev/hhd-bootstrap/internal/config"
	"github.com/hhd-dev/hhd-bootstrap/internal/logger"
	"github.com/hhd-dev/hhd-bootstrap/internal/paths"
	"github.com/hhd-dev/hhd-bootstrap/internal/system"
)

// Options are inputs accepted by the status entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Runner executes host commands; nil selects the real one.
	Runner system.Runner
}

// Report describes the observable state of every installation artifact.
// Collecting it performs no mutation.
type Report struct {
	// InstallRootPresent is true when the data directory exists.
	InstallRootPresent bool
	// EnvironmentPresent is true when a usable virtual environment exists.
	EnvironmentPresent bool
	// SymlinkTarget is the target of the path symlink, empty when absent.
	SymlinkTarget string
	// UdevRulePresent is true when the udev rule is installed.
	UdevRulePresent bool
	// UnitPresent is true when the systemd unit template is installed.
	UnitPresent bool
	// ServiceEnabled is true when the per-user service instance is enabled.
	ServiceEnabled bool
	// DaemonRunning is true when a daemon process is currently running.
	DaemonRunning bool
}

// Run collects and logs the installation state.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "status")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	exec := opts.Runner
	if exec == nil {
		exec = system.ExecRunner{}
	}

	report, err := Collect(ctx, cfg, exec)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installation state",
		"install_root", report.InstallRootPresent,
		"environment", report.EnvironmentPresent,
		"symlink_target", report.SymlinkTarget,
		"udev_rule", report.UdevRulePresent,
		"systemd_unit", report.UnitPresent,
		"service_enabled", report.ServiceEnabled,
		"daemon_running", report.DaemonRunning)

	return nil
}

// Collect inspects the filesystem and service manager without mutating anything.
func Collect(ctx context.Context, cfg *config.Config, exec system.Runner) (*Report, error) {
	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	systemd := system.NewSystemd(exec, system.NewEscalator(exec))

	report := &Report{
		InstallRootPresent: dirExists(cfg.DataDir),
		EnvironmentPresent: fileExists(filepath.Join(paths.VenvDir(cfg.DataDir), "pyvenv.cfg")),
		UdevRulePresent:    fileExists(cfg.UdevRulePath),
		UnitPresent:        fileExists(cfg.UnitPath),
		ServiceEnabled: systemd.IsUnitEnabled(ctx,
			system.ServiceInstance(cfg.ServiceTemplate, currentUser.Username)),
	}

	report.SymlinkTarget, err = system.ReadSymlink(filepath.Join(cfg.BinDir, cfg.PackageName))
	if err != nil {
		return nil, err
	}

	// Process scan failures degrade to "not running" rather than aborting.
	if running, scanErr := system.ProcessRunning(cfg.PackageName); scanErr == nil {
		report.DaemonRunning = running
	} else {
		logger.DebugKV(ctx, "Process scan failed", "error", scanErr)
	}

	return report, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
