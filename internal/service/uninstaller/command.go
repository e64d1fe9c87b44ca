package uninstaller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/hhd-dev/hhd-bootstrap/internal/config"
	"github.com/hhd-dev/hhd-bootstrap/internal/logger"
	"github.com/hhd-dev/hhd-bootstrap/internal/system"
)

// Options are inputs accepted by the uninstaller entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Runner executes host commands; nil selects the real one.
	Runner system.Runner
}

// errRunningAsRoot mirrors the installer's identity guard: removal also
// operates on a per-user deployment and escalates per command.
var errRunningAsRoot = errors.New(
	"refusing to run as root; invoke as the user who installed the daemon")

// Run removes every artifact the installer created. Artifacts that are
// already gone are skipped silently, so removal is idempotent and safe
// on a half-installed system.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "uninstall")

	if os.Geteuid() == 0 {
		logger.Error(ctx, errRunningAsRoot.Error())

		return errRunningAsRoot
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	currentUser, err := user.Current()
	if err != nil {
		return fmt.Errorf("current user: %w", err)
	}

	exec := opts.Runner
	if exec == nil {
		exec = system.ExecRunner{}
	}

	escalator := system.NewEscalator(exec)
	systemd := system.NewSystemd(exec, escalator)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// Service first, so nothing references the files being removed.
	unit := system.ServiceInstance(cfg.ServiceTemplate, currentUser.Username)
	if systemd.IsUnitEnabled(ctx, unit) {
		if err := systemd.DisableUnit(ctx, unit); err != nil {
			return fmt.Errorf("disable service: %w", err)
		}

		logger.InfoKV(ctx, "Disabled service", "unit", unit)
	} else {
		logger.InfoKV(ctx, "Service not enabled, skipping", "unit", unit)
	}

	for _, path := range []string{cfg.UdevRulePath, cfg.UnitPath} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "System file already absent, skipping", "path", path)

			continue
		}

		if err := escalator.RemoveFile(ctx, path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}

		logger.InfoKV(ctx, "Removed system file", "path", path)
	}

	link := filepath.Join(cfg.BinDir, cfg.PackageName)
	if err := system.RemoveSymlink(link); err != nil {
		return err
	}

	if err := os.RemoveAll(cfg.DataDir); err != nil {
		return fmt.Errorf("remove install root: %w", err)
	}

	logger.Info(ctx, "Uninstaller completed")

	return nil
}
